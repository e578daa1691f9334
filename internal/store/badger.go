package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rewiki-bot/internal/model"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	articlePrefix = "article:"
	userPrefix    = "user:"
)

// BadgerStore keeps articles and users in an embedded BadgerDB.
// It backs single-node deployments and the test suites.
type BadgerStore struct {
	db       *badger.DB
	logger   *zap.Logger
	inMemory bool
}

// NewBadgerStore opens the database at path. Pass path="" for an in-memory instance.
func NewBadgerStore(path string, logger *zap.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db, logger: logger, inMemory: path == ""}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger is closed")
	}
	return nil
}

// RunGC reclaims value log space until ctx is cancelled.
func (s *BadgerStore) RunGC(ctx context.Context, interval time.Duration) {
	if s.inMemory {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(0.7)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("Badger value log GC failed", zap.Error(err))
			}
		}
	}
}

func articleKey(name string) []byte {
	return []byte(articlePrefix + name)
}

func userKey(uid int64) []byte {
	return []byte(userPrefix + strconv.FormatInt(uid, 10))
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func insertJSON(txn *badger.Txn, key []byte, v any) error {
	_, err := txn.Get(key)
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return setJSON(txn, key, v)
}

func (s *BadgerStore) CreateArticle(_ context.Context, article *model.Article) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return insertJSON(txn, articleKey(article.Name), article)
	})
}

func (s *BadgerStore) GetArticle(_ context.Context, name string) (*model.Article, error) {
	var article model.Article
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, articleKey(name), &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *BadgerStore) UpdateArticle(_ context.Context, name, content string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var article model.Article
		if err := getJSON(txn, articleKey(name), &article); err != nil {
			return err
		}
		article.Content = content
		article.UpdatedAt = time.Now().UTC()
		return setJSON(txn, articleKey(name), &article)
	})
}

func (s *BadgerStore) DeleteArticle(_ context.Context, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := articleKey(name)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

func (s *BadgerStore) ListArticles(_ context.Context, offset, limit int) ([]model.Article, int, error) {
	return s.scanArticles(nil, offset, limit)
}

func (s *BadgerStore) SearchArticles(_ context.Context, query string, offset, limit int) ([]model.Article, int, error) {
	q := strings.ToLower(query)
	return s.scanArticles(func(a *model.Article) bool {
		return strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.Content), q)
	}, offset, limit)
}

// scanArticles walks the article keyspace in name order, keeping the
// [offset, offset+limit) window of matches and counting all of them.
func (s *BadgerStore) scanArticles(match func(*model.Article) bool, offset, limit int) ([]model.Article, int, error) {
	var (
		page  []model.Article
		total int
	)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(articlePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var a model.Article
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			})
			if err != nil {
				return err
			}
			if match != nil && !match(&a) {
				continue
			}
			if total >= offset && len(page) < limit {
				page = append(page, a)
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page, total, nil
}

func (s *BadgerStore) CreateUser(_ context.Context, user *model.User) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return insertJSON(txn, userKey(user.UID), user)
	})
}

func (s *BadgerStore) GetUser(_ context.Context, uid int64) (*model.User, error) {
	var user model.User
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(uid), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *BadgerStore) updateUser(uid int64, fn func(*model.User)) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var user model.User
		if err := getJSON(txn, userKey(uid), &user); err != nil {
			return err
		}
		fn(&user)
		return setJSON(txn, userKey(uid), &user)
	})
}

func (s *BadgerStore) SetLanguage(_ context.Context, uid int64, lang model.Lang) error {
	return s.updateUser(uid, func(u *model.User) {
		u.Language = lang
	})
}

func (s *BadgerStore) SetModerator(_ context.Context, uid int64, moderator bool) error {
	return s.updateUser(uid, func(u *model.User) {
		u.Moderator = moderator
	})
}

func (s *BadgerStore) AddSavedArticle(_ context.Context, uid int64, name string) error {
	return s.updateUser(uid, func(u *model.User) {
		if !u.HasSaved(name) {
			u.SavedArticles = append(u.SavedArticles, name)
		}
	})
}

func (s *BadgerStore) RemoveSavedArticle(_ context.Context, uid int64, name string) error {
	return s.updateUser(uid, func(u *model.User) {
		u.SavedArticles = without(u.SavedArticles, name)
	})
}

func (s *BadgerStore) ForgetArticle(_ context.Context, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var changed []model.User

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(userPrefix)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			var u model.User
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			})
			if err != nil {
				it.Close()
				return err
			}
			if u.HasSaved(name) {
				u.SavedArticles = without(u.SavedArticles, name)
				changed = append(changed, u)
			}
		}
		it.Close()

		for i := range changed {
			if err := setJSON(txn, userKey(changed[i].UID), &changed[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func without(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
