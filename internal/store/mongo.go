package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"rewiki-bot/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	articlesCollection = "articles"
	usersCollection    = "users"
)

// MongoStore keeps articles and users in two MongoDB collections,
// keyed by unique "name" and "uid" indexes respectively.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	articles *mongo.Collection
	users    *mongo.Collection
}

// NewMongoStore connects to uri, verifies the connection and prepares the
// collections and indexes in database dbName.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := NewMongoStoreFromDatabase(client.Database(dbName))
	s.client = client
	if err := s.Init(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromDatabase wraps an already connected database without
// touching collections or indexes.
func NewMongoStoreFromDatabase(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:       db,
		articles: db.Collection(articlesCollection),
		users:    db.Collection(usersCollection),
	}
}

// Init creates missing collections and the unique key indexes.
func (s *MongoStore) Init(ctx context.Context) error {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("list mongo collections: %w", err)
	}

	exists := make(map[string]struct{}, len(names))
	for _, name := range names {
		exists[name] = struct{}{}
	}
	for _, name := range []string{usersCollection, articlesCollection} {
		if _, ok := exists[name]; ok {
			continue
		}
		if err := s.db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("create %s collection: %w", name, err)
		}
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "uid", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = s.articles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create articles index: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) CreateArticle(ctx context.Context, article *model.Article) error {
	_, err := s.articles.InsertOne(ctx, article)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoStore) GetArticle(ctx context.Context, name string) (*model.Article, error) {
	var article model.Article
	err := s.articles.FindOne(ctx, bson.M{"name": name}).Decode(&article)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (s *MongoStore) UpdateArticle(ctx context.Context, name, content string) error {
	res, err := s.articles.UpdateOne(ctx, bson.M{"name": name}, bson.M{
		"$set": bson.M{
			"content":    content,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteArticle(ctx context.Context, name string) error {
	res, err := s.articles.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListArticles(ctx context.Context, offset, limit int) ([]model.Article, int, error) {
	return s.findArticles(ctx, bson.M{}, offset, limit)
}

func (s *MongoStore) SearchArticles(ctx context.Context, query string, offset, limit int) ([]model.Article, int, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"content": re},
	}}
	return s.findArticles(ctx, filter, offset, limit)
}

func (s *MongoStore) findArticles(ctx context.Context, filter bson.M, offset, limit int) ([]model.Article, int, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := s.articles.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var articles []model.Article
	if err := cur.All(ctx, &articles); err != nil {
		return nil, 0, err
	}

	total, err := s.articles.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return articles, int(total), nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoStore) GetUser(ctx context.Context, uid int64) (*model.User, error) {
	var user model.User
	err := s.users.FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) updateUser(ctx context.Context, uid int64, update bson.M) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"uid": uid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetLanguage(ctx context.Context, uid int64, lang model.Lang) error {
	return s.updateUser(ctx, uid, bson.M{"$set": bson.M{"language": lang}})
}

func (s *MongoStore) SetModerator(ctx context.Context, uid int64, moderator bool) error {
	return s.updateUser(ctx, uid, bson.M{"$set": bson.M{"moderator": moderator}})
}

func (s *MongoStore) AddSavedArticle(ctx context.Context, uid int64, name string) error {
	return s.updateUser(ctx, uid, bson.M{"$addToSet": bson.M{"saved_articles": name}})
}

func (s *MongoStore) RemoveSavedArticle(ctx context.Context, uid int64, name string) error {
	return s.updateUser(ctx, uid, bson.M{"$pull": bson.M{"saved_articles": name}})
}

func (s *MongoStore) ForgetArticle(ctx context.Context, name string) error {
	_, err := s.users.UpdateMany(ctx,
		bson.M{"saved_articles": name},
		bson.M{"$pull": bson.M{"saved_articles": name}},
	)
	return err
}
