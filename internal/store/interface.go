package store

import (
	"context"
	"errors"

	"rewiki-bot/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type ArticleStore interface {
	CreateArticle(ctx context.Context, article *model.Article) error
	GetArticle(ctx context.Context, name string) (*model.Article, error)
	UpdateArticle(ctx context.Context, name, content string) error
	DeleteArticle(ctx context.Context, name string) error
	// ListArticles returns one window of articles ordered by name and the total count.
	ListArticles(ctx context.Context, offset, limit int) ([]model.Article, int, error)
	// SearchArticles matches query case-insensitively against name and content.
	SearchArticles(ctx context.Context, query string, offset, limit int) ([]model.Article, int, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, uid int64) (*model.User, error)
	SetLanguage(ctx context.Context, uid int64, lang model.Lang) error
	SetModerator(ctx context.Context, uid int64, moderator bool) error
	AddSavedArticle(ctx context.Context, uid int64, name string) error
	RemoveSavedArticle(ctx context.Context, uid int64, name string) error
	// ForgetArticle drops name from every user's saved list.
	ForgetArticle(ctx context.Context, name string) error
}

type Store interface {
	ArticleStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
