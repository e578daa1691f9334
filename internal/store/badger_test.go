package store

import (
	"context"
	"fmt"
	"testing"

	"rewiki-bot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStore("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerStore_ArticleLifecycle(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	article := model.NewArticle("golang", "Go is a language", 7)
	require.NoError(t, s.CreateArticle(ctx, &article))

	// Names are unique
	dup := model.NewArticle("golang", "other", 8)
	assert.ErrorIs(t, s.CreateArticle(ctx, &dup), ErrDuplicate)

	got, err := s.GetArticle(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, "Go is a language", got.Content)
	assert.Equal(t, int64(7), got.Author)

	require.NoError(t, s.UpdateArticle(ctx, "golang", "Go is fun"))
	got, err = s.GetArticle(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, "Go is fun", got.Content)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	assert.ErrorIs(t, s.UpdateArticle(ctx, "missing", "x"), ErrNotFound)

	require.NoError(t, s.DeleteArticle(ctx, "golang"))
	_, err = s.GetArticle(ctx, "golang")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteArticle(ctx, "golang"), ErrNotFound)
}

func TestBadgerStore_ListAndSearch(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		a := model.NewArticle(fmt.Sprintf("a%02d", i), "plain text", 1)
		require.NoError(t, s.CreateArticle(ctx, &a))
	}
	special := model.NewArticle("zebra", "Contains the word Redis", 1)
	require.NoError(t, s.CreateArticle(ctx, &special))

	page, total, err := s.ListArticles(ctx, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 26, total)
	require.Len(t, page, 10)
	assert.Equal(t, "a10", page[0].Name)
	assert.Equal(t, "a19", page[9].Name)

	page, total, err = s.ListArticles(ctx, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, 26, total)
	require.Len(t, page, 6)
	assert.Equal(t, "zebra", page[5].Name)

	// Case-insensitive match on content
	found, total, err := s.SearchArticles(ctx, "redis", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "zebra", found[0].Name)

	// Match on name
	_, total, err = s.SearchArticles(ctx, "A1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}

func TestBadgerStore_Users(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	u := model.NewUser(1, model.LangEN)
	require.NoError(t, s.CreateUser(ctx, &u))
	assert.ErrorIs(t, s.CreateUser(ctx, &u), ErrDuplicate)

	require.NoError(t, s.SetLanguage(ctx, 1, model.LangRU))
	require.NoError(t, s.SetModerator(ctx, 1, true))
	require.NoError(t, s.AddSavedArticle(ctx, 1, "go"))
	require.NoError(t, s.AddSavedArticle(ctx, 1, "go"))
	require.NoError(t, s.AddSavedArticle(ctx, 1, "rust"))

	got, err := s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.LangRU, got.Language)
	assert.True(t, got.Moderator)
	assert.Equal(t, []string{"go", "rust"}, got.SavedArticles, "add must not duplicate names")

	require.NoError(t, s.RemoveSavedArticle(ctx, 1, "go"))
	got, err = s.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, got.SavedArticles)

	assert.ErrorIs(t, s.SetModerator(ctx, 999, true), ErrNotFound)
}

func TestBadgerStore_ForgetArticle(t *testing.T) {
	s := newTestBadger(t)
	ctx := context.Background()

	for uid := int64(1); uid <= 3; uid++ {
		u := model.NewUser(uid, model.LangEN)
		require.NoError(t, s.CreateUser(ctx, &u))
	}
	require.NoError(t, s.AddSavedArticle(ctx, 1, "go"))
	require.NoError(t, s.AddSavedArticle(ctx, 2, "go"))
	require.NoError(t, s.AddSavedArticle(ctx, 2, "rust"))

	require.NoError(t, s.ForgetArticle(ctx, "go"))

	u1, _ := s.GetUser(ctx, 1)
	u2, _ := s.GetUser(ctx, 2)
	u3, _ := s.GetUser(ctx, 3)
	assert.Empty(t, u1.SavedArticles)
	assert.Equal(t, []string{"rust"}, u2.SavedArticles)
	assert.Empty(t, u3.SavedArticles)
}

func TestBadgerStore_PingAfterClose(t *testing.T) {
	s, err := NewBadgerStore("", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	assert.Error(t, s.Ping(context.Background()))
}
