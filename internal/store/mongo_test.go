package store

import (
	"context"
	"testing"

	"rewiki-bot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore_CreateArticle(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inserted", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		a := model.NewArticle("go", "text", 1)
		assert.NoError(mt, s.CreateArticle(context.Background(), &a))
	})

	mt.Run("duplicate name", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		a := model.NewArticle("go", "text", 1)
		assert.ErrorIs(mt, s.CreateArticle(context.Background(), &a), ErrDuplicate)
	})
}

func TestMongoStore_GetArticle(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.articles", mtest.FirstBatch, bson.D{
			{Key: "name", Value: "go"},
			{Key: "content", Value: "Go is a language"},
			{Key: "author", Value: int64(7)},
		}))

		a, err := s.GetArticle(context.Background(), "go")
		require.NoError(mt, err)
		assert.Equal(mt, "Go is a language", a.Content)
		assert.Equal(mt, int64(7), a.Author)
	})

	mt.Run("missing", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.articles", mtest.FirstBatch))

		_, err := s.GetArticle(context.Background(), "go")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoStore_UpdateAndDeleteMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(0)},
			bson.E{Key: "nModified", Value: int32(0)},
		))
		assert.ErrorIs(mt, s.UpdateArticle(context.Background(), "go", "x"), ErrNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))
		assert.ErrorIs(mt, s.DeleteArticle(context.Background(), "go"), ErrNotFound)
	})

	mt.Run("set moderator", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))
		assert.NoError(mt, s.SetModerator(context.Background(), 42, true))
	})
}

func TestMongoStore_ListArticles(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("page with total", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.articles", mtest.FirstBatch,
				bson.D{{Key: "name", Value: "a"}, {Key: "content", Value: "1"}},
				bson.D{{Key: "name", Value: "b"}, {Key: "content", Value: "2"}},
			),
			mtest.CreateCursorResponse(0, "test.articles", mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(12)}},
			),
		)

		page, total, err := s.ListArticles(context.Background(), 10, 10)
		require.NoError(mt, err)
		assert.Equal(mt, 12, total)
		require.Len(mt, page, 2)
		assert.Equal(mt, "a", page[0].Name)
	})
}

// updateStatement returns the first statement of the next update command sent.
func updateStatement(mt *mtest.T) (bson.Raw, bson.Raw, bool) {
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)

	stmts, err := evt.Command.Lookup("updates").Array().Values()
	require.NoError(mt, err)
	require.Len(mt, stmts, 1)

	stmt := stmts[0].Document()
	multi, _ := stmt.Lookup("multi").BooleanOK()
	return stmt.Lookup("q").Document(), stmt.Lookup("u").Document(), multi
}

func matched(n int32) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

func TestMongoStore_SearchArticles(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("escaped case-insensitive filter", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.articles", mtest.FirstBatch,
				bson.D{{Key: "name", Value: "a.b"}, {Key: "content", Value: "x"}},
			),
			mtest.CreateCursorResponse(0, "test.articles", mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(1)}},
			),
		)

		page, total, err := s.SearchArticles(context.Background(), "a.b", 0, 10)
		require.NoError(mt, err)
		assert.Equal(mt, 1, total)
		require.Len(mt, page, 1)

		evt := mt.GetStartedEvent()
		require.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, int64(10), evt.Command.Lookup("limit").Int64())

		alts, err := evt.Command.Lookup("filter", "$or").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, alts, 2)
		for i, field := range []string{"name", "content"} {
			pattern, options := alts[i].Document().Lookup(field).Regex()
			assert.Equal(mt, `a\.b`, pattern)
			assert.Equal(mt, "i", options)
		}

		count := mt.GetStartedEvent()
		assert.Equal(mt, "aggregate", count.CommandName)
	})
}

func TestMongoStore_Users(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := model.NewUser(42, model.LangRU)
		require.NoError(mt, s.CreateUser(context.Background(), &u))

		evt := mt.GetStartedEvent()
		require.Equal(mt, "insert", evt.CommandName)
		assert.Equal(mt, usersCollection, evt.Command.Lookup("insert").StringValue())
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		u := model.NewUser(42, model.LangEN)
		assert.ErrorIs(mt, s.CreateUser(context.Background(), &u), ErrDuplicate)
	})

	mt.Run("get", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "uid", Value: int64(42)},
			{Key: "language", Value: "ru"},
			{Key: "moderator", Value: true},
			{Key: "saved_articles", Value: bson.A{"go", "redis"}},
		}))

		u, err := s.GetUser(context.Background(), 42)
		require.NoError(mt, err)
		assert.Equal(mt, model.LangRU, u.Language)
		assert.True(mt, u.Moderator)
		assert.Equal(mt, []string{"go", "redis"}, u.SavedArticles)

		evt := mt.GetStartedEvent()
		assert.Equal(mt, int64(42), evt.Command.Lookup("filter", "uid").Int64())
	})

	mt.Run("get missing", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := s.GetUser(context.Background(), 42)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("set language", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(matched(1))

		require.NoError(mt, s.SetLanguage(context.Background(), 42, model.LangRU))

		q, u, multi := updateStatement(mt)
		assert.Equal(mt, int64(42), q.Lookup("uid").Int64())
		assert.Equal(mt, "ru", u.Lookup("$set", "language").StringValue())
		assert.False(mt, multi)
	})

	mt.Run("add saved is add-if-absent", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(matched(1))

		require.NoError(mt, s.AddSavedArticle(context.Background(), 42, "go"))

		q, u, _ := updateStatement(mt)
		assert.Equal(mt, int64(42), q.Lookup("uid").Int64())
		assert.Equal(mt, "go", u.Lookup("$addToSet", "saved_articles").StringValue())
	})

	mt.Run("remove saved", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(matched(1))

		require.NoError(mt, s.RemoveSavedArticle(context.Background(), 42, "go"))

		_, u, _ := updateStatement(mt)
		assert.Equal(mt, "go", u.Lookup("$pull", "saved_articles").StringValue())
	})

	mt.Run("update missing user", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(matched(0), matched(0), matched(0))

		ctx := context.Background()
		assert.ErrorIs(mt, s.SetLanguage(ctx, 1, model.LangEN), ErrNotFound)
		assert.ErrorIs(mt, s.AddSavedArticle(ctx, 1, "go"), ErrNotFound)
		assert.ErrorIs(mt, s.RemoveSavedArticle(ctx, 1, "go"), ErrNotFound)
	})

	mt.Run("forget article", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(matched(3))

		require.NoError(mt, s.ForgetArticle(context.Background(), "go"))

		q, u, multi := updateStatement(mt)
		assert.True(mt, multi)
		assert.Equal(mt, "go", q.Lookup("saved_articles").StringValue())
		assert.Equal(mt, "go", u.Lookup("$pull", "saved_articles").StringValue())
	})
}

func TestMongoStore_Init(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates missing collection and unique indexes", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.$cmd.listCollections", mtest.FirstBatch,
				bson.D{{Key: "name", Value: usersCollection}, {Key: "type", Value: "collection"}},
			),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		require.NoError(mt, s.Init(context.Background()))

		assert.Equal(mt, "listCollections", mt.GetStartedEvent().CommandName)

		create := mt.GetStartedEvent()
		require.Equal(mt, "create", create.CommandName)
		assert.Equal(mt, articlesCollection, create.Command.Lookup("create").StringValue())

		for _, want := range []struct{ coll, key string }{
			{usersCollection, "uid"},
			{articlesCollection, "name"},
		} {
			evt := mt.GetStartedEvent()
			require.Equal(mt, "createIndexes", evt.CommandName)
			assert.Equal(mt, want.coll, evt.Command.Lookup("createIndexes").StringValue())

			indexes, err := evt.Command.Lookup("indexes").Array().Values()
			require.NoError(mt, err)
			require.Len(mt, indexes, 1)
			idx := indexes[0].Document()
			assert.Equal(mt, int32(1), idx.Lookup("key", want.key).Int32())
			assert.True(mt, idx.Lookup("unique").Boolean())
		}
	})

	mt.Run("list failure", func(mt *mtest.T) {
		s := NewMongoStoreFromDatabase(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "unauthorized",
		}))

		assert.Error(mt, s.Init(context.Background()))
	})
}
