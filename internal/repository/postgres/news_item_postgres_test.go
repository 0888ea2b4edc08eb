package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackernews/internal/model"
	"hackernews/internal/repository"
)

var newsItemCols = []string{
	"id", "kind", "title", "url", "text", "submitter_id", "upvote_count", "created_at",
	"upvotes", "hides", "comments", "comment_count",
}

func TestNewsItemPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNewsItemPostgres(db)
	now := time.Now().UTC()
	item := &model.NewsItem{
		Kind:        model.KindStory,
		Title:       "Show HN: A tiny Lisp",
		URL:         "https://example.com/lisp",
		SubmitterID: "pg",
		CreatedAt:   now,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO news_items").
		WithArgs(item.Kind, item.Title, item.URL, item.Text, item.SubmitterID, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, now))
	mock.ExpectExec("INSERT INTO news_item_upvotes").
		WithArgs(int64(42), "pg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	out, err := repo.Create(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, 1, out.UpvoteCount)
	assert.Equal(t, []string{"pg"}, out.Upvotes)
	assert.Empty(t, out.CommentIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsItemPostgres_CreateRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNewsItemPostgres(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO news_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))
	mock.ExpectExec("INSERT INTO news_item_upvotes").
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	out, err := repo.Create(context.Background(), &model.NewsItem{Kind: model.KindStory, Title: "t", SubmitterID: "ghost"})

	assert.Error(t, err)
	assert.Nil(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsItemPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNewsItemPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(newsItemCols).
			AddRow(1, "story", "Ask HN: Go or Rust?", "", "Which one?", "dang", 3, time.Now(), "dang,pg,tptacek", "pg", "5,9", 4)

		mock.ExpectQuery("SELECT (.+) FROM news_items n WHERE n.id = ").
			WithArgs(int64(1)).
			WillReturnRows(rows)

		item, err := repo.FindByID(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "Ask HN: Go or Rust?", item.Title)
		assert.Equal(t, []string{"dang", "pg", "tptacek"}, item.Upvotes)
		assert.Equal(t, []string{"pg"}, item.Hides)
		assert.Equal(t, []int64{5, 9}, item.CommentIDs)
		assert.Equal(t, 4, item.CommentCount)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM news_items n WHERE n.id = ").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		item, err := repo.FindByID(ctx, 404)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, item)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsItemPostgres_ListFeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNewsItemPostgres(db)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		rows := sqlmock.NewRows(newsItemCols).
			AddRow(2, "story", "second", "https://b.example", "", "pg", 1, time.Now(), "pg", "", "", 0).
			AddRow(1, "story", "first", "https://a.example", "", "pg", 1, time.Now(), "pg", "", "", 0)

		mock.ExpectQuery("SELECT (.+) FROM news_items n WHERE n.kind = 'story' ORDER BY n.created_at DESC").
			WithArgs(30, 0).
			WillReturnRows(rows)

		items, err := repo.ListFeed(ctx, model.FeedNew, repository.PageQuery{Limit: 30, Offset: 0})

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "second", items[0].Title)
		assert.Empty(t, items[0].Hides)
	})

	t.Run("show filters by title", func(t *testing.T) {
		mock.ExpectQuery("WHERE n.kind = 'story' AND n.title ILIKE 'Show HN%'").
			WithArgs(10, 20).
			WillReturnRows(sqlmock.NewRows(newsItemCols))

		items, err := repo.ListFeed(ctx, model.FeedShow, repository.PageQuery{Limit: 10, Offset: 20})

		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("unknown feed", func(t *testing.T) {
		items, err := repo.ListFeed(ctx, model.FeedType("front"), repository.PageQuery{Limit: 30})

		assert.Error(t, err)
		assert.Nil(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsItemPostgres_AddUpvote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNewsItemPostgres(db)
	ctx := context.Background()

	t.Run("new upvote bumps counter", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO news_item_upvotes (.+) ON CONFLICT DO NOTHING").
			WithArgs(int64(1), "dang").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE news_items SET upvote_count = upvote_count \\+ 1").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		changed, err := repo.AddUpvote(ctx, 1, "dang")

		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("repeat upvote is a no-op", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO news_item_upvotes").
			WithArgs(int64(1), "dang").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		changed, err := repo.AddUpvote(ctx, 1, "dang")

		require.NoError(t, err)
		assert.False(t, changed)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsItemPostgres_RemoveUpvote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNewsItemPostgres(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM news_item_upvotes").
		WithArgs(int64(3), "pg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE news_items SET upvote_count = GREATEST").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	changed, err := repo.RemoveUpvote(context.Background(), 3, "pg")

	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsItemPostgres_Hides(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewNewsItemPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO news_item_hides (.+) ON CONFLICT DO NOTHING").
		WithArgs(int64(8), "pg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM news_item_hides").
		WithArgs(int64(8), "pg").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.AddHide(ctx, 8, "pg"))
	assert.NoError(t, repo.RemoveHide(ctx, 8, "pg"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSplitItemIDs(t *testing.T) {
	ids, err := splitItemIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = splitItemIDs("3,10,11")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 10, 11}, ids)

	_, err = splitItemIDs("3,x")
	assert.Error(t, err)
}
