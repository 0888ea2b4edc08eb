package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"hackernews/internal/model"
	"hackernews/internal/repository"
)

// NewsItemPostgres is a PostgreSQL implementation of repository.NewsItemRepository.
type NewsItemPostgres struct {
	db *sql.DB
}

// NewNewsItemPostgres creates a new NewsItemPostgres repository.
func NewNewsItemPostgres(db *sql.DB) *NewsItemPostgres {
	return &NewsItemPostgres{db: db}
}

var _ repository.NewsItemRepository = (*NewsItemPostgres)(nil)

const newsItemColumns = `
	n.id, n.kind, n.title, n.url, n.text, n.submitter_id, n.upvote_count, n.created_at,
	COALESCE((SELECT string_agg(u.user_id, ',' ORDER BY u.created_at) FROM news_item_upvotes u WHERE u.news_item_id = n.id), ''),
	COALESCE((SELECT string_agg(h.user_id, ',') FROM news_item_hides h WHERE h.news_item_id = n.id), ''),
	COALESCE((SELECT string_agg(c.id::text, ',' ORDER BY c.id) FROM comments c WHERE c.parent_id = n.id), ''),
	(SELECT COUNT(*) FROM comments c WHERE c.news_item_id = n.id)`

// rankOrder is the classic HN gravity: points decay with age in hours.
const rankOrder = `(n.upvote_count - 1) / power(EXTRACT(EPOCH FROM (now() - n.created_at)) / 3600 + 2, 1.8) DESC, n.id DESC`

type feedClause struct {
	where string
	order string
}

var feedClauses = map[model.FeedType]feedClause{
	model.FeedTop:     {where: `n.kind = 'story'`, order: rankOrder},
	model.FeedNew:     {where: `n.kind = 'story'`, order: `n.created_at DESC, n.id DESC`},
	model.FeedBest:    {where: `n.kind = 'story'`, order: `n.upvote_count DESC, n.id DESC`},
	model.FeedShow:    {where: `n.kind = 'story' AND n.title ILIKE 'Show HN%'`, order: rankOrder},
	model.FeedShowNew: {where: `n.kind = 'story' AND n.title ILIKE 'Show HN%'`, order: `n.created_at DESC, n.id DESC`},
	model.FeedAsk:     {where: `n.kind = 'story' AND n.title ILIKE 'Ask HN%'`, order: rankOrder},
	model.FeedJob:     {where: `n.kind = 'job'`, order: `n.created_at DESC, n.id DESC`},
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNewsItem(row rowScanner) (*model.NewsItem, error) {
	var (
		n                       model.NewsItem
		upvotes, hides, replies string
	)
	if err := row.Scan(
		&n.ID,
		&n.Kind,
		&n.Title,
		&n.URL,
		&n.Text,
		&n.SubmitterID,
		&n.UpvoteCount,
		&n.CreatedAt,
		&upvotes,
		&hides,
		&replies,
		&n.CommentCount,
	); err != nil {
		return nil, err
	}
	n.Upvotes = splitUserIDs(upvotes)
	n.Hides = splitUserIDs(hides)
	ids, err := splitItemIDs(replies)
	if err != nil {
		return nil, fmt.Errorf("parse comment ids: %w", err)
	}
	n.CommentIDs = ids
	return &n, nil
}

// Create inserts a news item, counting the submitter's implicit upvote.
func (r *NewsItemPostgres) Create(ctx context.Context, item *model.NewsItem) (*model.NewsItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const qInsert = `
		INSERT INTO news_items (kind, title, url, text, submitter_id, upvote_count, created_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		RETURNING id, created_at
	`
	out := *item
	if err := tx.QueryRowContext(ctx, qInsert,
		item.Kind,
		item.Title,
		item.URL,
		item.Text,
		item.SubmitterID,
		item.CreatedAt,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}

	const qUpvote = `INSERT INTO news_item_upvotes (news_item_id, user_id) VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, qUpvote, out.ID, item.SubmitterID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	out.UpvoteCount = 1
	out.Upvotes = []string{item.SubmitterID}
	out.Hides = []string{}
	out.CommentIDs = []int64{}
	return &out, nil
}

// FindByID fetches a single news item by its ID.
func (r *NewsItemPostgres) FindByID(ctx context.Context, id int64) (*model.NewsItem, error) {
	q := `SELECT ` + newsItemColumns + ` FROM news_items n WHERE n.id = $1`
	return scanNewsItem(r.db.QueryRowContext(ctx, q, id))
}

// ListFeed returns a LIMIT/OFFSET page of the feed.
func (r *NewsItemPostgres) ListFeed(ctx context.Context, feed model.FeedType, pq repository.PageQuery) ([]model.NewsItem, error) {
	clause, ok := feedClauses[feed]
	if !ok {
		return nil, fmt.Errorf("unknown feed type %q", feed)
	}
	q := `SELECT ` + newsItemColumns + ` FROM news_items n WHERE ` + clause.where +
		` ORDER BY ` + clause.order + ` LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.NewsItem, 0, pq.Limit)
	for rows.Next() {
		n, err := scanNewsItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AddUpvote inserts the upvote row and bumps the counter when the row is new.
func (r *NewsItemPostgres) AddUpvote(ctx context.Context, id int64, userID string) (bool, error) {
	return r.changeUpvote(ctx, id, userID,
		`INSERT INTO news_item_upvotes (news_item_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		`UPDATE news_items SET upvote_count = upvote_count + 1 WHERE id = $1`,
	)
}

// RemoveUpvote deletes the upvote row and lowers the counter when a row was removed.
func (r *NewsItemPostgres) RemoveUpvote(ctx context.Context, id int64, userID string) (bool, error) {
	return r.changeUpvote(ctx, id, userID,
		`DELETE FROM news_item_upvotes WHERE news_item_id = $1 AND user_id = $2`,
		`UPDATE news_items SET upvote_count = GREATEST(upvote_count - 1, 0) WHERE id = $1`,
	)
}

func (r *NewsItemPostgres) changeUpvote(ctx context.Context, id int64, userID, qRow, qCount string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, qRow, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, qCount, id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// AddHide records a hide; an existing hide is left untouched.
func (r *NewsItemPostgres) AddHide(ctx context.Context, id int64, userID string) error {
	const q = `INSERT INTO news_item_hides (news_item_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, q, id, userID)
	return err
}

// RemoveHide deletes a hide. Missing rows are not an error.
func (r *NewsItemPostgres) RemoveHide(ctx context.Context, id int64, userID string) error {
	const q = `DELETE FROM news_item_hides WHERE news_item_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, q, id, userID)
	return err
}
