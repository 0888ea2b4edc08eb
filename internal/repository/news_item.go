package repository

import (
	"context"

	"hackernews/internal/model"
)

// NewsItemRepository defines persistence for news items, their upvotes and hides.
type NewsItemRepository interface {
	// Create inserts the item and records the submitter's own upvote in the same transaction.
	Create(ctx context.Context, item *model.NewsItem) (*model.NewsItem, error)

	// FindByID returns one item with its upvoters, hiders and top-level comment ids.
	FindByID(ctx context.Context, id int64) (*model.NewsItem, error)

	// ListFeed returns one page of the given feed's ordering.
	ListFeed(ctx context.Context, feed model.FeedType, pq PageQuery) ([]model.NewsItem, error)

	// AddUpvote records userID's upvote. It reports false when the upvote already existed.
	AddUpvote(ctx context.Context, id int64, userID string) (bool, error)

	// RemoveUpvote deletes userID's upvote. It reports false when there was none.
	RemoveUpvote(ctx context.Context, id int64, userID string) (bool, error)

	// AddHide records that userID hid the item. Repeated hides are no-ops.
	AddHide(ctx context.Context, id int64, userID string) error

	// RemoveHide deletes userID's hide, if any.
	RemoveHide(ctx context.Context, id int64, userID string) error
}
