package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"hackernews/internal/events"
	"hackernews/internal/model"
	"hackernews/internal/repository"
)

// MaxFeedPageSize is the largest and default number of items per feed page.
const MaxFeedPageSize = 30

const maxTitleLength = 80

// publishTimeout bounds how long a request waits on the event broker.
const publishTimeout = 2 * time.Second

// SubmitNewsItemInput is the user-supplied part of a new story.
type SubmitNewsItemInput struct {
	Title string
	URL   string
	Text  string
}

// NewsItemService defines the use cases for stories, upvotes and hides.
type NewsItemService interface {
	// Get returns a news item by id.
	Get(ctx context.Context, id int64) (*model.NewsItem, error)

	// Feed returns items[skip : skip+first] of the feed. first outside (0, 30] becomes 30.
	Feed(ctx context.Context, feed model.FeedType, first, skip int) ([]model.NewsItem, error)

	// Upvote records userID's upvote and returns the updated item. Repeats are no-ops.
	Upvote(ctx context.Context, id int64, userID string) (*model.NewsItem, error)

	// Unvote withdraws userID's upvote and returns the updated item.
	Unvote(ctx context.Context, id int64, userID string) (*model.NewsItem, error)

	// Hide records that userID hid the item and returns the updated item.
	Hide(ctx context.Context, id int64, userID string) (*model.NewsItem, error)

	// Unhide withdraws userID's hide and returns the updated item.
	Unhide(ctx context.Context, id int64, userID string) (*model.NewsItem, error)

	// Submit validates and stores a new story upvoted by its submitter.
	Submit(ctx context.Context, userID string, in SubmitNewsItemInput) (*model.NewsItem, error)
}

type newsItemService struct {
	repo           repository.NewsItemRepository
	pub            events.Publisher
	log            *slog.Logger
	publishTimeout time.Duration
}

// NewNewsItemService constructs a new NewsItemService.
func NewNewsItemService(repo repository.NewsItemRepository, pub events.Publisher, log *slog.Logger) NewsItemService {
	return &newsItemService{repo: repo, pub: pub, log: log, publishTimeout: publishTimeout}
}

// ClampFirst bounds a requested page size to (0, MaxFeedPageSize].
func ClampFirst(first int) int {
	if first < 1 || first > MaxFeedPageSize {
		return MaxFeedPageSize
	}
	return first
}

func (s *newsItemService) Get(ctx context.Context, id int64) (*model.NewsItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *newsItemService) Feed(ctx context.Context, feed model.FeedType, first, skip int) ([]model.NewsItem, error) {
	if !feed.Valid() {
		return nil, fmt.Errorf("unknown feed type %q", feed)
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.ListFeed(ctx, feed, repository.PageQuery{Limit: ClampFirst(first), Offset: skip})
}

func (s *newsItemService) Upvote(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return s.changeUpvote(ctx, id, userID, s.repo.AddUpvote, events.NewsItemUpvoted)
}

func (s *newsItemService) Unvote(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return s.changeUpvote(ctx, id, userID, s.repo.RemoveUpvote, events.NewsItemUnvoted)
}

func (s *newsItemService) changeUpvote(
	ctx context.Context,
	id int64,
	userID string,
	apply func(context.Context, int64, string) (bool, error),
	evType events.Type,
) (*model.NewsItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	changed, err := apply(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("record vote: %w", err)
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		s.publish(ctx, evType, item, userID)
	}
	return item, nil
}

func (s *newsItemService) Hide(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return s.changeHide(ctx, id, userID, s.repo.AddHide)
}

func (s *newsItemService) Unhide(ctx context.Context, id int64, userID string) (*model.NewsItem, error) {
	return s.changeHide(ctx, id, userID, s.repo.RemoveHide)
}

func (s *newsItemService) changeHide(ctx context.Context, id int64, userID string, apply func(context.Context, int64, string) error) (*model.NewsItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := apply(ctx, id, userID); err != nil {
		return nil, fmt.Errorf("record hide: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *newsItemService) Submit(ctx context.Context, userID string, in SubmitNewsItemInput) (*model.NewsItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	in, err := validateSubmission(in)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Create(ctx, &model.NewsItem{
		Kind:        model.KindStory,
		Title:       in.Title,
		URL:         in.URL,
		Text:        in.Text,
		SubmitterID: userID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("save news item: %w", err)
	}
	s.publish(ctx, events.NewsItemSubmitted, stored, userID)
	return stored, nil
}

// validateSubmission trims the input and enforces the submission rules.
func validateSubmission(in SubmitNewsItemInput) (SubmitNewsItemInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.Text = strings.TrimSpace(in.Text)

	if in.Title == "" {
		return in, ErrTitleRequired
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return in, ErrTitleTooLong
	}
	if in.URL != "" {
		u, err := url.Parse(in.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return in, ErrInvalidURL
		}
	}
	if in.URL == "" && in.Text == "" {
		return in, ErrContentRequired
	}
	return in, nil
}

// publish emits the event without failing the caller; the write already succeeded.
func (s *newsItemService) publish(ctx context.Context, t events.Type, item *model.NewsItem, userID string) {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	err := s.pub.Publish(ctx, events.Event{
		Type:        t,
		NewsItemID:  item.ID,
		UserID:      userID,
		Kind:        item.Kind,
		Title:       item.Title,
		URL:         item.URL,
		Text:        item.Text,
		SubmitterID: item.SubmitterID,
		UpvoteCount: item.UpvoteCount,
		CreatedAt:   item.CreatedAt,
		At:          time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("publish event failed",
			slog.String("event_type", string(t)),
			slog.Int64("news_item_id", item.ID),
			slog.Any("err", err),
		)
	}
}
