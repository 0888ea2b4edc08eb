package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hackernews/internal/model"
	"hackernews/internal/storage"
)

// DayLayout is the date format of front page archive days.
const DayLayout = "2006-01-02"

// FrontPage is the top feed as it looked at TakenAt.
type FrontPage struct {
	Day     string           `json:"day"`
	TakenAt time.Time        `json:"taken_at"`
	Items   []model.NewsItem `json:"items"`
}

// FrontPageService archives the top feed once per day.
type FrontPageService interface {
	// Snapshot stores the current top feed under today's (UTC) day, replacing earlier snapshots of the day.
	Snapshot(ctx context.Context) (*FrontPage, error)

	// Get returns the last snapshot stored for day, or ErrNotFound.
	Get(ctx context.Context, day time.Time) (*FrontPage, error)
}

type frontPageService struct {
	items NewsItemService
	store storage.Storage
	now   func() time.Time
}

// NewFrontPageService constructs a FrontPageService. A nil store disables the archive.
func NewFrontPageService(items NewsItemService, store storage.Storage) FrontPageService {
	return &frontPageService{items: items, store: store, now: time.Now}
}

func frontPageKey(day time.Time) string {
	return "front/" + day.UTC().Format(DayLayout) + ".json"
}

func (s *frontPageService) Snapshot(ctx context.Context) (*FrontPage, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}
	items, err := s.items.Feed(ctx, model.FeedTop, MaxFeedPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("load top feed: %w", err)
	}

	now := s.now().UTC()
	page := &FrontPage{Day: now.Format(DayLayout), TakenAt: now, Items: items}
	b, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("marshal front page: %w", err)
	}

	_, err = s.store.Put(ctx, frontPageKey(now), bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/json",
		Metadata:    map[string]string{"items": fmt.Sprint(len(items))},
	})
	if err != nil {
		return nil, fmt.Errorf("store front page: %w", err)
	}
	return page, nil
}

func (s *frontPageService) Get(ctx context.Context, day time.Time) (*FrontPage, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}
	rc, _, err := s.store.Get(ctx, frontPageKey(day))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read front page: %w", err)
	}
	defer rc.Close()

	var page FrontPage
	if err := json.NewDecoder(rc).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode front page: %w", err)
	}
	return &page, nil
}
