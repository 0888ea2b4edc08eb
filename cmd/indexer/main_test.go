package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackernews/internal/events"
	"hackernews/internal/logger"
	"hackernews/internal/search"
)

type upvoteUpdate struct {
	id    int64
	count int
}

type stubIndexer struct {
	docs    []search.Document
	updates []upvoteUpdate
	err     error
}

func (s *stubIndexer) Index(_ context.Context, doc search.Document) error {
	if s.err != nil {
		return s.err
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *stubIndexer) UpdateUpvotes(_ context.Context, id int64, count int) error {
	if s.err != nil {
		return s.err
	}
	s.updates = append(s.updates, upvoteUpdate{id, count})
	return nil
}

func encode(t *testing.T, e events.Event) kafka.Message {
	t.Helper()
	msg, err := events.Encode(e)
	require.NoError(t, err)
	return msg
}

func TestProcessMessageIndexesSubmission(t *testing.T) {
	idx := &stubIndexer{}
	created := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	msg := encode(t, events.Event{
		Type:        events.NewsItemSubmitted,
		NewsItemID:  42,
		UserID:      "alice",
		Kind:        "story",
		Title:       "Show HN: a tiny search engine",
		URL:         "https://example.com",
		SubmitterID: "alice",
		UpvoteCount: 1,
		CreatedAt:   created,
	})

	require.NoError(t, processMessage(context.Background(), logger.Discard(), idx, msg))

	require.Len(t, idx.docs, 1)
	doc := idx.docs[0]
	assert.Equal(t, int64(42), doc.ID)
	assert.Equal(t, "Show HN: a tiny search engine", doc.Title)
	assert.Equal(t, "https://example.com", doc.URL)
	assert.Equal(t, 1, doc.UpvoteCount)
	assert.True(t, created.Equal(doc.CreatedAt))
	assert.Empty(t, idx.updates)
}

func TestProcessMessageUpdatesUpvotes(t *testing.T) {
	idx := &stubIndexer{}

	up := encode(t, events.Event{Type: events.NewsItemUpvoted, NewsItemID: 7, UserID: "bob", UpvoteCount: 5})
	un := encode(t, events.Event{Type: events.NewsItemUnvoted, NewsItemID: 7, UserID: "bob", UpvoteCount: 4})

	require.NoError(t, processMessage(context.Background(), logger.Discard(), idx, up))
	require.NoError(t, processMessage(context.Background(), logger.Discard(), idx, un))

	assert.Equal(t, []upvoteUpdate{{7, 5}, {7, 4}}, idx.updates)
	assert.Empty(t, idx.docs)
}

func TestProcessMessageSkipsUnknownType(t *testing.T) {
	idx := &stubIndexer{}
	msg := encode(t, events.Event{Type: "newsitem.flagged", NewsItemID: 7})

	assert.NoError(t, processMessage(context.Background(), logger.Discard(), idx, msg))
	assert.Empty(t, idx.docs)
	assert.Empty(t, idx.updates)
}

func TestProcessMessageErrors(t *testing.T) {
	t.Run("malformed payload", func(t *testing.T) {
		err := processMessage(context.Background(), logger.Discard(), &stubIndexer{}, kafka.Message{Value: []byte("{not json")})
		assert.Error(t, err)
	})

	t.Run("index failure", func(t *testing.T) {
		idx := &stubIndexer{err: errors.New("cluster red")}
		msg := encode(t, events.Event{Type: events.NewsItemUpvoted, NewsItemID: 9, UpvoteCount: 2})

		err := processMessage(context.Background(), logger.Discard(), idx, msg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "newsitem.upvoted 9")
		assert.Contains(t, err.Error(), "cluster red")
	})
}

func TestDeadLetter(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := kafka.Message{
		Partition: 3,
		Offset:    120,
		Key:       []byte("9"),
		Value:     []byte(`{"type":"x"}`),
		Headers:   []kafka.Header{{Key: "event_type", Value: []byte("x")}},
	}

	out := deadLetter(msg, errors.New("boom"), at)

	assert.Equal(t, msg.Key, out.Key)
	assert.Equal(t, msg.Value, out.Value)
	got := map[string]string{}
	for _, h := range out.Headers {
		got[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{
		"event_type":         "x",
		"original_partition": "3",
		"original_offset":    "120",
		"error":              "boom",
		"timestamp":          "2024-05-01T12:00:00Z",
	}, got)
	assert.Len(t, msg.Headers, 1)
}
