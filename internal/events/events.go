// Package events publishes news item changes to Kafka for downstream consumers such as the search indexer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Type names an event kind. It is also sent as the event_type header.
type Type string

const (
	NewsItemSubmitted Type = "newsitem.submitted"
	NewsItemUpvoted   Type = "newsitem.upvoted"
	NewsItemUnvoted   Type = "newsitem.unvoted"
)

// Event is a snapshot of a news item after a change made by UserID.
type Event struct {
	Type        Type      `json:"type"`
	NewsItemID  int64     `json:"news_item_id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Text        string    `json:"text,omitempty"`
	SubmitterID string    `json:"submitter_id"`
	UpvoteCount int       `json:"upvote_count"`
	CreatedAt   time.Time `json:"created_at"`
	At          time.Time `json:"at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by news item id so that all changes to
// one item land on the same partition in order.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher creates a publisher writing to topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           time.Second,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}}
}

// Publish encodes e as JSON and writes it synchronously. Callers bound the wait through ctx.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := Encode(e)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Encode builds the Kafka message for e.
func Encode(e Event) (kafka.Message, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(e.NewsItemID, 10)),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
		Time: e.At,
	}, nil
}

// Decode parses a message produced by Encode.
func Decode(msg kafka.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if e.Type == "" || e.NewsItemID == 0 {
		return Event{}, fmt.Errorf("incomplete event at offset %d", msg.Offset)
	}
	return e, nil
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
