// Command indexer consumes news item events from Kafka and keeps the
// Elasticsearch story index in step with the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/segmentio/kafka-go"

	"hackernews/internal/config"
	"hackernews/internal/events"
	"hackernews/internal/logger"
	"hackernews/internal/search"
)

type storyIndexer interface {
	Index(ctx context.Context, doc search.Document) error
	UpdateUpvotes(ctx context.Context, id int64, count int) error
}

func main() {
	cfg := config.Load()
	log := logger.New("indexer", cfg.LogLevel)

	if len(cfg.Kafka.Brokers) == 0 || cfg.Search.Addr == "" {
		log.Error("indexer needs KAFKA_BROKERS and ELASTICSEARCH_ADDR")
		os.Exit(1)
	}

	es, err := search.New(cfg.Search.Addr, cfg.Search.Index, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := es.Health(ctx); err != nil {
		log.Warn("elasticsearch not reachable yet", slog.Any("err", err))
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	defer reader.Close()

	dlqTopic := cfg.Kafka.Topic + "_dlq"
	dlq := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
		Topic:                  dlqTopic,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}
	defer dlq.Close()

	log.Info("indexer started",
		slog.String("topic", cfg.Kafka.Topic),
		slog.String("group", cfg.Kafka.ConsumerGroup),
		slog.String("dlq_topic", dlqTopic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Info("indexer stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, es, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			if dlqErr := dlq.WriteMessages(ctx, deadLetter(msg, err, time.Now())); dlqErr != nil {
				// Leave the offset uncommitted so the message is redelivered after a restart.
				log.Error("DLQ write failed", slog.Any("err", dlqErr), slog.Int64("offset", msg.Offset))
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// processMessage applies one event to the index.
func processMessage(ctx context.Context, log *slog.Logger, idx storyIndexer, msg kafka.Message) error {
	e, err := events.Decode(msg)
	if err != nil {
		return err
	}

	switch e.Type {
	case events.NewsItemSubmitted:
		err = idx.Index(ctx, search.Document{
			ID:          e.NewsItemID,
			Kind:        e.Kind,
			Title:       e.Title,
			URL:         e.URL,
			Text:        e.Text,
			SubmitterID: e.SubmitterID,
			UpvoteCount: e.UpvoteCount,
			CreatedAt:   e.CreatedAt,
		})
	case events.NewsItemUpvoted, events.NewsItemUnvoted:
		err = idx.UpdateUpvotes(ctx, e.NewsItemID, e.UpvoteCount)
	default:
		log.Debug("skipping event", slog.String("event_type", string(e.Type)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %d: %w", e.Type, e.NewsItemID, err)
	}

	log.Debug("event indexed",
		slog.String("event_type", string(e.Type)),
		slog.Int64("news_item_id", e.NewsItemID),
	)
	return nil
}

// deadLetter copies msg with headers describing where it came from and why it failed.
func deadLetter(msg kafka.Message, cause error, at time.Time) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "timestamp", Value: []byte(at.UTC().Format(time.RFC3339))},
	)
	return kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}
}
