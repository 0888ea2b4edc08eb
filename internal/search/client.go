package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Document is the indexed form of a story.
type Document struct {
	ID          int64     `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Text        string    `json:"text,omitempty"`
	SubmitterID string    `json:"submitter_id"`
	UpvoteCount int       `json:"upvote_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result bundles hits and total count.
type Result struct {
	Total int64
	Items []Document
}

// Client wraps go-elasticsearch with the queries the site needs.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// New instantiates the Elasticsearch client. No request is made.
func New(addr, index string, logger *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{es: es, index: index, log: logger}, nil
}

// Index writes or replaces a document.
func (c *Client) Index(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// UpdateUpvotes sets the upvote count of an indexed story.
// Stories that were never indexed are skipped.
func (c *Client) UpdateUpvotes(ctx context.Context, id int64, count int) error {
	payload, err := json.Marshal(map[string]any{
		"doc": map[string]any{"upvote_count": count},
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      c.index,
		DocumentID: strconv.FormatInt(id, 10),
		Body:       bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("update doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		c.log.Debug("update skipped, document missing", slog.Int64("id", id))
		return nil
	}
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("update doc failed: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// Search runs a full-text query over titles, text and urls.
// An empty query lists the newest stories.
func (c *Client) Search(ctx context.Context, query string, from, size int) (*Result, error) {
	if size <= 0 {
		size = 30
	}
	if from < 0 {
		from = 0
	}

	body := map[string]any{
		"from":             from,
		"size":             size,
		"track_total_hits": true,
	}
	if q := strings.TrimSpace(query); q != "" {
		body["query"] = map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^3", "text", "url"},
			},
		}
	} else {
		body["query"] = map[string]any{"match_all": map[string]any{}}
		body["sort"] = []map[string]any{
			{"created_at": map[string]any{"order": "desc"}},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]Document, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		items = append(items, hit.Source)
	}
	return &Result{Total: parsed.Hits.Total.Value, Items: items}, nil
}

// Health pings the cluster.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}
