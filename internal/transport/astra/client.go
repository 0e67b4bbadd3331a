// Package astra is a minimal client for the Astra DB Data API, covering
// the single operation this program needs: find nearest documents by
// vector with a result limit.
package astra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragquery/internal/domain"
	"github.com/kailas-cloud/ragquery/internal/logger"
	"github.com/kailas-cloud/ragquery/internal/retry"
)

// Config holds the Data API connection settings.
type Config struct {
	Token      string
	Endpoint   string
	Namespace  string
	Collection string
	HTTPClient *http.Client
	Retry      retry.Policy
}

var _ domain.DocumentFinder = (*Client)(nil)

// Client issues Data API commands against one collection.
type Client struct {
	url        string
	token      string
	namespace  string
	collection string
	httpClient *http.Client
	retry      retry.Policy
}

// NewClient creates a Data API client bound to a single collection.
func NewClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	return &Client{
		url:        fmt.Sprintf("%s/api/json/v1/%s/%s", endpoint, cfg.Namespace, cfg.Collection),
		token:      cfg.Token,
		namespace:  cfg.Namespace,
		collection: cfg.Collection,
		httpClient: httpClient,
		retry:      cfg.Retry,
	}
}

// FullName returns the collection identifier as "namespace.collection".
func (c *Client) FullName() string {
	return c.namespace + "." + c.collection
}

// findCommand is the Data API find request envelope.
type findCommand struct {
	Find findClause `json:"find"`
}

type findClause struct {
	Sort       map[string]any  `json:"sort"`
	Projection map[string]bool `json:"projection"`
	Options    findOptions     `json:"options"`
}

type findOptions struct {
	Limit int `json:"limit"`
}

// findResponse is the Data API response envelope. Records carry an
// external, unvalidated schema, so documents stay loosely typed until
// the content field is extracted.
type findResponse struct {
	Data struct {
		Documents []map[string]any `json:"documents"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// Find implements domain.DocumentFinder. Documents come back in the
// server's similarity-ranked order (closest first); no local re-ranking.
// A record without a string content field is an error.
func (c *Client) Find(ctx context.Context, vector []float32, limit int) ([]domain.Document, error) {
	cmd := findCommand{
		Find: findClause{
			Sort:       map[string]any{"$vector": vector},
			Projection: map[string]bool{"_id": true, "content": true},
			Options:    findOptions{Limit: limit},
		},
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal find command: %w", err)
	}

	start := time.Now()

	var parsed findResponse
	err = c.retry.Do(ctx, "find", func(ctx context.Context) error {
		parsed = findResponse{}
		return c.postFind(ctx, body, &parsed)
	})
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(parsed.Data.Documents))
	for i, rec := range parsed.Data.Documents {
		content, ok := rec["content"].(string)
		if !ok {
			return nil, fmt.Errorf("document %d in %s: %w", i, c.FullName(), domain.ErrMissingContent)
		}
		id, _ := rec["_id"].(string)
		docs = append(docs, domain.Document{ID: id, Content: content})
	}

	logger.FromContext(ctx).Debug("documents retrieved",
		zap.String("collection", c.FullName()),
		zap.Int("limit", limit),
		zap.Int("count", len(docs)),
		zap.Duration("latency", time.Since(start)),
	)

	return docs, nil
}

// postFind performs one HTTP round trip and decodes the response.
func (c *Client) postFind(ctx context.Context, body []byte, out *findResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("find request: %v: %w", err, domain.ErrVectorStore)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		wrapped := fmt.Errorf("find returned %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(payload)), domain.ErrVectorStore)
		if transientStatus(resp.StatusCode) {
			return wrapped
		}
		return retry.Permanent(wrapped)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return retry.Permanent(fmt.Errorf("decode find response: %v: %w", err, domain.ErrVectorStore))
	}

	// The Data API reports command failures inside a 200 response.
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return retry.Permanent(fmt.Errorf("find failed (%s): %s: %w",
			first.ErrorCode, first.Message, domain.ErrVectorStore))
	}

	return nil
}

func transientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
