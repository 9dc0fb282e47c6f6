// Package blobstore persists the AppState snapshot in a remote HTTP
// key-value blob service. Calls go through a circuit breaker, retry
// with backoff, and a bulkhead, since the backend is a network hop.
package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("store/blob")

// snapshotKey is the single key the session's state lives under.
const snapshotKey = "meow-bank"

// Client wraps HTTP calls to the blob service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewClient creates a blob store client.
func NewClient(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
		logger:     logger,
	}
}

// Load fetches the snapshot blob. Any failure — network, non-2xx,
// undecodable payload — yields a fresh default state; the load
// contract never fails.
func (c *Client) Load(ctx context.Context) *domain.AppState {
	ctx, span := tracer.Start(ctx, "BlobStore.Load")
	defer span.End()

	var raw []byte
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, nil)
			if err != nil {
				return err
			}
			raw = body
			return nil
		})
	})
	if err != nil {
		c.logger.Warn("blobstore: load failed, starting fresh", zap.Error(err))
		return domain.DefaultState(time.Now())
	}
	if len(raw) == 0 {
		return domain.DefaultState(time.Now())
	}

	var state domain.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		c.logger.Warn("blobstore: corrupt snapshot, starting fresh", zap.Error(err))
		return domain.DefaultState(time.Now())
	}
	return &state
}

// Save uploads the snapshot blob.
func (c *Client) Save(ctx context.Context, state *domain.AppState) error {
	ctx, span := tracer.Start(ctx, "BlobStore.Save")
	defer span.End()

	payload, err := json.Marshal(state)
	if err != nil {
		return &domain.ErrSnapshotStore{Backend: "blob", Err: fmt.Errorf("encode snapshot: %w", err)}
	}

	_, err = c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			_, err := c.doRequest(ctx, http.MethodPut, payload)
			return err
		})
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &domain.ErrSnapshotStore{Backend: "blob", Err: &domain.ErrCircuitOpen{Service: "blobstore"}}
	}
	if err != nil {
		return &domain.ErrSnapshotStore{Backend: "blob", Err: err}
	}

	c.logger.Debug("blobstore: snapshot saved", zap.Int("bytes", len(payload)))
	return nil
}

// doRequest executes an authenticated request against the blob key.
// A GET of a missing key returns (nil, nil).
func (c *Client) doRequest(ctx context.Context, method string, body []byte) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	url := fmt.Sprintf("%s/v1/blobs/%s", c.baseURL, snapshotKey)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("blobstore: request failed",
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("blobstore: non-2xx response",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return nil, fmt.Errorf("blob service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
