package governance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog-sync/core/export"

	"go.uber.org/zap"
)

// Client talks to the downstream governance catalog's REST API. It
// implements export.Target.
type Client struct {
	baseURL    string
	token      string
	domain     string
	community  string
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a governance catalog client from configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		domain:     cfg.Domain,
		community:  cfg.Community,
		maxRetries: maxRetries,
		baseDelay:  500 * time.Millisecond,
		maxDelay:   10 * time.Second,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:     logger,
	}
}

// upsertRequest is the wire shape of one batch import call.
type upsertRequest struct {
	Domain    string               `json:"domain"`
	Community string               `json:"community"`
	Assets    []export.MappedAsset `json:"assets"`
}

// UpsertBatch submits one batch of mapped assets. The per-asset outcomes in
// the response decide which records advance to SYNCED.
func (c *Client) UpsertBatch(ctx context.Context, assets []export.MappedAsset) (*export.BatchResult, error) {
	payload := upsertRequest{Domain: c.domain, Community: c.community, Assets: assets}
	body, err := c.do(ctx, http.MethodPost, "/api/v1/assets/bulk", payload)
	if err != nil {
		return nil, err
	}

	var result export.BatchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("governance api: decode batch result: %w", err)
	}
	c.logger.Debug("batch upsert accepted",
		zap.Int("assets", len(assets)),
		zap.Int("outcomes", len(result.Outcomes)))
	return &result, nil
}

// ResolveIdentifier looks up the downstream internal id for a deterministic
// identifier. A 404 means the asset is absent, which is not an error.
func (c *Client) ResolveIdentifier(ctx context.Context, identifier string) (string, bool, error) {
	path := "/api/v1/assets/resolve?domain=" + url.QueryEscape(c.domain) +
		"&community=" + url.QueryEscape(c.community) +
		"&name=" + url.QueryEscape(identifier)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var httpErr *HTTPError
		if asHTTPError(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, fmt.Errorf("governance api: decode resolve result: %w", err)
	}
	if resp.ID == "" {
		return "", false, nil
	}
	return resp.ID, true, nil
}

// Delete removes the asset with the given internal id. Deleting an id the
// catalog no longer knows is a no-op success.
func (c *Client) Delete(ctx context.Context, internalID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/assets/"+url.PathEscape(internalID), nil)
	var httpErr *HTTPError
	if asHTTPError(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// HTTPError reports a non-retryable HTTP failure from the governance API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("governance api: http %d: %s", e.StatusCode, e.Message)
}

func asHTTPError(err error, target **HTTPError) bool {
	if err == nil {
		return false
	}
	he, ok := err.(*HTTPError)
	if !ok {
		return false
	}
	*target = he
	return true
}

// do performs one request with bounded exponential backoff on 429/5xx
// (honoring Retry-After) and connection errors. Other 4xx fail immediately
// as HTTPError.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	endpoint := c.baseURL + path

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if bodyBytes != nil {
			reader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := c.wait(ctx, attempt+1, ""); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, fmt.Errorf("governance api: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return respBody, nil
		}

		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < c.maxRetries {
			if waitErr := c.wait(ctx, attempt+1, resp.Header.Get("Retry-After")); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
}

func (c *Client) wait(ctx context.Context, attempt int, retryAfterHeader string) error {
	delay := c.baseDelay
	if header := strings.TrimSpace(retryAfterHeader); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			delay = time.Duration(seconds) * time.Second
		}
	} else {
		for i := 1; i < attempt; i++ {
			delay *= 2
		}
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
