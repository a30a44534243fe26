package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog-sync/core/model"
	"catalog-sync/core/reconcile"

	"go.uber.org/zap"
)

// Client fetches catalog assets over the source's REST API and normalizes
// them at the boundary. It implements reconcile.Source.
//
// Scope and credentials are explicit per client; there is no process-wide
// session state, so clients for different scopes can run concurrently.
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// HTTPError reports a non-retryable HTTP failure from the source API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("source api: http %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a source catalog client from configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		pageSize:   pageSize,
		maxRetries: maxRetries,
		baseDelay:  250 * time.Millisecond,
		maxDelay:   5 * time.Second,
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger:     logger,
	}
}

// page is the source API's paginated envelope.
type page struct {
	Items      []rawAsset `json:"items"`
	TotalCount int        `json:"totalCount"`
}

// rawAsset is the source API's wire shape for one asset. UpdatedAt and
// usage counters are volatile and never enter the fingerprint.
type rawAsset struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Owner        string `json:"owner"`
	ParentType   string `json:"parentType"`
	ParentID     string `json:"parentId"`
	WorksheetID  string `json:"worksheetId"`
	DataSourceID string `json:"datasourceId"`
	ContentURL   string `json:"contentUrl"`
	DataType     string `json:"dataType"`
	Role         string `json:"role"`
	Formula      string `json:"formula"`
	UpdatedAt    string `json:"updatedAt"`
	UsageCount   int    `json:"usageCount"`
}

// Fetch returns every record of one asset type in a scope, walking the
// API's pages until exhausted.
func (c *Client) Fetch(ctx context.Context, assetType model.AssetType, scopeID string) ([]reconcile.NormalizedRecord, error) {
	var records []reconcile.NormalizedRecord
	for pageNum := 1; ; pageNum++ {
		p, err := c.fetchPage(ctx, assetType, scopeID, pageNum)
		if err != nil {
			return nil, err
		}
		for _, raw := range p.Items {
			records = append(records, normalize(assetType, scopeID, raw))
		}
		if len(p.Items) < c.pageSize {
			break
		}
	}

	c.logger.Debug("fetched source records",
		zap.String("type", string(assetType)),
		zap.String("scope", scopeID),
		zap.Int("count", len(records)))
	return records, nil
}

// fetchPage performs one GET with bounded exponential backoff on transient
// failures: 429 and 5xx responses (honoring Retry-After) and connection
// errors. Other 4xx responses fail immediately.
func (c *Client) fetchPage(ctx context.Context, assetType model.AssetType, scopeID string, pageNum int) (*page, error) {
	endpoint := fmt.Sprintf("%s/api/v1/sites/%s/%ss?page=%d&pageSize=%d",
		c.baseURL, url.PathEscape(scopeID), string(assetType), pageNum, c.pageSize)

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < c.maxRetries {
				if waitErr := sleepContext(ctx, retryDelay(c.baseDelay, c.maxDelay, attempt+1, "")); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, fmt.Errorf("source api: %w", err)
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			var p page
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("source api: decode page: %w", err)
			}
			return &p, nil
		}

		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < c.maxRetries {
			if waitErr := sleepContext(ctx, retryDelay(c.baseDelay, c.maxDelay, attempt+1, resp.Header.Get("Retry-After"))); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
}

func retryDelay(baseDelay, maxDelay time.Duration, attempt int, retryAfterHeader string) time.Duration {
	if retryAfter := parseRetryAfterSeconds(retryAfterHeader); retryAfter > 0 {
		if retryAfter > maxDelay {
			return maxDelay
		}
		return retryAfter
	}
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}

func parseRetryAfterSeconds(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
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
