package tzkt

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

	"github.com/shopspring/decimal"

	"plenty-analytics-indexer/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultPageLimit   = 500
)

// HTTPClient implements Provider against a TzKT-style REST API.
type HTTPClient struct {
	baseURL     string
	client      *http.Client
	pageLimit   int
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithPageLimit sets the page size used for paginated queries.
func WithPageLimit(n int) ClientOption {
	return func(c *HTTPClient) {
		c.pageLimit = n
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new TzKT API client.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		pageLimit:   DefaultPageLimit,
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Provider = (*HTTPClient)(nil)

// get performs a GET with retries and exponential backoff, decoding the JSON
// response body into result.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetOperationHashes returns the hashes of applied operations that called one
// of the entrypoints on the contract at the given level. Pages through the
// result set until an empty page signals exhaustion.
func (c *HTTPClient) GetOperationHashes(ctx context.Context, contract string, entrypoints []string, level int64) ([]string, error) {
	var hashes []string
	offset := 0

	for {
		query := url.Values{}
		query.Set("target.in", contract)
		query.Set("entrypoint.in", strings.Join(entrypoints, ","))
		query.Set("level", strconv.FormatInt(level, 10))
		query.Set("select", "hash")
		query.Set("status", "applied")
		query.Set("limit", strconv.Itoa(c.pageLimit))
		query.Set("offset", strconv.Itoa(offset))

		var page []string
		if err := c.get(ctx, "/operations/transactions", query, &page); err != nil {
			return nil, fmt.Errorf("get operation hashes for %s at level %d: %w", contract, level, err)
		}
		if len(page) == 0 {
			break
		}
		hashes = append(hashes, page...)
		offset += c.pageLimit
	}

	return hashes, nil
}

// GetOperation returns the full ordered step list of an operation group.
func (c *HTTPClient) GetOperation(ctx context.Context, hash string) ([]OperationStep, error) {
	var steps []OperationStep
	if err := c.get(ctx, "/operations/"+hash, nil, &steps); err != nil {
		return nil, fmt.Errorf("get operation %s: %w", hash, err)
	}
	return steps, nil
}

// GetTokenBalance returns the account's balance of the token, normalized by
// the token's decimals.
func (c *HTTPClient) GetTokenBalance(ctx context.Context, token domain.Token, account string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("token.contract", token.Address)
	query.Set("token.tokenId", strconv.FormatInt(token.TokenID, 10))
	query.Set("account", account)

	var rows []tokenBalanceRow
	if err := c.get(ctx, "/tokens/balances", query, &rows); err != nil {
		return decimal.Zero, fmt.Errorf("get token balance of %s for %s: %w", token.Symbol, account, err)
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}

	raw, err := decimal.NewFromString(rows[0].Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", rows[0].Balance, err)
	}
	return raw.Shift(int32(-token.Decimals)), nil
}

// GetHead returns the latest block level known to the indexer API.
func (c *HTTPClient) GetHead(ctx context.Context) (int64, error) {
	var head struct {
		Level int64 `json:"level"`
	}
	if err := c.get(ctx, "/head", nil, &head); err != nil {
		return 0, fmt.Errorf("get head: %w", err)
	}
	return head.Level, nil
}
