package olwlg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"olwlg-nametags/internal/config"
)

// ErrNotFound is returned when the official results for a trade id are not
// published yet. OLWLG only serves the results file after the trade closes.
var ErrNotFound = errors.New("official results not published")

// ClientInterface defines the interface for the OLWLG results client.
type ClientInterface interface {
	FetchResults(ctx context.Context, tradeID int) (string, error)
}

// Client fetches official math-trade results from the OLWLG server.
// It implements the ClientInterface.
type Client struct {
	client     *resty.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new OLWLG results client.
func NewClient(cfg *config.OLWLG, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// Initialize the rate limiter
	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	// At least one attempt, whatever the config says.
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		client:     client,
		logger:     logger,
		limiter:    limiter,
		maxRetries: maxRetries,
	}
}

// FetchResults downloads the official results text for a trade id.
// A 404 from the server means the trade has no published results and maps
// to ErrNotFound; other failures are surfaced as network errors.
func (c *Client) FetchResults(ctx context.Context, tradeID int) (string, error) {
	url := fmt.Sprintf("/%d-results-official.txt", tradeID)
	c.logger.Info("Fetching official trade results",
		zap.Int("trade_id", tradeID),
		zap.String("url", c.client.BaseURL+url),
	)

	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch results for trade %d: %w", tradeID, err)
	}

	return resp.String(), nil
}

// doRequest handles the actual request execution with rate limiting and
// retry logic. Server errors are retried with exponential backoff; a 404 is
// final and mapped to ErrNotFound.
func (c *Client) doRequest(ctx context.Context, url string) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for i := 0; i < c.maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err = c.client.R().SetContext(ctx).Get(url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		if resp != nil && resp.StatusCode() == http.StatusNotFound {
			return nil, ErrNotFound
		}

		// Retry only transport failures and server-side errors.
		if err == nil && resp.StatusCode() < 500 {
			return nil, fmt.Errorf("request failed with status %s", resp.Status())
		}

		if i == c.maxRetries-1 {
			break
		}

		// Exponential backoff: 1s, 2s, 4s
		retryAfter := time.Duration(math.Pow(2, float64(i))) * time.Second

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err == nil {
		err = fmt.Errorf("status %s", resp.Status())
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, err)
}
