package bgg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"olwlg-nametags/internal/config"
	"olwlg-nametags/internal/models"
)

// ErrAuth is returned when the BGG API rejects the supplied token.
var ErrAuth = errors.New("bgg api rejected token")

// LookupError reports an identifier from the trade results that has no
// corresponding entity on BGG.
type LookupError struct {
	Kind string // "member" or "item"
	ID   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no bgg %s found for %q", e.Kind, e.ID)
}

// ClientInterface defines the interface for the BGG XMLAPI client.
type ClientInterface interface {
	ValidateToken(ctx context.Context) error
	GetUser(ctx context.Context, name string) (models.MemberInfo, error)
	GetItem(ctx context.Context, itemID string) (models.ItemInfo, error)
}

// Client is a read-only client for the BGG XMLAPI.
// It implements the ClientInterface.
type Client struct {
	client     *resty.Client
	token      string
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// userResponse mirrors the XMLAPI /user payload. BGG answers 200 with an
// empty id attribute when the username does not exist.
type userResponse struct {
	ID        string    `xml:"id,attr"`
	Name      string    `xml:"name,attr"`
	FirstName valueAttr `xml:"firstname"`
	LastName  valueAttr `xml:"lastname"`
}

type valueAttr struct {
	Value string `xml:"value,attr"`
}

// thingResponse mirrors the XMLAPI /thing payload. A missing thing id
// yields an empty item list, not an error status.
type thingResponse struct {
	Items []thingItem `xml:"item"`
}

type thingItem struct {
	ID    string      `xml:"id,attr"`
	Names []thingName `xml:"name"`
}

type thingName struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

// NewClient creates a new BGG XMLAPI client. The token is attached to every
// request as a bearer credential.
func NewClient(cfg *config.BGG, token string, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", "Bearer "+token)

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	// At least one attempt, whatever the config says.
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		client:     client,
		token:      token,
		logger:     logger,
		limiter:    limiter,
		maxRetries: maxRetries,
	}
}

// ValidateToken performs a cheap authenticated call so a bad token fails the
// run before any lookups start.
func (c *Client) ValidateToken(ctx context.Context) error {
	req := c.client.R().SetQueryParam("type", "boardgame")
	if _, err := c.doRequest(ctx, "/hot", req); err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	return nil
}

// GetUser resolves a BGG username to a MemberInfo with the member's real
// name. Falls back to the username when the profile carries no name.
func (c *Client) GetUser(ctx context.Context, name string) (models.MemberInfo, error) {
	var user userResponse
	req := c.client.R().
		SetQueryParam("name", name).
		SetResult(&user)

	if _, err := c.doRequest(ctx, "/user", req); err != nil {
		return models.MemberInfo{}, fmt.Errorf("get user %q: %w", name, err)
	}

	if user.ID == "" {
		return models.MemberInfo{}, &LookupError{Kind: "member", ID: name}
	}

	display := strings.TrimSpace(user.FirstName.Value + " " + user.LastName.Value)
	if display == "" {
		display = name
	}

	return models.MemberInfo{ID: name, DisplayName: display}, nil
}

// GetItem resolves an OLWLG item token to an ItemInfo. The numeric prefix
// of the token is the BGG thing id; the primary name becomes the display
// name.
func (c *Client) GetItem(ctx context.Context, itemID string) (models.ItemInfo, error) {
	numericID, _, _ := strings.Cut(itemID, "-")
	if numericID == "" {
		numericID = itemID
	}

	var things thingResponse
	req := c.client.R().
		SetQueryParam("id", numericID).
		SetResult(&things)

	if _, err := c.doRequest(ctx, "/thing", req); err != nil {
		return models.ItemInfo{}, fmt.Errorf("get item %q: %w", itemID, err)
	}

	if len(things.Items) == 0 {
		return models.ItemInfo{}, &LookupError{Kind: "item", ID: itemID}
	}

	display := primaryName(things.Items[0])
	if display == "" {
		return models.ItemInfo{}, &LookupError{Kind: "item", ID: itemID}
	}

	return models.ItemInfo{ID: itemID, DisplayName: display}, nil
}

// primaryName picks the primary name of a thing, falling back to the first
// listed alternate.
func primaryName(item thingItem) string {
	for _, n := range item.Names {
		if n.Type == "primary" {
			return n.Value
		}
	}
	if len(item.Names) > 0 {
		return item.Names[0].Value
	}
	return ""
}

// doRequest handles the actual request execution with rate limiting and
// retry logic. BGG answers 202 while a request is still being prepared
// server-side; those are retried with backoff. 401/403 map to ErrAuth.
func (c *Client) doRequest(ctx context.Context, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for i := 0; i < c.maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+url))
		resp, err = req.SetContext(ctx).Get(url)

		if err == nil && resp.StatusCode() == http.StatusOK {
			return resp, nil // Success
		}

		if resp != nil {
			switch code := resp.StatusCode(); {
			case code == http.StatusUnauthorized || code == http.StatusForbidden:
				return nil, ErrAuth
			case code == http.StatusAccepted || code == http.StatusTooManyRequests || code >= 500:
				// Retryable: queued request, throttling, server error.
			case err == nil:
				return nil, fmt.Errorf("request failed with status %s", resp.Status())
			}
		}

		if i == c.maxRetries-1 {
			break
		}

		retryAfter := time.Duration(i+1) * time.Second

		c.logger.Warn("BGG request not ready, retrying...",
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
