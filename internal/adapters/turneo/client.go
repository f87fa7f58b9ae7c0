package turneo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"experiences_portal/internal/adapters/observability"
	"experiences_portal/internal/domain"
)

// APIError is the uniform error value for every failed platform call:
// a human-readable message, the upstream's own error string when the
// response body carried one, and the HTTP status code. StatusCode 0 means
// the request never produced a response (network failure, canceled
// context).
type APIError struct {
	Message    string
	Upstream   string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Upstream != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Upstream)
	}
	return e.Message
}

// IsNotFound reports whether err is a platform 404.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

// New builds a platform client. Exactly one outbound call is made per
// operation; the only cross-call coordination is a client-side rate
// limiter so a busy portal cannot trip the platform's quota.
func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- catalog reads ----

func (c *Client) ListExperiences(ctx context.Context, page int) (domain.ExperiencePage, error) {
	u := c.base + "/experiences"
	if page > 0 {
		u += "?page=" + strconv.Itoa(page)
	}
	var out domain.ExperiencePage
	if err := c.do(ctx, http.MethodGet, "experiences", u, nil, &out); err != nil {
		return domain.ExperiencePage{}, err
	}
	return out, nil
}

// GetExperience tolerates both response shapes the platform emits: a bare
// experience object or one nested under a "data" field.
func (c *Client) GetExperience(ctx context.Context, id string) (domain.Experience, error) {
	u := fmt.Sprintf("%s/experiences/%s", c.base, url.PathEscape(id))
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "experience", u, nil, &raw); err != nil {
		return domain.Experience{}, err
	}
	var wrapped struct {
		Data *domain.Experience `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return *wrapped.Data, nil
	}
	var exp domain.Experience
	if err := json.Unmarshal(raw, &exp); err != nil {
		return domain.Experience{}, &APIError{Message: "malformed experience payload", Upstream: err.Error()}
	}
	return exp, nil
}

func (c *Client) ListRates(ctx context.Context, experienceID, from, until string, page int) (domain.RatePage, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if until != "" {
		q.Set("until", until)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	u := fmt.Sprintf("%s/experiences/%s/rates", c.base, url.PathEscape(experienceID))
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	var out domain.RatePage
	if err := c.do(ctx, http.MethodGet, "rates", u, nil, &out); err != nil {
		return domain.RatePage{}, err
	}
	return out, nil
}

func (c *Client) GetRate(ctx context.Context, experienceID, rateID string) (domain.Rate, error) {
	u := fmt.Sprintf("%s/experiences/%s/rates/%s", c.base, url.PathEscape(experienceID), url.PathEscape(rateID))
	var out domain.Rate
	if err := c.do(ctx, http.MethodGet, "rate", u, nil, &out); err != nil {
		return domain.Rate{}, err
	}
	return out, nil
}

// ---- order mutations and reads ----

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "order_create", c.base+"/orders", req, &out); err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	u := fmt.Sprintf("%s/orders/%s", c.base, url.PathEscape(id))
	var out domain.Order
	if err := c.do(ctx, http.MethodGet, "order", u, nil, &out); err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (c *Client) AddBooking(ctx context.Context, orderID string, booking domain.BookingRequest) (domain.Order, error) {
	u := fmt.Sprintf("%s/orders/%s/add", c.base, url.PathEscape(orderID))
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "order_add", u, booking, &out); err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (c *Client) RemoveBookings(ctx context.Context, orderID string, bookingIDs []string) (domain.Order, error) {
	u := fmt.Sprintf("%s/orders/%s/remove", c.base, url.PathEscape(orderID))
	body := struct {
		ExpireBookings []string `json:"expireBookings"`
	}{ExpireBookings: bookingIDs}
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "order_remove", u, body, &out); err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

func (c *Client) ConfirmOrder(ctx context.Context, orderID string, req domain.OrderRequest) (domain.Order, error) {
	u := fmt.Sprintf("%s/orders/%s/confirm", c.base, url.PathEscape(orderID))
	var out domain.Order
	if err := c.do(ctx, http.MethodPost, "order_confirm", u, req, &out); err != nil {
		return domain.Order{}, err
	}
	return out, nil
}

// ---- internals ----

// do performs one request: no retries, no fallback URLs. Failures of any
// kind come back as *APIError so callers branch on one shape.
func (c *Client) do(ctx context.Context, method, endpoint, u string, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.key)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "experiences-portal/1.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveTurneo(endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &APIError{Message: "request failed", Upstream: err.Error()}
	}
	defer resp.Body.Close()
	observability.ObserveTurneo(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if resp.StatusCode == http.StatusNoContent || out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Message: "malformed response payload", Upstream: err.Error(), StatusCode: resp.StatusCode}
		}
		return nil
	}

	// Keep the upstream's own message when the error body carries one.
	var upstream struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(b, &upstream)
	detail := upstream.Message
	if detail == "" {
		detail = upstream.Error
	}
	return &APIError{
		Message:    fmt.Sprintf("API request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Upstream:   detail,
		StatusCode: resp.StatusCode,
	}
}
