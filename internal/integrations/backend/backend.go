package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pricetracker/web/internal/config"
	"github.com/pricetracker/web/internal/metrics"
	"github.com/pricetracker/web/internal/session"
	"github.com/sirupsen/logrus"
)

// PriceTracker API endpoints
const (
	AuthUserPath           = "/api/auth-user"
	UserAgentsPath         = "/api/config/user-agents"
	ProxyServersPath       = "/api/config/proxy-servers"
	ValidateResetTokenPath = "/api/validate-reset-token"
	ProductsPath           = "/api/products"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 4 << 20

// ErrResponseTooLarge is returned when a body exceeds maxBodyBytes.
var ErrResponseTooLarge = errors.New("response too large")

// Response is a completed API call. Non-2xx statuses are not errors at this
// layer; callers decide what a failed status means for their page.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is 2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client handles integration with the PriceTracker REST API
type Client struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new API client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.APITimeout,
		},
		log: log,
	}
}

// Get issues a credentialed GET request
func (c *Client) Get(ctx context.Context, sess session.Session, path string) (*Response, error) {
	return c.do(ctx, sess, http.MethodGet, path, nil)
}

// PostJSON issues a credentialed POST request with a JSON body
func (c *Client) PostJSON(ctx context.Context, sess session.Session, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, sess, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, sess session.Session, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	sess.Apply(req)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveUpstream(path, 0, started)
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	metrics.ObserveUpstream(path, resp.StatusCode, started)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > maxBodyBytes {
		return nil, fmt.Errorf("%s %s: %w: exceeds %d bytes", method, path, ErrResponseTooLarge, maxBodyBytes)
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("API response")

	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
