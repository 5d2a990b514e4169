// Package client is the Go SDK for the PhishGuard HTTP API.
//
//	c, err := client.New("http://localhost:5000")
//	v, err := c.Check(ctx, "paypal-secure-login.xyz")
//	if v.IsPhishing { ... }
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jmerrifield20/phishguard/pkg/target"
)

// Verdict mirrors the JSON returned by POST /api/v1/check.
type Verdict struct {
	IsPhishing bool     `json:"is_phishing"`
	Confidence int      `json:"confidence"`
	Risk       string   `json:"risk"`
	Score      int      `json:"score"`
	Reasons    []string `json:"reasons"`
}

// RuleSetInfo mirrors the JSON returned by GET /api/v1/rules. The rule set
// itself is kept raw so the SDK does not pin its schema.
type RuleSetInfo struct {
	Rules             []string        `json:"rules"`
	RuleSet           json.RawMessage `json:"rule_set"`
	PhishingThreshold int             `json:"phishing_threshold"`
	MaxReasons        int             `json:"max_reasons"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a PhishGuard server.
type Client struct {
	base       string
	httpClient *http.Client
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout. A client supplied through
// WithHTTPClient is copied first and never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
		return nil
	}
}

// New creates a Client for the server at base, e.g. "http://localhost:5000".
func New(base string, opts ...Option) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL must not be empty")
	}
	c := &Client{
		base:       strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Check asks the server for a verdict on rawURL. A scheme-less URL is sent
// as http://, matching what the server would do.
func (c *Client) Check(ctx context.Context, rawURL string) (*Verdict, error) {
	u, err := target.Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"url": u})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/v1/check", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var v Verdict
	if err := c.do(req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Rules fetches the server's active rule set.
func (c *Client) Rules(ctx context.Context) (*RuleSetInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/v1/rules", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var info RuleSetInfo
	if err := c.do(req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// do executes req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts {"error": "..."} from body, falling back to the raw text.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}
