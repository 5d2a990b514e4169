package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmerrifield20/phishguard/pkg/client"
	"github.com/jmerrifield20/phishguard/pkg/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stub server ─────────────────────────────────────────────────────────

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "No URL provided"})
			return
		}
		if req.URL != "http://bit.ly/abc" {
			w.WriteHeader(http.StatusTeapot)
			json.NewEncoder(w).Encode(map[string]string{"error": "unexpected url " + req.URL})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"is_phishing": true,
			"confidence":  30,
			"risk":        "LOW",
			"score":       30,
			"reasons":     []string{"Not using HTTPS", "Uses URL shortener: bit.ly"},
		})
	})

	mux.HandleFunc("/api/v1/rules", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"rules":              []string{"ip_host", "long_url"},
			"rule_set":           map[string]any{"long_url_length": 75},
			"phishing_threshold": 30,
			"max_reasons":        5,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// ── Tests ────────────────────────────────────────────────────────────────

func TestCheck_defaultsSchemeAndDecodes(t *testing.T) {
	srv := stubServer(t)
	c, err := client.New(srv.URL + "/")
	require.NoError(t, err)

	v, err := c.Check(context.Background(), "bit.ly/abc")
	require.NoError(t, err)
	assert.True(t, v.IsPhishing)
	assert.Equal(t, 30, v.Score)
	assert.Equal(t, "LOW", v.Risk)
	assert.Equal(t, []string{"Not using HTTPS", "Uses URL shortener: bit.ly"}, v.Reasons)
}

func TestCheck_emptyURLNeverHitsServer(t *testing.T) {
	c, err := client.New("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.Check(context.Background(), "  ")
	assert.ErrorIs(t, err, target.ErrEmpty)
}

func TestCheck_apiErrorCarriesMessage(t *testing.T) {
	srv := stubServer(t)
	c, err := client.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Check(context.Background(), "https://other.example")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusTeapot, apiErr.StatusCode)
	assert.Equal(t, "unexpected url https://other.example", apiErr.Message)
}

func TestRules(t *testing.T) {
	srv := stubServer(t)
	c, err := client.New(srv.URL)
	require.NoError(t, err)

	info, err := c.Rules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ip_host", "long_url"}, info.Rules)
	assert.Equal(t, 30, info.PhishingThreshold)
	assert.JSONEq(t, `{"long_url_length":75}`, string(info.RuleSet))
}

func TestCheck_plainTextErrorBody(t *testing.T) {
	srv := stubServer(t)
	c, err := client.New(srv.URL + "/missing")
	require.NoError(t, err)

	_, err = c.Check(context.Background(), "https://example.com")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "404 page not found", apiErr.Message)
}

func TestNew_options(t *testing.T) {
	_, err := client.New("")
	assert.Error(t, err)

	_, err = client.New("http://x", client.WithTimeout(0))
	assert.Error(t, err)

	_, err = client.New("http://x", client.WithHTTPClient(nil))
	assert.Error(t, err)

	_, err = client.New("http://x", client.WithTimeout(time.Second), client.WithHTTPClient(http.DefaultClient))
	assert.NoError(t, err)
}

func TestWithTimeout_leavesCallerClientUntouched(t *testing.T) {
	srv := stubServer(t)
	hc := &http.Client{Timeout: time.Minute}

	c, err := client.New(srv.URL, client.WithHTTPClient(hc), client.WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, hc.Timeout)

	v, err := c.Check(context.Background(), "bit.ly/abc")
	require.NoError(t, err)
	assert.True(t, v.IsPhishing)
}

func TestCheck_contextCancelled(t *testing.T) {
	srv := stubServer(t)
	c, err := client.New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Check(ctx, "http://bit.ly/abc")
	assert.ErrorIs(t, err, context.Canceled)
}
