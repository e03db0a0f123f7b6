package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErr "github.com/samims/sitepulse/internal/errors"
)

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token(context.Context) (string, error) { return s.token, s.err }

func newTestClient(t *testing.T, h http.HandlerFunc, tokens TokenSource, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Version: "v1", Timeout: timeout, ClientVersion: "1.2.3"}, tokens, slog.Default())
}

func TestDo_HeadersAndBody(t *testing.T) {
	var got *http.Request
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"ok":true}`))
	}, staticToken{token: "secret-token"}, 0)

	raw, err := c.Post(context.Background(), "/healthcheck", map[string]any{"url": "https://example.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v1/healthcheck", got.URL.Path)
	assert.Equal(t, "Bearer secret-token", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "sitepulse-go/1.2.3", got.Header.Get("X-Sitepulse-Client"))
	assert.Equal(t, "https://example.com", gotBody["url"])
}

func TestDo_QueryAndMissingToken(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`[]`))
	}, staticToken{err: errors.New("no row")}, 0)

	_, err := c.Get(context.Background(), "user/monitors/m1/histogram", url.Values{"period": {"24h"}})
	require.NoError(t, err)

	assert.Equal(t, "/v1/user/monitors/m1/histogram", got.URL.Path)
	assert.Equal(t, "24h", got.URL.Query().Get("period"))
	// the request is still sent without a usable token
	assert.Equal(t, "Bearer", strings.TrimSpace(got.Header.Get("Authorization")))
}

func TestDo_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","message":"Invalid API token"}`))
	}, nil, 0)

	_, err := c.Get(context.Background(), "user/monitors", nil)
	require.Error(t, err)

	var reqErr *appErr.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, "Invalid API token", reqErr.Message)
	assert.True(t, appErr.IsUpstream(err))
}

func TestDo_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}, nil, 0)

	_, err := c.Get(context.Background(), "regions", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErr.ErrMalformedResponse))
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, nil, 50*time.Millisecond)
	defer close(release)

	_, err := c.Get(context.Background(), "regions", nil)
	require.Error(t, err)

	var reqErr *appErr.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Zero(t, reqErr.StatusCode)
	assert.NotNil(t, reqErr.Err)
}

func TestDo_TransportError(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1"}, nil, slog.Default())

	_, err := c.Delete(context.Background(), "user/monitors/x")
	require.Error(t, err)
	assert.True(t, appErr.IsUpstream(err))
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantData string
		wantErr  string
	}{
		{name: "success", raw: `{"status":"success","data":{"id":"m1"}}`, wantData: `{"id":"m1"}`},
		{name: "failure with message", raw: `{"status":"error","message":"Monitor not found"}`, wantErr: "Monitor not found"},
		{name: "failure without message", raw: `{"status":"fail"}`, wantErr: `unexpected status "fail"`},
		{name: "not an object", raw: `[1,2]`, wantErr: "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := DecodeEnvelope(http.MethodGet, "user/monitors/m1", json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantData, string(data))
		})
	}
}

func TestNew_SuppliedHTTPClientGetsTimeout(t *testing.T) {
	supplied := &http.Client{}
	c := New(Options{BaseURL: "http://upstream", Timeout: 3 * time.Second, HTTPClient: supplied}, nil, slog.Default())
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
	assert.Zero(t, supplied.Timeout, "caller's client must not be mutated")

	own := &http.Client{Timeout: time.Second}
	c = New(Options{BaseURL: "http://upstream", Timeout: 3 * time.Second, HTTPClient: own}, nil, slog.Default())
	assert.Equal(t, time.Second, c.httpClient.Timeout)

	c = New(Options{BaseURL: "http://upstream", HTTPClient: &http.Client{}}, nil, slog.Default())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestErrorMessage_TruncatesOnRuneBoundary(t *testing.T) {
	// one ASCII byte shifts every 3-byte rune so the cut lands mid-sequence
	body := "x" + strings.Repeat("€", maxErrorBody)
	msg := errorMessage([]byte(body), "fallback")

	assert.True(t, utf8.ValidString(msg))
	assert.LessOrEqual(t, len(msg), maxErrorBody)
	assert.True(t, strings.HasPrefix(msg, "x€"))

	short := "plain error"
	assert.Equal(t, short, errorMessage([]byte(short), "fallback"))
}
