package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samims/sitepulse/internal/client"
	"github.com/samims/sitepulse/internal/model"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// fakeUpstream records requests and answers with the handler's response.
type fakeUpstream struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeUpstream) hits() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newFakeUpstream(t *testing.T, handler http.HandlerFunc) (*fakeUpstream, *client.Client) {
	t.Helper()
	f := &fakeUpstream{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.Body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := client.New(client.Options{BaseURL: srv.URL, Version: "v1"}, nil, slog.Default())
	return f, c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func successEnvelope(data string) string {
	return `{"status":"success","data":` + data + `}`
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.CheckEvent
	err    error
}

func (p *recordingPublisher) Start(context.Context) {}

func (p *recordingPublisher) Publish(_ context.Context, e model.CheckEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close(context.Context) {}

func requireHits(t *testing.T, f *fakeUpstream, n int) []recordedRequest {
	t.Helper()
	hits := f.hits()
	require.Len(t, hits, n)
	return hits
}
