package gist

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"signaly.chapter42.de/a/internal/auth"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/tmpl"
)

// zeroBackoff hält die Tests schnell
type zeroBackoff struct{}

func (zeroBackoff) CalculateBackoff(int) time.Duration { return 0 }

func testPublisher(t *testing.T, baseURL string) *Publisher {
	t.Helper()
	cfg := &data.SignalyConfig{
		Feed: data.FeedConfig{
			FileName:      "btc_feed.json",
			GistID:        "abc123",
			GithubBaseURL: baseURL,
			Endpoints:     data.EndpointConfig{Bulk: "/bulk", Gist: "/gists/{{.ID}}"},
			AuthProvider:  &auth.TokenAuth{Token: "gh-token"},
		},
	}
	assert.NoError(t, tmpl.PrepareTemplates(cfg))

	p := NewPublisher(&cfg.Feed)
	p.backoff = zeroBackoff{}
	return p
}

func TestPublish(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/gists/abc123", r.URL.Path)
		assert.Equal(t, "token gh-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		body, _ := io.ReadAll(r.Body)
		var patch map[string]map[string]map[string]string
		assert.NoError(t, json.Unmarshal(body, &patch))
		assert.Equal(t, `{"finalBias":"long"}`, patch["files"]["btc_feed.json"]["content"])

		w.Write([]byte(`{"files":{"btc_feed.json":{"raw_url":"https://gist.githubusercontent.com/user/abc123/raw/btc_feed.json"}}}`))
	}))
	defer ts.Close()

	rawURL, err := testPublisher(t, ts.URL).Publish(context.Background(), []byte(`{"finalBias":"long"}`))
	assert.NoError(t, err)
	assert.Equal(t, "https://gist.githubusercontent.com/user/abc123/raw/btc_feed.json", rawURL)
}

func TestPublishRetriesTransient(t *testing.T) {
	// Erst 502, dann 200 → der Publisher versucht es erneut
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"files":{"btc_feed.json":{"raw_url":"https://gist.githubusercontent.com/user/abc123/raw/btc_feed.json"}}}`))
	}))
	defer ts.Close()

	rawURL, err := testPublisher(t, ts.URL).Publish(context.Background(), []byte("{}"))
	assert.NoError(t, err)
	assert.Equal(t, "https://gist.githubusercontent.com/user/abc123/raw/btc_feed.json", rawURL)
	assert.Equal(t, 2, calls)
}

func TestPublishGivesUpAfterRetries(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := testPublisher(t, ts.URL).Publish(context.Background(), []byte("{}"))
	assert.Error(t, err)
	assert.Equal(t, maxRetries+1, calls)
	assert.Contains(t, err.Error(), "nach 4 Versuchen")
	assert.Contains(t, err.Error(), "502")
}

func TestPublishErrorStatus(t *testing.T) {
	// 422 ist endgültig, kein weiterer Versuch
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("Validation Failed"))
	}))
	defer ts.Close()

	_, err := testPublisher(t, ts.URL).Publish(context.Background(), []byte("{}"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "Validation Failed")
	assert.Equal(t, 1, calls)
}

func TestPublishMissingRawURL(t *testing.T) {
	// Antwort ohne die erwartete Datei ist ein Fehler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"files":{}}`))
	}))
	defer ts.Close()

	_, err := testPublisher(t, ts.URL).Publish(context.Background(), []byte("{}"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "raw_url")
}
