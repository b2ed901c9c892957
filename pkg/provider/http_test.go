package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// testConfig returns a config with retry backoffs short enough for tests.
func testConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    time.Millisecond,
			MaxBackoff:        5 * time.Millisecond,
			BackoffMultiplier: 2.0,
		},
	}
}

func TestNewHTTPClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(Config{}); err == nil {
		t.Error("NewHTTPClient should fail without a base URL")
	}
}

func TestHTTPClient_SearchClubs(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("page_number")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"id": "281", "name": "Manchester City"}, {"id": "11", "name": "Arsenal"}]}`))
	}))
	defer server.Close()

	c, err := NewHTTPClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	result, err := c.SearchClubs(context.Background(), "GB1", 1)
	if err != nil {
		t.Fatalf("SearchClubs failed: %v", err)
	}

	if gotPath != "/clubs/search/GB1" {
		t.Errorf("path = %q, want /clubs/search/GB1", gotPath)
	}
	if gotQuery != "1" {
		t.Errorf("page_number = %q, want 1", gotQuery)
	}
	if len(result.Results) != 2 || result.Results[0].ID != "281" {
		t.Errorf("Results = %v, want two clubs starting with 281", result.Results)
	}
}

func TestHTTPClient_GetClubPlayers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clubs/281/players" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"players": [{"id": "p-1", "name": "Haaland"}, {"id": "p-2"}]}`))
	}))
	defer server.Close()

	c, err := NewHTTPClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	roster, err := c.GetClubPlayers(context.Background(), "281")
	if err != nil {
		t.Fatalf("GetClubPlayers failed: %v", err)
	}
	if len(roster.Players) != 2 || roster.Players[0].ID != "p-1" {
		t.Errorf("Players = %v", roster.Players)
	}
}

func TestHTTPClient_GetPlayerProfile_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c, err := NewHTTPClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	rec, err := c.GetPlayerProfile(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetPlayerProfile should map 404 to nil, got error %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %v, want nil for not-found", rec)
	}
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id": "p-1", "name": "Haaland"}`))
	}))
	defer server.Close()

	c, err := NewHTTPClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	rec, err := c.GetPlayerProfile(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("GetPlayerProfile failed after retries: %v", err)
	}
	if rec["name"] != "Haaland" {
		t.Errorf("name = %v, want Haaland", rec["name"])
	}
	if attempts.Load() != 3 {
		t.Errorf("attempts = %d, want 3", attempts.Load())
	}
}

func TestHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c, err := NewHTTPClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	_, err = c.GetClubPlayers(context.Background(), "bad id")
	if err == nil {
		t.Fatal("expected an error for 400 response")
	}

	var perr *Error
	if !errors.As(err, &perr) || perr.Class != ErrorClassClient {
		t.Errorf("error = %v, want client-class provider error", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts.Load())
	}
}

func TestHTTPClient_RetryExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewHTTPClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	_, err = c.GetClubPlayers(context.Background(), "281")
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("attempts = %d, want MaxAttempts", attempts.Load())
	}
}

func TestHTTPClient_ContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry.InitialBackoff = time.Minute // long enough that cancellation wins

	c, err := NewHTTPClient(cfg)
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = c.GetClubPlayers(ctx, "281")
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("cancellation did not interrupt the backoff promptly")
	}
}

func TestHTTPClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"players": [`)) // truncated JSON
	}))
	defer server.Close()

	c, err := NewHTTPClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	_, err = c.GetClubPlayers(context.Background(), "281")
	if err == nil {
		t.Fatal("expected an error for unusable response body")
	}
}
