package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunelink/internal/models"
)

type fakeVotes struct {
	mu    sync.Mutex
	votes []models.Vote
	err   error
}

func (f *fakeVotes) Record(_ context.Context, v *models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.votes = append(f.votes, *v)
	return nil
}

type fakeStats struct {
	total     int64
	platforms map[string]int64
	err       error
}

func (f fakeStats) Count(context.Context) (int64, error) { return f.total, f.err }

func (f fakeStats) CountByPlatform(context.Context) (map[string]int64, error) {
	return f.platforms, f.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware runs in order added", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		want := []string{"first", "second", "handler"}
		if strings.Join(order, ",") != strings.Join(want, ",") {
			t.Errorf("order = %v, want %v", order, want)
		}
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestWebhookRouter(t *testing.T) {
	const secret = "hunter2"

	newRouter := func(votes *fakeVotes, stats fakeStats) *BasicRouter {
		return NewWebhookRouter(secret, votes, stats, quietLogger())
	}

	post := func(body, auth string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/votes", bytes.NewBufferString(body))
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		return req
	}

	t.Run("records a vote", func(t *testing.T) {
		votes := &fakeVotes{}
		rec := httptest.NewRecorder()
		newRouter(votes, fakeStats{}).ServeHTTP(rec, post(`{"user":"42","type":"upvote","isWeekend":true}`, secret))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if len(votes.votes) != 1 {
			t.Fatalf("expected 1 vote, got %d", len(votes.votes))
		}
		if got := votes.votes[0]; got.UserID != "42" || !got.IsWeekend || got.Type != "upvote" {
			t.Errorf("unexpected vote: %+v", got)
		}
	})

	t.Run("rejects a bad secret", func(t *testing.T) {
		tests := []struct {
			name string
			auth string
		}{
			{"missing", ""},
			{"wrong", "nope"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				votes := &fakeVotes{}
				rec := httptest.NewRecorder()
				newRouter(votes, fakeStats{}).ServeHTTP(rec, post(`{"user":"42"}`, tc.auth))

				if rec.Code != http.StatusUnauthorized {
					t.Errorf("status = %d, want 401", rec.Code)
				}
				if len(votes.votes) != 0 {
					t.Error("vote should not be recorded")
				}
			})
		}
	})

	t.Run("rejects invalid bodies", func(t *testing.T) {
		for _, body := range []string{`not json`, `{"type":"upvote"}`} {
			rec := httptest.NewRecorder()
			newRouter(&fakeVotes{}, fakeStats{}).ServeHTTP(rec, post(body, secret))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %q: status = %d, want 400", body, rec.Code)
			}
		}
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(&fakeVotes{err: errors.New("disk full")}, fakeStats{}).ServeHTTP(rec, post(`{"user":"42"}`, secret))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
	})

	t.Run("GET votes is not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(&fakeVotes{}, fakeStats{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/votes", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stats := fakeStats{total: 7, platforms: map[string]int64{"spotify-track": 5, "soundcloud": 2}}
		rec := httptest.NewRecorder()
		newRouter(&fakeVotes{}, stats).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var body struct {
			Searches  int64            `json:"searches"`
			Platforms map[string]int64 `json:"platforms"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Searches != 7 || body.Platforms["spotify-track"] != 5 {
			t.Errorf("unexpected stats: %+v", body)
		}
	})

	t.Run("stats unavailable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(&fakeVotes{}, fakeStats{err: errors.New("closed")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", rec.Code)
		}
	})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newRouter(&fakeVotes{}, fakeStats{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestServerRun(t *testing.T) {
	t.Run("stops when context is cancelled", func(t *testing.T) {
		srv := NewServer("127.0.0.1:0", NewBasicRouter(), quietLogger())
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx) }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run returned %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("bad address fails", func(t *testing.T) {
		srv := NewServer("127.0.0.1:-1", NewBasicRouter(), quietLogger())
		if err := srv.Run(context.Background()); err == nil {
			t.Error("expected listen error")
		}
	})
}
