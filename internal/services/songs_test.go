package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

func TestSongsClient(t *testing.T) {
	const link = "https://open.spotify.com/track/abc123"

	t.Run("Resolve Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/links" {
				t.Errorf("expected /links, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("url"); got != link {
				t.Errorf("expected url %s, got %s", link, got)
			}
			if r.Header.Get("Authorization") != "secret" {
				t.Errorf("expected api key header")
			}
			json.NewEncoder(w).Encode(models.SongRecord{
				Title:     "Song",
				Artist:    "Artist",
				Thumbnail: "https://img/1.jpg",
				Links:     map[string]string{"spotify": link, "apple_music": "https://music.apple.com/x?i=1"},
			})
		}))
		defer server.Close()

		client := NewSongsClient(shared.ResolverConfig{BaseURL: server.URL, APIKey: "secret", TimeoutSeconds: 2})
		song, err := client.Resolve(context.Background(), link)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if song.Title != "Song" || song.Artist != "Artist" {
			t.Errorf("unexpected song %+v", song)
		}
		if len(song.Links) != 2 {
			t.Errorf("expected 2 links, got %d", len(song.Links))
		}
	})

	t.Run("Error Taxonomy", func(t *testing.T) {
		tt := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{"not found", http.StatusNotFound, `{"detail":"unknown"}`, shared.ErrUnknownSong},
			{"empty record", http.StatusOK, `{"title":""}`, shared.ErrUnknownSong},
			{"rate limited", http.StatusTooManyRequests, `{}`, shared.ErrBotRatelimited},
			{"server error", http.StatusInternalServerError, `oops`, shared.ErrTransientFailure},
			{"bad gateway", http.StatusBadGateway, ``, shared.ErrTransientFailure},
			{"malformed json", http.StatusOK, `{"title":`, shared.ErrTransientFailure},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					w.Write([]byte(tc.body))
				}))
				defer server.Close()

				client := NewSongsClient(shared.ResolverConfig{BaseURL: server.URL, TimeoutSeconds: 2})
				_, err := client.Resolve(context.Background(), link)
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("Timeout Is Transient", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		api := NewAPIService(server.URL, &http.Client{Timeout: 50 * time.Millisecond})
		_, err := NewSongsClientWith(api, nil).Resolve(context.Background(), link)
		if !errors.Is(err, shared.ErrTransientFailure) {
			t.Fatalf("expected ErrTransientFailure, got %v", err)
		}
	})

	t.Run("Local Quota", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte(`{"title":"Song","artist":"A"}`))
		}))
		defer server.Close()

		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		client := NewSongsClientWith(NewAPIService(server.URL, nil), limiter)

		if _, err := client.Resolve(context.Background(), link); err != nil {
			t.Fatalf("first call should pass, got %v", err)
		}
		if _, err := client.Resolve(context.Background(), link); !errors.Is(err, shared.ErrBotRatelimited) {
			t.Fatalf("expected ErrBotRatelimited, got %v", err)
		}
		if n := calls.Load(); n != 1 {
			t.Errorf("expected the limited call to skip the network, got %d calls", n)
		}
	})

	t.Run("Raw", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"title":"Song"}`))
		}))
		defer server.Close()

		resp, err := NewSongsClient(shared.ResolverConfig{BaseURL: server.URL}).Raw(context.Background(), link)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.IsJSON {
			t.Error("expected JSON response")
		}
	})
}
