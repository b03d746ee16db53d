package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

// SongsClient resolves a source link into a [models.SongRecord] using the song resolution service.
//
// Calls go through a client-side token bucket; an empty bucket is reported as [shared.ErrBotRatelimited]
// without a network call. The client never retries.
type SongsClient struct {
	api     *APIService
	limiter *rate.Limiter
}

// NewSongsClient builds a client from the resolver configuration.
func NewSongsClient(cfg shared.ResolverConfig) *SongsClient {
	api := NewAPIService(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout()})
	if cfg.APIKey != "" {
		api.SetHeader("Authorization", cfg.APIKey)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return NewSongsClientWith(api, rate.NewLimiter(limit, max(cfg.Burst, 1)))
}

// NewSongsClientWith creates a client from an existing [APIService] and limiter. A nil limiter never limits.
func NewSongsClientWith(api *APIService, limiter *rate.Limiter) *SongsClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &SongsClient{api: api, limiter: limiter}
}

// Resolve calls GET /links?url=<link>.
//
// Errors are one of [shared.ErrUnknownSong], [shared.ErrBotRatelimited] or [shared.ErrTransientFailure].
func (c *SongsClient) Resolve(ctx context.Context, link string) (*models.SongRecord, error) {
	if !c.limiter.Allow() {
		return nil, fmt.Errorf("%w: local request quota exhausted", shared.ErrBotRatelimited)
	}

	var song models.SongRecord
	err := c.api.Do(ctx, http.MethodGet, "/links?url="+url.QueryEscape(link), nil, &song)
	if err != nil {
		return nil, classify(err)
	}

	if song.Title == "" {
		return nil, fmt.Errorf("%w: empty record for %s", shared.ErrUnknownSong, link)
	}
	return &song, nil
}

// Raw returns the undecoded resolver response for link.
func (c *SongsClient) Raw(ctx context.Context, link string) (*APIResponse, error) {
	return c.api.Get(ctx, "/links?url="+url.QueryEscape(link))
}

func classify(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", shared.ErrUnknownSong, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", shared.ErrBotRatelimited, err)
		}
	}
	return fmt.Errorf("%w: %v", shared.ErrTransientFailure, err)
}
