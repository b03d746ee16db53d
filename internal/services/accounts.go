package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

// AccountsClient talks to the linked accounts API that stores users' streaming service connections.
type AccountsClient struct {
	api *APIService
}

// NewAccountsClient builds a client authenticated with the OAuth2 client credentials grant.
//
// Without a token URL requests are sent unauthenticated.
func NewAccountsClient(ctx context.Context, cfg shared.AccountsConfig) *AccountsClient {
	client := &http.Client{Timeout: 10 * time.Second}
	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		client = cc.Client(ctx)
		client.Timeout = 10 * time.Second
	}
	return NewAccountsClientWith(NewAPIService(cfg.BaseURL, client))
}

// NewAccountsClientWith wraps an existing [APIService].
func NewAccountsClientWith(api *APIService) *AccountsClient {
	return &AccountsClient{api: api}
}

// User returns the services linked by userID. Unknown users have nothing linked.
func (c *AccountsClient) User(ctx context.Context, userID string) (models.MusicAccounts, error) {
	var resp struct {
		Services models.MusicAccounts `json:"services"`
	}

	err := c.api.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), nil, &resp)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return models.MusicAccounts{}, nil
	}
	if err != nil {
		return models.MusicAccounts{}, fmt.Errorf("%w: failed to fetch user: %v", shared.ErrAPIRequest, err)
	}
	return resp.Services, nil
}

// UserPlaylists lists userID's playlists on the service identified by slug (e.g. "apple-music").
func (c *AccountsClient) UserPlaylists(ctx context.Context, userID, slug string) ([]models.UserPlaylist, error) {
	var resp struct {
		Playlists []models.UserPlaylist `json:"playlists"`
	}

	path := fmt.Sprintf("/users/%s/playlists/%s", url.PathEscape(userID), url.PathEscape(slug))
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to fetch playlists: %v", shared.ErrAPIRequest, err)
	}
	return resp.Playlists, nil
}

// AddTrack appends songID to playlistID.
func (c *AccountsClient) AddTrack(ctx context.Context, userID, slug, playlistID, songID string) error {
	path := fmt.Sprintf("/users/%s/playlists/%s/%s/tracks",
		url.PathEscape(userID), url.PathEscape(slug), url.PathEscape(playlistID))
	body := map[string]string{"song_id": songID}

	if err := c.api.Do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("%w: failed to add track: %v", shared.ErrAPIRequest, err)
	}
	return nil
}
