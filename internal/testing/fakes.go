package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

// SettingsStore is an in-memory guild settings store that counts calls.
//
// When Gate is non-nil, FindByGuild blocks until it is closed. Each FindByGuild call sends on Entered if
// a receiver is ready.
type SettingsStore struct {
	Gate      chan struct{}
	Entered   chan struct{}
	FindErr   error
	CreateErr error

	mu      sync.Mutex
	rows    map[string]models.GuildSettings
	finds   int
	creates int
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{rows: make(map[string]models.GuildSettings)}
}

// Put stores a row directly.
func (s *SettingsStore) Put(guildID string, replyTo uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.rows[guildID] = models.GuildSettings{GuildID: guildID, ReplyTo: replyTo, CreatedAt: now, UpdatedAt: now}
}

func (s *SettingsStore) FindByGuild(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	s.mu.Lock()
	s.finds++
	s.mu.Unlock()

	if s.Entered != nil {
		select {
		case s.Entered <- struct{}{}:
		default:
		}
	}
	if s.Gate != nil {
		select {
		case <-s.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if s.FindErr != nil {
		return nil, s.FindErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[guildID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *SettingsStore) Create(ctx context.Context, guildID string, replyTo uint64) (*models.GuildSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++

	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if row, ok := s.rows[guildID]; ok {
		return &row, nil
	}
	now := time.Now()
	row := models.GuildSettings{GuildID: guildID, ReplyTo: replyTo, CreatedAt: now, UpdatedAt: now}
	s.rows[guildID] = row
	return &row, nil
}

// Finds returns the number of FindByGuild calls.
func (s *SettingsStore) Finds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds
}

// Creates returns the number of Create calls.
func (s *SettingsStore) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// Resolver returns canned songs or errors per link.
//
// Links with no entry resolve to [shared.ErrUnknownSong]. A link listed in Panics panics.
type Resolver struct {
	Songs  map[string]*models.SongRecord
	Errs   map[string]error
	Panics map[string]bool

	mu    sync.Mutex
	calls []string
}

func (r *Resolver) Resolve(ctx context.Context, link string) (*models.SongRecord, error) {
	r.mu.Lock()
	r.calls = append(r.calls, link)
	r.mu.Unlock()

	if r.Panics[link] {
		panic(fmt.Sprintf("resolver exploded on %s", link))
	}
	if err, ok := r.Errs[link]; ok {
		return nil, err
	}
	if song, ok := r.Songs[link]; ok {
		return song, nil
	}
	return nil, shared.ErrUnknownSong
}

// Calls returns the links passed to Resolve.
func (r *Resolver) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// SentReply is a reply recorded by [Messenger].
type SentReply struct {
	Ref   models.MessageRef
	Embed models.Embed
}

// SentReaction is a reaction recorded by [Messenger].
type SentReaction struct {
	Ref   models.MessageRef
	Emoji string
}

// Messenger records replies and reactions.
type Messenger struct {
	ReplyErr error
	ReactErr error

	mu        sync.Mutex
	replies   []SentReply
	reactions []SentReaction
}

func (m *Messenger) Reply(ctx context.Context, ref models.MessageRef, embed models.Embed) error {
	if m.ReplyErr != nil {
		return m.ReplyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, SentReply{Ref: ref, Embed: embed})
	return nil
}

func (m *Messenger) React(ctx context.Context, ref models.MessageRef, emoji string) error {
	if m.ReactErr != nil {
		return m.ReactErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reactions = append(m.reactions, SentReaction{Ref: ref, Emoji: emoji})
	return nil
}

func (m *Messenger) Replies() []SentReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentReply(nil), m.replies...)
}

func (m *Messenger) Reactions() []SentReaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentReaction(nil), m.reactions...)
}

// Counter is an in-memory search counter.
type Counter struct {
	RecordErr error
	CountErr  error

	mu      sync.Mutex
	entries []models.SearchEntry
}

func (c *Counter) Record(ctx context.Context, entry models.SearchEntry) error {
	if c.RecordErr != nil {
		return c.RecordErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *Counter) Count(ctx context.Context) (int64, error) {
	if c.CountErr != nil {
		return 0, c.CountErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.entries)), nil
}

func (c *Counter) Entries() []models.SearchEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.SearchEntry(nil), c.entries...)
}

// StatusSetter records presence updates.
type StatusSetter struct {
	Err error

	mu       sync.Mutex
	statuses []string
}

func (s *StatusSetter) SetListening(ctx context.Context, name string) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, name)
	return nil
}

func (s *StatusSetter) Statuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statuses...)
}

// VoteGate answers HasVoted from a fixed set of users.
type VoteGate struct {
	Voters map[string]bool
	Err    error
}

func (v *VoteGate) HasVoted(ctx context.Context, userID string, since time.Time) (bool, error) {
	if v.Err != nil {
		return false, v.Err
	}
	return v.Voters[userID], nil
}

// AddedTrack is a call recorded by [Accounts].
type AddedTrack struct {
	UserID, Platform, PlaylistID, SongID string
}

// Accounts is an in-memory linked accounts API.
type Accounts struct {
	Linked    map[string]models.MusicAccounts
	Playlists map[string][]models.UserPlaylist // keyed by platform
	AddErr    error

	mu    sync.Mutex
	added []AddedTrack
}

// ErrUnknownUser is returned by [Accounts.User] for users without an entry.
var ErrUnknownUser = errors.New("unknown user")

func (a *Accounts) User(ctx context.Context, userID string) (models.MusicAccounts, error) {
	acc, ok := a.Linked[userID]
	if !ok {
		return models.MusicAccounts{}, ErrUnknownUser
	}
	return acc, nil
}

func (a *Accounts) UserPlaylists(ctx context.Context, userID, platform string) ([]models.UserPlaylist, error) {
	return a.Playlists[platform], nil
}

func (a *Accounts) AddTrack(ctx context.Context, userID, platform, playlistID, songID string) error {
	if a.AddErr != nil {
		return a.AddErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.added = append(a.added, AddedTrack{UserID: userID, Platform: platform, PlaylistID: playlistID, SongID: songID})
	return nil
}

func (a *Accounts) Added() []AddedTrack {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AddedTrack(nil), a.added...)
}
