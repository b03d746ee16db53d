// Package cache provides the read-through guild settings cache used by the reply pipeline.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

// SettingsStore is the persistent store behind [SettingsCache].
//
// FindByGuild returns nil and no error when the guild has no row. Create must be idempotent per guild.
type SettingsStore interface {
	FindByGuild(ctx context.Context, guildID string) (*models.GuildSettings, error)
	Create(ctx context.Context, guildID string, replyTo uint64) (*models.GuildSettings, error)
}

// DefaultLoadTimeout bounds one shared store load.
const DefaultLoadTimeout = 5 * time.Second

type entry struct {
	settings  models.GuildSettings
	expiresAt time.Time
}

// SettingsCache is a TTL read-through cache keyed by guild ID.
//
// Concurrent misses for the same guild share one fetch-or-create. Misses for different guilds do not block each other.
type SettingsCache struct {
	store          SettingsStore
	ttl            time.Duration
	loadTimeout    time.Duration
	defaultReplyTo uint64
	now            func() time.Time
	logger         *log.Logger

	mu        sync.RWMutex
	entries   map[string]entry
	lastSweep time.Time
	group     singleflight.Group
}

// Option configures a [SettingsCache].
type Option func(*SettingsCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *SettingsCache) { c.now = now }
}

// WithDefaultReplyTo sets the flags stored for guilds seen for the first time.
func WithDefaultReplyTo(flags uint64) Option {
	return func(c *SettingsCache) { c.defaultReplyTo = flags }
}

// WithLoadTimeout bounds the store work done for one miss.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *SettingsCache) { c.loadTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *SettingsCache) { c.logger = l }
}

// NewSettingsCache creates a cache in front of store whose entries live for ttl.
func NewSettingsCache(store SettingsStore, ttl time.Duration, opts ...Option) *SettingsCache {
	c := &SettingsCache{
		store:       store,
		ttl:         ttl,
		loadTimeout: DefaultLoadTimeout,
		now:         time.Now,
		entries:     make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = shared.NewLogger(nil)
	}
	return c
}

// GetOrCreate returns the settings for guildID.
//
// A fresh entry is served without touching the store. Otherwise the store row is read, created with the
// default flags if missing, and cached for one TTL window. Store failures wrap [shared.ErrStoreUnavailable]
// and leave the cache untouched.
//
// The shared load is detached from any single caller's cancellation and bounded by the load timeout.
// A caller whose ctx ends first returns early without affecting the others.
func (c *SettingsCache) GetOrCreate(ctx context.Context, guildID string) (models.GuildSettings, error) {
	if s, ok := c.lookup(guildID); ok {
		return s, nil
	}

	ch := c.group.DoChan(guildID, func() (any, error) {
		// A caller that lost the race may arrive after the winner populated the entry.
		if s, ok := c.lookup(guildID); ok {
			return s, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		s, err := c.load(loadCtx, guildID)
		if err != nil {
			return models.GuildSettings{}, err
		}
		c.put(guildID, s)
		return s, nil
	})

	select {
	case <-ctx.Done():
		return models.GuildSettings{}, fmt.Errorf("%w: guild %s: %w", shared.ErrStoreUnavailable, guildID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return models.GuildSettings{}, res.Err
		}
		return res.Val.(models.GuildSettings), nil
	}
}

// Invalidate drops the cached entry for guildID.
func (c *SettingsCache) Invalidate(guildID string) {
	c.mu.Lock()
	delete(c.entries, guildID)
	c.mu.Unlock()
}

// Len returns the number of cached entries. Expired entries count until the next sweep.
func (c *SettingsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *SettingsCache) lookup(guildID string) (models.GuildSettings, bool) {
	c.mu.RLock()
	e, ok := c.entries[guildID]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return models.GuildSettings{}, false
	}
	return e.settings, true
}

// put stores s and, at most once per TTL window, drops every expired entry.
func (c *SettingsCache) put(guildID string, s models.GuildSettings) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= c.ttl {
		for id, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, id)
			}
		}
		c.lastSweep = now
	}
	c.entries[guildID] = entry{settings: s, expiresAt: now.Add(c.ttl)}
}

func (c *SettingsCache) load(ctx context.Context, guildID string) (models.GuildSettings, error) {
	found, err := c.store.FindByGuild(ctx, guildID)
	if err != nil {
		return models.GuildSettings{}, fmt.Errorf("%w: failed to read guild %s: %v", shared.ErrStoreUnavailable, guildID, err)
	}
	if found != nil {
		return *found, nil
	}

	c.logger.Debug("creating guild settings", "guild", guildID, "reply_to", c.defaultReplyTo)
	created, err := c.store.Create(ctx, guildID, c.defaultReplyTo)
	if err != nil {
		return models.GuildSettings{}, fmt.Errorf("%w: failed to create guild %s: %v", shared.ErrStoreUnavailable, guildID, err)
	}
	if created == nil {
		return models.GuildSettings{}, fmt.Errorf("%w: store returned no row for guild %s", shared.ErrStoreUnavailable, guildID)
	}
	return *created, nil
}
