package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunelink/internal/models"
)

// GuildRepository persists [models.GuildSettings]. The guild ID is the primary key.
type GuildRepository struct {
	db *sql.DB
}

// NewGuildRepository creates a new [GuildRepository] with the given database connection
func NewGuildRepository(db *sql.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

// FindByGuild returns the settings row for guildID, or nil when none exists.
func (r *GuildRepository) FindByGuild(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	query := `SELECT id, reply_to, created_at, updated_at FROM guilds WHERE id = ?`

	var s models.GuildSettings
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(&s.GuildID, &s.ReplyTo, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query guild: %w", err)
	}
	return &s, nil
}

// Create inserts a row for guildID unless one exists, then returns the stored row.
//
// Concurrent calls for the same guild all return the single winning row.
func (r *GuildRepository) Create(ctx context.Context, guildID string, replyTo uint64) (*models.GuildSettings, error) {
	if guildID == "" {
		return nil, fmt.Errorf("guild id is required")
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO guilds (id, reply_to, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, guildID, int64(replyTo), now, now); err != nil {
		return nil, fmt.Errorf("failed to insert guild: %w", err)
	}

	s, err := r.FindByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("guild %s missing after insert", guildID)
	}
	return s, nil
}

// UpdateReplyTo stores new reply flags for guildID, creating the row when needed.
func (r *GuildRepository) UpdateReplyTo(ctx context.Context, guildID string, replyTo uint64) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO guilds (id, reply_to, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET reply_to = excluded.reply_to, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, guildID, int64(replyTo), now, now); err != nil {
		return fmt.Errorf("failed to update guild: %w", err)
	}
	return nil
}

// List returns every guild ordered by creation time.
func (r *GuildRepository) List(ctx context.Context) ([]models.GuildSettings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, reply_to, created_at, updated_at FROM guilds ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query guilds: %w", err)
	}
	defer rows.Close()

	var guilds []models.GuildSettings
	for rows.Next() {
		var s models.GuildSettings
		if err := rows.Scan(&s.GuildID, &s.ReplyTo, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		guilds = append(guilds, s)
	}
	return guilds, rows.Err()
}
