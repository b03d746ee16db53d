package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

// SearchRepository records successful resolutions and owns the search counter.
type SearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new [SearchRepository] with the given database connection
func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Record inserts entry into the history and increments the counter atomically.
//
// A missing ID or CreatedAt is filled in.
func (r *SearchRepository) Record(ctx context.Context, entry models.SearchEntry) error {
	if entry.ID == "" {
		entry.ID = shared.GenerateID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO searches (id, guild_id, platform, link, title, artist, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			entry.ID, entry.GuildID, entry.Platform, entry.Link, entry.Title, entry.Artist, entry.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert search: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "UPDATE search_counter SET value = value + 1 WHERE id = 1"); err != nil {
			return fmt.Errorf("failed to increment search counter: %w", err)
		}
		return nil
	})
}

// Count returns the number of successful resolutions ever recorded.
func (r *SearchRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT value FROM search_counter WHERE id = 1").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to read search counter: %w", err)
	}
	return n, nil
}

// Recent returns up to limit searches, newest first.
func (r *SearchRepository) Recent(ctx context.Context, limit int) ([]models.SearchEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, guild_id, platform, link, title, artist, created_at
		FROM searches
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var entries []models.SearchEntry
	for rows.Next() {
		var (
			e       models.SearchEntry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.GuildID, &e.Platform, &e.Link, &e.Title, &e.Artist, &created); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByPlatform returns the number of recorded searches per platform tag.
func (r *SearchRepository) CountByPlatform(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT platform, COUNT(*) FROM searches GROUP BY platform")
	if err != nil {
		return nil, fmt.Errorf("failed to query platform counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			platform string
			n        int64
		)
		if err := rows.Scan(&platform, &n); err != nil {
			return nil, fmt.Errorf("failed to scan platform count: %w", err)
		}
		counts[platform] = n
	}
	return counts, rows.Err()
}
