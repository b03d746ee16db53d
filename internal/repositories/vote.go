package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

// VoteRepository stores upvotes received by the webhook server.
type VoteRepository struct {
	db *sql.DB
}

// NewVoteRepository creates a new [VoteRepository] with the given database connection
func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Record validates and inserts vote, assigning an ID and timestamp when missing.
func (r *VoteRepository) Record(ctx context.Context, vote *models.Vote) error {
	if err := vote.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if vote.ID == "" {
		vote.ID = shared.GenerateID()
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	if vote.Type == "" {
		vote.Type = "upvote"
	}

	query := `INSERT INTO votes (id, user_id, type, is_weekend, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, vote.ID, vote.UserID, vote.Type, vote.IsWeekend, vote.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// HasVoted reports whether userID voted at or after since.
func (r *VoteRepository) HasVoted(ctx context.Context, userID string, since time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM votes WHERE user_id = ? AND created_at >= ?)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, since.Unix()).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to query votes: %w", err)
	}
	return ok, nil
}

// CountSince returns the number of votes received at or after since.
func (r *VoteRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM votes WHERE created_at >= ?", since.Unix()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}
