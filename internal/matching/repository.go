package matching

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	CreateMatch(ctx context.Context, match *Match) error
	GetMatch(ctx context.Context, id int64) (*Match, error)
	TransitionMatch(ctx context.Context, id int64, newStatus string, channelRef *string) error
	ExpireMatch(ctx context.Context, id int64, olderThan time.Time) (bool, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int, error)
	GetUserMatches(ctx context.Context, userID int64, statusFilter string) ([]*Match, error)
	GetLinkedUserIDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// CreateMatch inserts the canonical-pair row in one statement. The
// partial unique index idx_matches_live_pair (scoped to non-expired
// statuses) makes a concurrent duplicate fail with unique_violation,
// which we surface as ErrAlreadyRequested. Expired rows stay behind for
// history, so a fresh request after expiry inserts a new row.
func (r *postgresRepository) CreateMatch(ctx context.Context, match *Match) error {
	userA, userB := CanonicalPair(match.UserAID, match.UserBID)
	match.UserAID, match.UserBID = userA, userB

	query := `
		INSERT INTO matches (
			user_a_id, user_b_id, compatibility_score, shared_factors,
			status, requested_by
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		match.UserAID, match.UserBID, match.CompatibilityScore,
		pq.Array(match.SharedFactors), match.Status, match.RequestedBy,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrAlreadyRequested
	}

	return err
}

func (r *postgresRepository) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var match Match
	var factors pq.StringArray

	query := `
		SELECT id, user_a_id, user_b_id, compatibility_score, shared_factors,
		       status, requested_by, channel_ref, created_at, updated_at, responded_at
		FROM matches
		WHERE id = $1
	`

	err := r.db.QueryRowxContext(ctx, query, id).Scan(
		&match.ID, &match.UserAID, &match.UserBID, &match.CompatibilityScore,
		&factors, &match.Status, &match.RequestedBy, &match.ChannelRef,
		&match.CreatedAt, &match.UpdatedAt, &match.RespondedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	match.SharedFactors = factors
	return &match, nil
}

// TransitionMatch commits a status change only while the row is still
// pending. Losing a race (double response, or a concurrent expiry
// sweep) surfaces as ErrInvalidState, never a silent overwrite.
func (r *postgresRepository) TransitionMatch(ctx context.Context, id int64, newStatus string, channelRef *string) error {
	query := `
		UPDATE matches
		SET status = $2, channel_ref = COALESCE($3, channel_ref),
		    responded_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, id, newStatus, channelRef)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either the row is gone or it already left pending.
		if _, err := r.GetMatch(ctx, id); err != nil {
			return err
		}
		return ErrInvalidState
	}

	return nil
}

// ExpireMatch applies the same conditional rule to a single match.
// Returns false (no error) when the match was not pending or not old
// enough, so repeat invocations are no-ops.
func (r *postgresRepository) ExpireMatch(ctx context.Context, id int64, olderThan time.Time) (bool, error) {
	query := `
		UPDATE matches
		SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending' AND created_at < $2
	`

	result, err := r.db.ExecContext(ctx, query, id, olderThan)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *postgresRepository) ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE matches
		SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'pending' AND created_at < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID int64, statusFilter string) ([]*Match, error) {
	query := `
		SELECT id, user_a_id, user_b_id, compatibility_score, shared_factors,
		       status, requested_by, channel_ref, created_at, updated_at, responded_at
		FROM matches
		WHERE (user_a_id = $1 OR user_b_id = $1)
	`
	args := []interface{}{userID}

	if statusFilter != "" {
		query += " AND status = $2"
		args = append(args, statusFilter)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		var match Match
		var factors pq.StringArray

		err := rows.Scan(
			&match.ID, &match.UserAID, &match.UserBID, &match.CompatibilityScore,
			&factors, &match.Status, &match.RequestedBy, &match.ChannelRef,
			&match.CreatedAt, &match.UpdatedAt, &match.RespondedAt,
		)
		if err != nil {
			return nil, err
		}

		match.SharedFactors = factors
		matches = append(matches, &match)
	}

	return matches, rows.Err()
}

// GetLinkedUserIDs returns every user tied to userID by a non-expired
// match. Used by the candidate generator to drop already-linked pairs
// from the pool.
func (r *postgresRepository) GetLinkedUserIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	query := `
		SELECT CASE WHEN user_a_id = $1 THEN user_b_id ELSE user_a_id END
		FROM matches
		WHERE (user_a_id = $1 OR user_b_id = $1) AND status != 'expired'
	`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	linked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		linked[id] = true
	}

	return linked, rows.Err()
}
