// internal/directory/store.go
// Read-only user directory: opt-in flag, cohort attributes and the
// visibility-filtered public profile consumed by the matching engine.

package directory

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/matching"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// GetVisibility returns whether the user has opted into peer matching.
func (s *Store) GetVisibility(ctx context.Context, userID int64) (bool, error) {
	var eligible bool
	query := `SELECT matching_opt_in FROM users WHERE id = $1`

	err := s.db.GetContext(ctx, &eligible, query, userID)
	if err == sql.ErrNoRows {
		return false, matching.ErrUserNotFound
	}
	return eligible, err
}

func (s *Store) GetCohortAttributes(ctx context.Context, userID int64) (matching.CohortAttrs, error) {
	var cohort matching.CohortAttrs
	query := `SELECT study_year, programme FROM users WHERE id = $1`

	err := s.db.GetContext(ctx, &cohort, query, userID)
	if err == sql.ErrNoRows {
		return matching.CohortAttrs{}, matching.ErrUserNotFound
	}
	return cohort, err
}

// GetPublicProfile returns the user's public-facing fields with their
// own visibility toggles already applied.
func (s *Store) GetPublicProfile(ctx context.Context, userID int64) (*matching.PublicProfile, error) {
	var row struct {
		ID          int64   `db:"id"`
		DisplayName string  `db:"display_name"`
		AvatarURL   *string `db:"avatar_url"`
		Bio         *string `db:"bio"`
		StudyYear   int     `db:"study_year"`
		ShowBio     bool    `db:"show_bio"`
		ShowYear    bool    `db:"show_study_year"`
	}

	query := `
		SELECT id, display_name, avatar_url, bio, study_year,
		       show_bio, show_study_year
		FROM users
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &row, query, userID)
	if err == sql.ErrNoRows {
		return nil, matching.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	profile := &matching.PublicProfile{
		UserID:      row.ID,
		DisplayName: row.DisplayName,
		AvatarURL:   row.AvatarURL,
	}
	if row.ShowBio {
		profile.Bio = row.Bio
	}
	if row.ShowYear {
		year := row.StudyYear
		profile.StudyYear = &year
	}

	return profile, nil
}

// ListEligibleUserIDs returns every user with the matching opt-in set.
// The flag is indexed so this stays a cheap filtered scan.
func (s *Store) ListEligibleUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM users WHERE matching_opt_in = TRUE ORDER BY id`

	err := s.db.SelectContext(ctx, &ids, query)
	return ids, err
}
