// internal/moods/store.go
// Read-only access to mood-tracking history for the matching engine.
// Mood entry CRUD lives with the mobile-facing API, not here.

package moods

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/matching"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ListEntries returns the user's mood entries recorded since the given
// time, oldest first so trigger first-seen order is stable.
func (s *Store) ListEntries(ctx context.Context, userID int64, since time.Time) ([]*matching.MoodEntry, error) {
	query := `
		SELECT mood_score, triggers, recorded_at
		FROM mood_entries
		WHERE user_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`

	rows, err := s.db.QueryxContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*matching.MoodEntry
	for rows.Next() {
		var entry matching.MoodEntry
		var triggers pq.StringArray

		if err := rows.Scan(&entry.MoodScore, &triggers, &entry.RecordedAt); err != nil {
			return nil, err
		}

		entry.Triggers = triggers
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
