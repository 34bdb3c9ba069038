// internal/messaging/channels.go
// Conversation channel creation for accepted matches. The messaging
// product owns the channel afterwards; the matching engine only keeps
// the returned reference.

package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type ChannelService struct {
	db *sqlx.DB
}

func NewChannelService(db *sqlx.DB) *ChannelService {
	return &ChannelService{db: db}
}

// CreateChannel opens a peer-support conversation for the given
// participants and returns its external reference.
func (s *ChannelService) CreateChannel(ctx context.Context, participantIDs []int64) (string, error) {
	ref := uuid.NewString()

	query := `
		INSERT INTO conversations (channel_ref, participant_ids, kind)
		VALUES ($1, $2, 'peer_support')
	`

	if _, err := s.db.ExecContext(ctx, query, ref, pq.Array(participantIDs)); err != nil {
		return "", err
	}

	return ref, nil
}
