// internal/notify/emitter.go
// Fire-and-forget delivery of match events: each event is written to
// the notifications outbox and published on the user's Redis channel.
// Downstream delivery (push, email) is another service's job.

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Event struct {
	ID        string                 `json:"id"`
	UserID    int64                  `json:"user_id"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"created_at"`
}

type Emitter struct {
	db     *sqlx.DB
	client *redis.Client
}

func NewEmitter(db *sqlx.DB, client *redis.Client) *Emitter {
	return &Emitter{db: db, client: client}
}

// Emit records and publishes one event. Failures are logged and
// swallowed so the calling operation never fails on notification
// trouble.
func (e *Emitter) Emit(ctx context.Context, userID int64, eventType string, payload map[string]interface{}) {
	event := Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event.Payload)
	if err != nil {
		log.Printf("notify: failed to marshal %s payload for user %d: %v", eventType, userID, err)
		return
	}

	query := `
		INSERT INTO notifications (event_id, user_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := e.db.ExecContext(ctx, query, event.ID, event.UserID, event.Type, body, event.CreatedAt); err != nil {
		log.Printf("notify: failed to store %s for user %d: %v", eventType, userID, err)
	}

	if e.client == nil {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify: failed to marshal %s event for user %d: %v", eventType, userID, err)
		return
	}
	if err := e.client.Publish(ctx, userChannel(userID), message).Err(); err != nil {
		log.Printf("notify: failed to publish %s for user %d: %v", eventType, userID, err)
	}
}

func userChannel(userID int64) string {
	return fmt.Sprintf("notify:user:%d", userID)
}
