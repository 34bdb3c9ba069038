package matching

import "time"

// Match statuses. A match starts pending; the other three are terminal.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusExpired  = "expired"
)

// Transition is the single place that knows which status changes are
// legal. Every mutation path (respond, expiry sweep) goes through it.
func Transition(current, next string) (string, error) {
	if current != StatusPending {
		return "", ErrInvalidState
	}
	switch next {
	case StatusAccepted, StatusDeclined, StatusExpired:
		return next, nil
	}
	return "", ErrInvalidState
}

// CanonicalPair orders two user ids so that an unordered pair always
// maps to one storage representation, regardless of who initiated.
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

type Match struct {
	ID                 int64      `json:"id" db:"id"`
	UserAID            int64      `json:"user_a_id" db:"user_a_id"`
	UserBID            int64      `json:"user_b_id" db:"user_b_id"`
	CompatibilityScore int        `json:"compatibility_score" db:"compatibility_score"`
	SharedFactors      []string   `json:"shared_factors"`
	Status             string     `json:"status" db:"status"`
	RequestedBy        int64      `json:"requested_by" db:"requested_by"`
	ChannelRef         *string    `json:"channel_ref,omitempty" db:"channel_ref"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	RespondedAt        *time.Time `json:"responded_at,omitempty" db:"responded_at"`

	// Joined field, populated on list
	Counterpart *PublicProfile `json:"counterpart,omitempty"`
}

// CounterpartID returns the other party of the match, or 0 when userID
// is not a party at all.
func (m *Match) CounterpartID(userID int64) int64 {
	switch userID {
	case m.UserAID:
		return m.UserBID
	case m.UserBID:
		return m.UserAID
	}
	return 0
}

// MoodEntry is one row of a user's mood-tracking history, read from the
// mood signal source.
type MoodEntry struct {
	MoodScore  float64   `json:"mood_score" db:"mood_score"`
	Triggers   []string  `json:"triggers"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// TriggerCount is one (tag, count) pair of a signal profile, kept in
// ranked order.
type TriggerCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// UserSignalProfile is the derived behavioral summary used as scoring
// input. It is computed on demand and never persisted as its own record.
type UserSignalProfile struct {
	UserID      int64          `json:"user_id"`
	Triggers    []TriggerCount `json:"triggers"`
	AverageMood float64        `json:"average_mood"`
	Cohort      CohortAttrs    `json:"cohort"`
	Eligible    bool           `json:"eligible"`
	EntryCount  int            `json:"entry_count"`
}

// TriggerTags returns just the tag names, in ranked order.
func (p *UserSignalProfile) TriggerTags() []string {
	tags := make([]string, 0, len(p.Triggers))
	for _, t := range p.Triggers {
		tags = append(tags, t.Tag)
	}
	return tags
}

// CohortAttrs is the coarse grouping compared as a whole for the flat
// cohort scoring term.
type CohortAttrs struct {
	StudyYear int    `json:"study_year" db:"study_year"`
	Programme string `json:"programme" db:"programme"`
}

// CompatibilityResult is the scorer output for one pair of profiles.
type CompatibilityResult struct {
	Score         int      `json:"score"`
	SharedFactors []string `json:"shared_factors"`
	Reason        string   `json:"reason"`
}

// CandidateResult is one ranked entry returned by the candidate
// generator.
type CandidateResult struct {
	CandidateID   int64          `json:"candidate_id"`
	Score         int            `json:"score"`
	SharedFactors []string       `json:"shared_factors"`
	Reason        string         `json:"reason"`
	Profile       *PublicProfile `json:"profile,omitempty"`
}

// PublicProfile holds the counterpart fields that are safe to show,
// already filtered by that user's own visibility settings.
type PublicProfile struct {
	UserID      int64   `json:"user_id" db:"id"`
	DisplayName string  `json:"display_name" db:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty" db:"avatar_url"`
	Bio         *string `json:"bio,omitempty" db:"bio"`
	StudyYear   *int    `json:"study_year,omitempty" db:"study_year"`
}
