package matching

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// In-memory fakes for the engine's collaborators. The fake repository
// mirrors the store's conditional-write semantics: one live row per
// canonical pair, and transitions that only commit while pending.

type fakeMoods struct {
	entries map[int64][]*MoodEntry
}

func (f *fakeMoods) ListEntries(_ context.Context, userID int64, since time.Time) ([]*MoodEntry, error) {
	var out []*MoodEntry
	for _, entry := range f.entries[userID] {
		if !entry.RecordedAt.Before(since) {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	eligible map[int64]bool
	cohorts  map[int64]CohortAttrs
	profiles map[int64]*PublicProfile
}

func (f *fakeDirectory) GetVisibility(_ context.Context, userID int64) (bool, error) {
	if _, ok := f.cohorts[userID]; !ok {
		return false, ErrUserNotFound
	}
	return f.eligible[userID], nil
}

func (f *fakeDirectory) GetCohortAttributes(_ context.Context, userID int64) (CohortAttrs, error) {
	cohort, ok := f.cohorts[userID]
	if !ok {
		return CohortAttrs{}, ErrUserNotFound
	}
	return cohort, nil
}

func (f *fakeDirectory) GetPublicProfile(_ context.Context, userID int64) (*PublicProfile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return profile, nil
}

func (f *fakeDirectory) ListEligibleUserIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id, ok := range f.eligible {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeRepo struct {
	mu      sync.Mutex
	nextID  int64
	matches map[int64]*Match
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, matches: make(map[int64]*Match)}
}

func (f *fakeRepo) CreateMatch(_ context.Context, match *Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	userA, userB := CanonicalPair(match.UserAID, match.UserBID)
	for _, existing := range f.matches {
		if existing.UserAID == userA && existing.UserBID == userB && existing.Status != StatusExpired {
			return ErrAlreadyRequested
		}
	}

	match.UserAID, match.UserBID = userA, userB
	match.ID = f.nextID
	f.nextID++
	match.CreatedAt = time.Now()
	match.UpdatedAt = match.CreatedAt

	stored := *match
	f.matches[match.ID] = &stored
	return nil
}

func (f *fakeRepo) GetMatch(_ context.Context, id int64) (*Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	match, ok := f.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (f *fakeRepo) TransitionMatch(_ context.Context, id int64, newStatus string, channelRef *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	match, ok := f.matches[id]
	if !ok {
		return ErrMatchNotFound
	}
	if match.Status != StatusPending {
		return ErrInvalidState
	}

	match.Status = newStatus
	if channelRef != nil {
		match.ChannelRef = channelRef
	}
	now := time.Now()
	match.RespondedAt = &now
	match.UpdatedAt = now
	return nil
}

func (f *fakeRepo) ExpireMatch(_ context.Context, id int64, olderThan time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	match, ok := f.matches[id]
	if !ok || match.Status != StatusPending || !match.CreatedAt.Before(olderThan) {
		return false, nil
	}

	match.Status = StatusExpired
	match.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRepo) ExpirePendingBefore(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	expired := 0
	for _, match := range f.matches {
		if match.Status == StatusPending && match.CreatedAt.Before(cutoff) {
			match.Status = StatusExpired
			match.UpdatedAt = time.Now()
			expired++
		}
	}
	return expired, nil
}

func (f *fakeRepo) GetUserMatches(_ context.Context, userID int64, statusFilter string) ([]*Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*Match
	for _, match := range f.matches {
		if match.UserAID != userID && match.UserBID != userID {
			continue
		}
		if statusFilter != "" && match.Status != statusFilter {
			continue
		}
		copied := *match
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) GetLinkedUserIDs(_ context.Context, userID int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	linked := make(map[int64]bool)
	for _, match := range f.matches {
		if match.Status == StatusExpired {
			continue
		}
		if other := match.CounterpartID(userID); other != 0 {
			linked[other] = true
		}
	}
	return linked, nil
}

// setCreatedAt backdates a stored match for expiry tests.
func (f *fakeRepo) setCreatedAt(id int64, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if match, ok := f.matches[id]; ok {
		match.CreatedAt = at
	}
}

type fakeChannels struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakeChannels) CreateChannel(_ context.Context, participantIDs []int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", fmt.Errorf("channel backend down")
	}
	f.calls++
	return fmt.Sprintf("chan-%d-%d", participantIDs[0], participantIDs[1]), nil
}

type emittedEvent struct {
	UserID  int64
	Type    string
	Payload map[string]interface{}
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (f *fakeEmitter) Emit(_ context.Context, userID int64, eventType string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emittedEvent{UserID: userID, Type: eventType, Payload: payload})
}

func (f *fakeEmitter) byType(eventType string) []emittedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emittedEvent
	for _, event := range f.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
