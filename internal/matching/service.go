package matching

import (
	"context"
	"errors"
	"log"
	"time"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyRequested  = errors.New("a match already exists for this pair")
	ErrCannotRequestSelf = errors.New("cannot request a match with yourself")
	ErrNotEligible       = errors.New("user has not opted into peer matching")
	ErrForbidden         = errors.New("not allowed to respond to this match")
	ErrInvalidState      = errors.New("match is no longer pending")
)

// ProfileProvider yields signal profiles. Satisfied by SignalExtractor
// directly or by ProfileCache wrapping it.
type ProfileProvider interface {
	Extract(ctx context.Context, userID int64) (*UserSignalProfile, error)
}

// ChannelCreator is the messaging collaborator that opens a
// conversation channel for an accepted pair.
type ChannelCreator interface {
	CreateChannel(ctx context.Context, participantIDs []int64) (string, error)
}

// EventEmitter delivers match events to users. Fire-and-forget: the
// engine never fails an operation because delivery failed.
type EventEmitter interface {
	Emit(ctx context.Context, userID int64, eventType string, payload map[string]interface{})
}

// Event types published to the notification collaborator.
const (
	EventMatchFound    = "match_found"
	EventMatchAccepted = "match_accepted"
	EventMatchDeclined = "match_declined"
)

type Service interface {
	FindCandidates(ctx context.Context, requesterID int64) ([]*CandidateResult, error)
	Compatibility(ctx context.Context, userID, otherID int64) (*CompatibilityResult, error)
	CreateRequest(ctx context.Context, requesterID, targetID int64) (*Match, error)
	Respond(ctx context.Context, matchID, responderID int64, decision string) (*Match, error)
	ListMatches(ctx context.Context, userID int64, statusFilter string) ([]*Match, error)
	ExpireMatch(ctx context.Context, matchID int64) error
	ExpireDue(ctx context.Context) (int, error)
}

// Config carries the tunables of the engine.
type Config struct {
	CandidateLimit    int
	CandidateMinScore int
	MatchTTL          time.Duration
}

func (c Config) withDefaults() Config {
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = 5
	}
	if c.CandidateMinScore <= 0 {
		c.CandidateMinScore = 60
	}
	if c.MatchTTL <= 0 {
		c.MatchTTL = 14 * 24 * time.Hour
	}
	return c
}

type service struct {
	repo      Repository
	profiles  ProfileProvider
	directory Directory
	channels  ChannelCreator
	events    EventEmitter
	cfg       Config
}

func NewService(repo Repository, profiles ProfileProvider, directory Directory, channels ChannelCreator, events EventEmitter, cfg Config) Service {
	return &service{
		repo:      repo,
		profiles:  profiles,
		directory: directory,
		channels:  channels,
		events:    events,
		cfg:       cfg.withDefaults(),
	}
}

func (s *service) Compatibility(ctx context.Context, userID, otherID int64) (*CompatibilityResult, error) {
	if userID == otherID {
		return nil, ErrCannotRequestSelf
	}

	mine, err := s.profiles.Extract(ctx, userID)
	if err != nil {
		return nil, err
	}
	theirs, err := s.profiles.Extract(ctx, otherID)
	if err != nil {
		return nil, err
	}

	result := Score(mine, theirs)
	RecordCompatibilityScore(result.Score)
	return &result, nil
}

func (s *service) CreateRequest(ctx context.Context, requesterID, targetID int64) (*Match, error) {
	if requesterID == targetID {
		return nil, ErrCannotRequestSelf
	}

	requesterProfile, err := s.profiles.Extract(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requesterProfile.Eligible {
		return nil, ErrNotEligible
	}

	targetProfile, err := s.profiles.Extract(ctx, targetID)
	if err != nil {
		return nil, err
	}

	// Score is captured now and never recomputed on this row.
	result := Score(requesterProfile, targetProfile)

	userA, userB := CanonicalPair(requesterID, targetID)
	match := &Match{
		UserAID:            userA,
		UserBID:            userB,
		CompatibilityScore: result.Score,
		SharedFactors:      result.SharedFactors,
		Status:             StatusPending,
		RequestedBy:        requesterID,
	}

	// Single atomic insert; the partial unique index on the canonical
	// pair turns a concurrent duplicate into ErrAlreadyRequested.
	if err := s.repo.CreateMatch(ctx, match); err != nil {
		return nil, err
	}

	RecordMatchRequest()
	RecordCompatibilityScore(result.Score)

	s.events.Emit(ctx, targetID, EventMatchFound, map[string]interface{}{
		"match_id":       match.ID,
		"counterpart_id": requesterID,
		"score":          result.Score,
		"shared_factors": result.SharedFactors,
	})

	return match, nil
}

func (s *service) Respond(ctx context.Context, matchID, responderID int64, decision string) (*Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.CounterpartID(responderID) == 0 || match.RequestedBy == responderID {
		return nil, ErrForbidden
	}

	var next string
	switch decision {
	case "accept":
		next = StatusAccepted
	case "decline":
		next = StatusDeclined
	default:
		return nil, ErrInvalidState
	}

	newStatus, err := Transition(match.Status, next)
	if err != nil {
		return nil, err
	}

	var channelRef *string
	if newStatus == StatusAccepted {
		ref, err := s.channels.CreateChannel(ctx, []int64{match.UserAID, match.UserBID})
		if err != nil {
			return nil, err
		}
		channelRef = &ref
	}

	// Conditional update: only commits if the row is still pending, so
	// a concurrent response or expiry loses with ErrInvalidState.
	if err := s.repo.TransitionMatch(ctx, matchID, newStatus, channelRef); err != nil {
		return nil, err
	}

	match.Status = newStatus
	match.ChannelRef = channelRef
	now := time.Now()
	match.RespondedAt = &now
	RecordMatchResponse(newStatus)

	payload := map[string]interface{}{
		"match_id":       match.ID,
		"counterpart_id": responderID,
	}
	switch newStatus {
	case StatusAccepted:
		payload["channel_ref"] = *channelRef
		s.events.Emit(ctx, match.RequestedBy, EventMatchAccepted, payload)
		s.events.Emit(ctx, responderID, EventMatchAccepted, map[string]interface{}{
			"match_id":       match.ID,
			"counterpart_id": match.RequestedBy,
			"channel_ref":    *channelRef,
		})
	case StatusDeclined:
		s.events.Emit(ctx, match.RequestedBy, EventMatchDeclined, payload)
	}

	return match, nil
}

func (s *service) ListMatches(ctx context.Context, userID int64, statusFilter string) ([]*Match, error) {
	matches, err := s.repo.GetUserMatches(ctx, userID, statusFilter)
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		counterpartID := match.CounterpartID(userID)
		profile, err := s.directory.GetPublicProfile(ctx, counterpartID)
		if err != nil {
			// A missing counterpart profile should not hide the match.
			log.Printf("matching: public profile lookup failed for user %d: %v", counterpartID, err)
			continue
		}
		match.Counterpart = profile
	}

	return matches, nil
}

// ExpireMatch expires a single pending match once its age exceeds the
// TTL. Idempotent: a match that is not pending, or not old enough, is
// left alone without error.
func (s *service) ExpireMatch(ctx context.Context, matchID int64) error {
	cutoff := time.Now().Add(-s.cfg.MatchTTL)
	expired, err := s.repo.ExpireMatch(ctx, matchID, cutoff)
	if err != nil {
		return err
	}
	if expired {
		RecordExpiredMatches(1)
	}
	return nil
}

// ExpireDue sweeps pending matches older than the TTL. Idempotent: a
// match that already left pending is skipped by the conditional update.
func (s *service) ExpireDue(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cfg.MatchTTL)
	expired, err := s.repo.ExpirePendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		RecordExpiredMatches(expired)
	}
	return expired, nil
}
