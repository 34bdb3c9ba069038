package matching

import (
	"context"
	"sort"
	"time"
)

// FindCandidates ranks eligible counterparts for the requester.
//
// The pool is every other eligible user minus anyone already tied to
// the requester by a non-expired match. Declined pairs therefore stay
// excluded for good; see the legality rules in repository.go.
func (s *service) FindCandidates(ctx context.Context, requesterID int64) ([]*CandidateResult, error) {
	started := time.Now()

	requesterProfile, err := s.profiles.Extract(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requesterProfile.Eligible {
		// Explicit error, not an empty list, so callers can tell
		// "matching disabled" apart from "no candidates".
		return nil, ErrNotEligible
	}

	pool, err := s.directory.ListEligibleUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	linked, err := s.repo.GetLinkedUserIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	results := make([]*CandidateResult, 0, s.cfg.CandidateLimit)
	for _, candidateID := range pool {
		if candidateID == requesterID || linked[candidateID] {
			continue
		}

		candidateProfile, err := s.profiles.Extract(ctx, candidateID)
		if err != nil {
			// One broken candidate should not sink the whole request.
			continue
		}

		scored := Score(requesterProfile, candidateProfile)
		if scored.Score < s.cfg.CandidateMinScore {
			continue
		}

		results = append(results, &CandidateResult{
			CandidateID:   candidateID,
			Score:         scored.Score,
			SharedFactors: scored.SharedFactors,
			Reason:        scored.Reason,
		})
	}

	// Score descending, then candidate id ascending so repeated calls
	// return the same order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	if len(results) > s.cfg.CandidateLimit {
		results = results[:s.cfg.CandidateLimit]
	}

	for _, result := range results {
		profile, err := s.directory.GetPublicProfile(ctx, result.CandidateID)
		if err == nil {
			result.Profile = profile
		}
	}

	ObserveCandidateGeneration(time.Since(started), len(results))
	return results, nil
}
