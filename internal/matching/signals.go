package matching

import (
	"context"
	"sort"
	"time"
)

const maxProfileTriggers = 5

// MoodSource reads a user's recent mood-tracking history. Owned by the
// mood feature; consumed read-only here.
type MoodSource interface {
	ListEntries(ctx context.Context, userID int64, since time.Time) ([]*MoodEntry, error)
}

// Directory exposes the user fields the engine needs: the opt-in flag,
// cohort attributes, the visibility-filtered public profile, and the
// eligible pool.
type Directory interface {
	GetVisibility(ctx context.Context, userID int64) (bool, error)
	GetCohortAttributes(ctx context.Context, userID int64) (CohortAttrs, error)
	GetPublicProfile(ctx context.Context, userID int64) (*PublicProfile, error)
	ListEligibleUserIDs(ctx context.Context) ([]int64, error)
}

// SignalExtractor derives signal profiles from mood history.
type SignalExtractor struct {
	moods        MoodSource
	directory    Directory
	lookbackDays int
}

func NewSignalExtractor(moods MoodSource, directory Directory, lookbackDays int) *SignalExtractor {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	return &SignalExtractor{
		moods:        moods,
		directory:    directory,
		lookbackDays: lookbackDays,
	}
}

// Extract builds the profile from entries inside the lookback window.
// A user with no history gets a neutral profile (average mood 5.0, no
// triggers) rather than an error, so inactive users stay discoverable.
func (e *SignalExtractor) Extract(ctx context.Context, userID int64) (*UserSignalProfile, error) {
	eligible, err := e.directory.GetVisibility(ctx, userID)
	if err != nil {
		return nil, err
	}

	cohort, err := e.directory.GetCohortAttributes(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -e.lookbackDays)
	entries, err := e.moods.ListEntries(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	profile := &UserSignalProfile{
		UserID:      userID,
		AverageMood: 5.0,
		Cohort:      cohort,
		Eligible:    eligible,
		EntryCount:  len(entries),
	}

	if len(entries) == 0 {
		return profile, nil
	}

	var moodSum float64
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for _, entry := range entries {
		moodSum += entry.MoodScore
		for _, tag := range entry.Triggers {
			if _, ok := counts[tag]; !ok {
				firstSeen[tag] = len(firstSeen)
			}
			counts[tag]++
		}
	}

	profile.AverageMood = moodSum / float64(len(entries))

	ranked := make([]TriggerCount, 0, len(counts))
	for tag, count := range counts {
		ranked = append(ranked, TriggerCount{Tag: tag, Count: count})
	}
	// Ties keep first-observed order. That is a convention carried over
	// from the existing behavior, not a hard requirement.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Tag] < firstSeen[ranked[j].Tag]
	})

	if len(ranked) > maxProfileTriggers {
		ranked = ranked[:maxProfileTriggers]
	}
	profile.Triggers = ranked

	return profile, nil
}
