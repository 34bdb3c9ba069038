package matching

import (
	"fmt"
	"math"
	"sort"
)

// Scoring weights. Shared triggers dominate, then mood similarity, then
// cohort equality, plus a flat activity bonus.
const (
	weightSharedTriggers = 40.0
	weightMoodSimilarity = 30.0
	weightCohortMatch    = 20.0
	weightActivityBonus  = 10.0

	moodScale = 10.0
)

// Score computes the 0-100 compatibility between two signal profiles.
// It is a pure function and symmetric: Score(a, b) == Score(b, a).
func Score(a, b *UserSignalProfile) CompatibilityResult {
	shared := sharedTags(a.TriggerTags(), b.TriggerTags())

	total := jaccard(a.TriggerTags(), b.TriggerTags()) * weightSharedTriggers

	moodGap := math.Abs(a.AverageMood - b.AverageMood)
	total += math.Max(0, 1-moodGap/moodScale) * weightMoodSimilarity

	if a.Cohort == b.Cohort {
		total += weightCohortMatch
	}

	// Awarded unconditionally so neither party is penalized for sparse
	// history, matching the extractor's neutral-default policy.
	total += weightActivityBonus

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return CompatibilityResult{
		Score:         score,
		SharedFactors: shared,
		Reason:        scoreReason(shared),
	}
}

// jaccard is |intersection| / |union| of the two tag sets. Symmetric by
// construction; 0 when both sets are empty.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}

	intersection := 0
	for _, tag := range b {
		if set[tag] {
			intersection++
		}
	}

	union := len(set) + uniqueCount(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

func uniqueCount(tags []string) int {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return len(set)
}

func sharedTags(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}

	shared := []string{}
	seen := make(map[string]bool)
	for _, tag := range b {
		if set[tag] && !seen[tag] {
			shared = append(shared, tag)
			seen[tag] = true
		}
	}

	sort.Strings(shared)
	return shared
}

func scoreReason(shared []string) string {
	switch len(shared) {
	case 0:
		return "You both could benefit from connecting with a peer"
	case 1:
		return fmt.Sprintf("You both deal with %s", shared[0])
	default:
		return fmt.Sprintf("You both deal with %s and %s", shared[0], shared[1])
	}
}
