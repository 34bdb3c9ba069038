package matching

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func entry(score float64, daysAgo int, triggers ...string) *MoodEntry {
	return &MoodEntry{
		MoodScore:  score,
		Triggers:   triggers,
		RecordedAt: time.Now().AddDate(0, 0, -daysAgo),
	}
}

func newTestExtractor(entries map[int64][]*MoodEntry, dir *fakeDirectory) *SignalExtractor {
	return NewSignalExtractor(&fakeMoods{entries: entries}, dir, 30)
}

func singleUserDirectory(userID int64, eligible bool) *fakeDirectory {
	return &fakeDirectory{
		eligible: map[int64]bool{userID: eligible},
		cohorts:  map[int64]CohortAttrs{userID: {StudyYear: 2, Programme: "CS"}},
		profiles: map[int64]*PublicProfile{userID: {UserID: userID, DisplayName: "Test"}},
	}
}

func TestExtractNeutralDefaultOnEmptyHistory(t *testing.T) {
	extractor := newTestExtractor(nil, singleUserDirectory(7, true))

	profile, err := extractor.Extract(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.AverageMood != 5.0 {
		t.Fatalf("average mood: want 5.0, got %v", profile.AverageMood)
	}
	if len(profile.Triggers) != 0 {
		t.Fatalf("triggers: want empty, got %v", profile.Triggers)
	}
	if !profile.Eligible {
		t.Fatal("eligible flag not carried through")
	}
}

func TestExtractAverageMood(t *testing.T) {
	entries := map[int64][]*MoodEntry{
		7: {entry(4, 1, "exams"), entry(6, 2), entry(8, 3, "sleep")},
	}
	extractor := newTestExtractor(entries, singleUserDirectory(7, true))

	profile, err := extractor.Extract(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.AverageMood != 6.0 {
		t.Fatalf("average mood: want 6.0, got %v", profile.AverageMood)
	}
	if profile.EntryCount != 3 {
		t.Fatalf("entry count: want 3, got %d", profile.EntryCount)
	}
}

func TestExtractIgnoresEntriesOutsideLookback(t *testing.T) {
	entries := map[int64][]*MoodEntry{
		7: {entry(2, 45, "old-worry"), entry(8, 5, "sleep")},
	}
	extractor := newTestExtractor(entries, singleUserDirectory(7, true))

	profile, err := extractor.Extract(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.AverageMood != 8.0 {
		t.Fatalf("average mood: want 8.0 (old entry excluded), got %v", profile.AverageMood)
	}
	if !reflect.DeepEqual(profile.TriggerTags(), []string{"sleep"}) {
		t.Fatalf("triggers: want [sleep], got %v", profile.TriggerTags())
	}
}

func TestExtractTopFiveTriggersWithTieOrder(t *testing.T) {
	// "exams" appears 3 times, "sleep" and "money" twice (sleep seen
	// first), then three singletons; "last" should be cut at five.
	entries := map[int64][]*MoodEntry{
		7: {
			entry(5, 1, "exams", "sleep"),
			entry(5, 2, "exams", "money", "sleep"),
			entry(5, 3, "exams", "money", "social"),
			entry(5, 4, "family"),
			entry(5, 5, "last"),
		},
	}
	extractor := newTestExtractor(entries, singleUserDirectory(7, true))

	profile, err := extractor.Extract(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := profile.TriggerTags()
	want := []string{"exams", "sleep", "money", "social", "family"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("triggers: want %v, got %v", want, got)
	}
	if profile.Triggers[0].Count != 3 {
		t.Fatalf("top trigger count: want 3, got %d", profile.Triggers[0].Count)
	}
}

func TestExtractUnknownUser(t *testing.T) {
	extractor := newTestExtractor(nil, singleUserDirectory(7, true))

	if _, err := extractor.Extract(context.Background(), 99); err != ErrUserNotFound {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}
