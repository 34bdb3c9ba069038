package matching

import "testing"

func TestTransitionLegality(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		wantErr bool
	}{
		{"pending to accepted", StatusPending, StatusAccepted, false},
		{"pending to declined", StatusPending, StatusDeclined, false},
		{"pending to expired", StatusPending, StatusExpired, false},
		{"pending to pending", StatusPending, StatusPending, true},
		{"accepted is terminal", StatusAccepted, StatusDeclined, true},
		{"declined is terminal", StatusDeclined, StatusAccepted, true},
		{"expired is terminal", StatusExpired, StatusAccepted, true},
		{"expired to pending", StatusExpired, StatusPending, true},
		{"unknown target", StatusPending, "cancelled", true},
		{"unknown source", "cancelled", StatusAccepted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.next)
			if tt.wantErr {
				if err != ErrInvalidState {
					t.Fatalf("want ErrInvalidState, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.next {
				t.Fatalf("want %s, got %s", tt.next, got)
			}
		})
	}
}

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		a, b         int64
		wantA, wantB int64
	}{
		{1, 2, 1, 2},
		{2, 1, 1, 2},
		{9, 9, 9, 9},
	}

	for _, tt := range tests {
		gotA, gotB := CanonicalPair(tt.a, tt.b)
		if gotA != tt.wantA || gotB != tt.wantB {
			t.Errorf("CanonicalPair(%d, %d) = (%d, %d), want (%d, %d)",
				tt.a, tt.b, gotA, gotB, tt.wantA, tt.wantB)
		}
	}
}

func TestCounterpartID(t *testing.T) {
	match := &Match{UserAID: 3, UserBID: 8}

	if got := match.CounterpartID(3); got != 8 {
		t.Fatalf("counterpart of 3: want 8, got %d", got)
	}
	if got := match.CounterpartID(8); got != 3 {
		t.Fatalf("counterpart of 8: want 3, got %d", got)
	}
	if got := match.CounterpartID(5); got != 0 {
		t.Fatalf("counterpart of non-party: want 0, got %d", got)
	}
}
