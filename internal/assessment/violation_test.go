package assessment

import "testing"

func TestPenaltyPercent(t *testing.T) {
	tests := []struct {
		name  string
		count int
		per   int
		want  int
	}{
		{name: "zero violations", count: 0, per: 5, want: 0},
		{name: "single", count: 1, per: 5, want: 5},
		{name: "five at five percent", count: 5, per: 5, want: 25},
		{name: "capped at 100", count: 20, per: 5, want: 100},
		{name: "over the cap", count: 25, per: 5, want: 100},
		{name: "zero penalty rate", count: 10, per: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PenaltyPercent(tc.count, tc.per); got != tc.want {
				t.Errorf("PenaltyPercent(%d, %d) = %d, want %d", tc.count, tc.per, got, tc.want)
			}
		})
	}
}

func TestPenaltyPercent_Monotonic(t *testing.T) {
	prev := 0
	for count := 0; count <= 30; count++ {
		got := PenaltyPercent(count, 5)
		if got < prev {
			t.Fatalf("penalty decreased at count=%d: %d < %d", count, got, prev)
		}
		prev = got
	}
}

func TestWarnLevel(t *testing.T) {
	// With maxViolations=5: normal at 0-2, warning at 3, critical at 4+.
	tests := []struct {
		count int
		max   int
		want  WarningLevel
	}{
		{count: 0, max: 5, want: WarningNormal},
		{count: 2, max: 5, want: WarningNormal},
		{count: 3, max: 5, want: WarningWarning},
		{count: 4, max: 5, want: WarningCritical},
		{count: 5, max: 5, want: WarningCritical},
		{count: 1, max: 3, want: WarningWarning},
		{count: 2, max: 3, want: WarningCritical},
	}

	for _, tc := range tests {
		if got := WarnLevel(tc.count, tc.max); got != tc.want {
			t.Errorf("WarnLevel(%d, %d) = %s, want %s", tc.count, tc.max, got, tc.want)
		}
	}
}

func TestLimitReached(t *testing.T) {
	if LimitReached(4, 5) {
		t.Error("limit must not trip below max")
	}
	if !LimitReached(5, 5) {
		t.Error("limit must trip exactly at max")
	}
	if !LimitReached(6, 5) {
		t.Error("limit must stay tripped past max")
	}
}
