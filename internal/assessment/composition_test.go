package assessment

import (
	"testing"
	"time"

	"github.com/leavedesk/leavegate-backend/internal/model"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLeaveDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{name: "single day", start: "2026-03-02", end: "2026-03-02", want: 1},
		{name: "weekend", start: "2026-03-07", end: "2026-03-08", want: 2},
		{name: "work week", start: "2026-03-02", end: "2026-03-06", want: 5},
		{name: "full week", start: "2026-03-02", end: "2026-03-08", want: 7},
		{name: "eight days", start: "2026-03-02", end: "2026-03-09", want: 8},
		{name: "end before start", start: "2026-03-09", end: "2026-03-02", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LeaveDays(date(tc.start), date(tc.end)); got != tc.want {
				t.Errorf("LeaveDays(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestCompositionFor(t *testing.T) {
	tests := []struct {
		days   int
		mcq    int
		coding int
		bias   DifficultyBias
	}{
		{days: 1, mcq: 5, coding: 2, bias: BiasEasy},
		{days: 2, mcq: 5, coding: 2, bias: BiasEasy},
		// Boundary: exactly 3 days belongs to the moderate tier.
		{days: 3, mcq: 6, coding: 2, bias: BiasModerate},
		{days: 5, mcq: 6, coding: 2, bias: BiasModerate},
		// Boundary: exactly 7 days stays moderate.
		{days: 7, mcq: 6, coding: 2, bias: BiasModerate},
		{days: 8, mcq: 7, coding: 3, bias: BiasHard},
		{days: 30, mcq: 7, coding: 3, bias: BiasHard},
	}

	for _, tc := range tests {
		got := CompositionFor(tc.days)
		if got.MCQCount != tc.mcq || got.CodingCount != tc.coding || got.Bias != tc.bias {
			t.Errorf("CompositionFor(%d) = %+v, want {%d %d %s}", tc.days, got, tc.mcq, tc.coding, tc.bias)
		}
	}
}

func TestDifficultyQuota_SumsToCount(t *testing.T) {
	for _, bias := range []DifficultyBias{BiasEasy, BiasModerate, BiasHard} {
		for count := 0; count <= 12; count++ {
			quota := DifficultyQuota(count, bias)
			sum := 0
			for _, n := range quota {
				if n < 0 {
					t.Fatalf("negative quota for count=%d bias=%s: %v", count, bias, quota)
				}
				sum += n
			}
			if sum != count {
				t.Errorf("quota for count=%d bias=%s sums to %d: %v", count, bias, sum, quota)
			}
		}
	}
}

func TestDifficultyQuota_Bias(t *testing.T) {
	hard := DifficultyQuota(10, BiasHard)
	if hard[model.DifficultyHard] <= hard[model.DifficultyEasy] {
		t.Errorf("hard bias should favor hard questions: %v", hard)
	}
	easy := DifficultyQuota(10, BiasEasy)
	if easy[model.DifficultyEasy] <= easy[model.DifficultyHard] {
		t.Errorf("easy bias should favor easy questions: %v", easy)
	}
}

func TestRemainingSeconds(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		limit   int
		elapsed time.Duration
		want    int
	}{
		{name: "just started", limit: 75, elapsed: 0, want: 75 * 60},
		{name: "one minute in", limit: 75, elapsed: time.Minute, want: 74 * 60},
		{name: "at the wire", limit: 75, elapsed: 75 * time.Minute, want: 0},
		{name: "past the wire", limit: 75, elapsed: 90 * time.Minute, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemainingSeconds(start, tc.limit, start.Add(tc.elapsed)); got != tc.want {
				t.Errorf("RemainingSeconds = %d, want %d", got, tc.want)
			}
		})
	}
}
