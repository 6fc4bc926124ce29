package assessment

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func graded(round int, points, earned float64) GradedQuestion {
	return GradedQuestion{
		QuestionID: uuid.New(),
		Round:      round,
		Points:     points,
		Earned:     earned,
		Answered:   earned > 0,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_PerfectRun(t *testing.T) {
	// All MCQs correct, all coding cases passing: 100 before penalty.
	questions := []GradedQuestion{
		graded(1, 2, 2),
		graded(1, 3, 3),
		graded(2, 10, 10),
	}

	out := Score(questions, 0, 70)
	if !almostEqual(out.RawScore, 100) || !almostEqual(out.FinalScore, 100) {
		t.Errorf("perfect run scored raw=%v final=%v, want 100/100", out.RawScore, out.FinalScore)
	}
	if !almostEqual(out.Round1Score, 100) || !almostEqual(out.Round2Score, 100) {
		t.Errorf("round scores = %v/%v, want 100/100", out.Round1Score, out.Round2Score)
	}
	if !out.Passed {
		t.Error("perfect run must pass")
	}
}

func TestScore_PointsWeightedRounds(t *testing.T) {
	// Round 1 carries 10 points at 100%, round 2 carries 30 points at 0%.
	// Points-proportional weighting gives 25, not the 50 a flat split
	// would produce.
	questions := []GradedQuestion{
		graded(1, 10, 10),
		graded(2, 30, 0),
	}

	out := Score(questions, 0, 70)
	if !almostEqual(out.RawScore, 25) {
		t.Errorf("raw score = %v, want 25 (points-weighted)", out.RawScore)
	}
}

func TestScore_PenaltyClamp(t *testing.T) {
	questions := []GradedQuestion{graded(1, 10, 3)}

	// Raw 30 with penalty 100 clamps to 0, never negative.
	out := Score(questions, 100, 70)
	if !almostEqual(out.FinalScore, 0) {
		t.Errorf("final = %v, want 0", out.FinalScore)
	}

	out = Score(questions, 25, 70)
	if !almostEqual(out.FinalScore, 5) {
		t.Errorf("final = %v, want 5", out.FinalScore)
	}
}

func TestScore_EmptyRounds(t *testing.T) {
	// A round with no questions scores zero, not NaN.
	out := Score([]GradedQuestion{graded(1, 5, 5)}, 0, 70)
	if !almostEqual(out.Round2Score, 0) {
		t.Errorf("empty round 2 = %v, want 0", out.Round2Score)
	}
	if math.IsNaN(out.RawScore) {
		t.Error("raw score must not be NaN")
	}

	out = Score(nil, 0, 70)
	if !almostEqual(out.RawScore, 0) || out.Passed {
		t.Errorf("empty session = %+v, want zero fail", out)
	}
}

func TestScore_PassThreshold(t *testing.T) {
	questions := []GradedQuestion{graded(1, 100, 70)}

	out := Score(questions, 0, 70)
	if !out.Passed {
		t.Error("score equal to threshold must pass")
	}

	out = Score(questions, 1, 70)
	if out.Passed {
		t.Error("score below threshold after penalty must fail")
	}
}

func TestGradeCoding(t *testing.T) {
	tests := []struct {
		name   string
		points int
		passed int
		total  int
		want   float64
	}{
		{name: "all cases", points: 10, passed: 4, total: 4, want: 10},
		{name: "half cases", points: 10, passed: 2, total: 4, want: 5},
		{name: "no cases passed", points: 10, passed: 0, total: 4, want: 0},
		{name: "no cases defined", points: 10, passed: 0, total: 0, want: 0},
		{name: "passed clamped to total", points: 8, passed: 9, total: 4, want: 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GradeCoding(tc.points, tc.passed, tc.total); !almostEqual(got, tc.want) {
				t.Errorf("GradeCoding(%d, %d, %d) = %v, want %v", tc.points, tc.passed, tc.total, got, tc.want)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		score     float64
		threshold int
		action    RecommendationAction
	}{
		{score: 82, threshold: 70, action: RecommendApprove},
		{score: 80, threshold: 70, action: RecommendApprove},
		{score: 75, threshold: 70, action: RecommendApprove},
		{score: 70, threshold: 70, action: RecommendApprove},
		{score: 65, threshold: 70, action: RecommendReview},
		{score: 60, threshold: 70, action: RecommendReview},
		{score: 59.9, threshold: 70, action: RecommendReject},
		{score: 50, threshold: 70, action: RecommendReject},
		{score: 55, threshold: 60, action: RecommendReview},
	}

	for _, tc := range tests {
		got := Recommend(tc.score, tc.threshold)
		if got.Action != tc.action {
			t.Errorf("Recommend(%v, %d) = %s, want %s", tc.score, tc.threshold, got.Action, tc.action)
		}
		if got.Reason == "" {
			t.Errorf("Recommend(%v, %d) returned empty reason", tc.score, tc.threshold)
		}
	}
}
