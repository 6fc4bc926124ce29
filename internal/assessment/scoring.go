package assessment

import "github.com/google/uuid"

// GradedQuestion is one session question after grading: how many points
// it carries and how many were earned. MCQ grading is binary; coding
// earns points * fraction of judge cases passed.
type GradedQuestion struct {
	QuestionID uuid.UUID
	Round      int
	Points     float64
	Earned     float64
	Answered   bool
}

// Outcome is the scoring result for a finalized session.
type Outcome struct {
	Round1Score float64
	Round2Score float64
	RawScore    float64
	FinalScore  float64
	TotalEarned float64
	MaxPoints   float64
	Penalty     int
	Passed      bool
}

// Score computes the per-round and total scores for a graded question
// set, applies the frozen violation penalty, and evaluates the pass
// threshold. Round weighting is points-proportional: each round
// contributes in proportion to the points it carries, not a flat 50/50.
func Score(questions []GradedQuestion, penaltyPercent, passingPercentage int) Outcome {
	var r1Earned, r1Max, r2Earned, r2Max float64
	for _, q := range questions {
		if q.Round == 2 {
			r2Earned += q.Earned
			r2Max += q.Points
		} else {
			r1Earned += q.Earned
			r1Max += q.Points
		}
	}

	out := Outcome{
		Round1Score: roundPercentage(r1Earned, r1Max),
		Round2Score: roundPercentage(r2Earned, r2Max),
		TotalEarned: r1Earned + r2Earned,
		MaxPoints:   r1Max + r2Max,
		Penalty:     penaltyPercent,
	}

	out.RawScore = roundPercentage(out.TotalEarned, out.MaxPoints)

	final := out.RawScore - float64(penaltyPercent)
	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}
	out.FinalScore = final
	out.Passed = final >= float64(passingPercentage)

	return out
}

// GradeCoding converts a judge run into earned points: full points
// scaled by the fraction of test cases passed, hidden cases included.
func GradeCoding(points int, casesPassed, casesTotal int) float64 {
	if casesTotal <= 0 || casesPassed <= 0 {
		return 0
	}
	if casesPassed > casesTotal {
		casesPassed = casesTotal
	}
	return float64(points) * float64(casesPassed) / float64(casesTotal)
}

func roundPercentage(earned, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return 100 * earned / max
}
