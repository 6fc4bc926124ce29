// Package assessment holds the pure decision logic of the test
// pipeline: duration-based composition, violation escalation, scoring,
// and the approval recommendation. Everything here is deterministic and
// side-effect free; services supply the state.
package assessment

import (
	"math"
	"time"

	"github.com/leavedesk/leavegate-backend/internal/model"
)

// DifficultyBias names the sampling bias of a composition tier.
type DifficultyBias string

const (
	BiasEasy     DifficultyBias = "easy"
	BiasModerate DifficultyBias = "moderate"
	BiasHard     DifficultyBias = "hard"
)

// Composition is the question mix provisioned for a leave duration.
type Composition struct {
	MCQCount    int
	CodingCount int
	Bias        DifficultyBias
}

// LeaveDays computes the requested leave length, inclusive of both
// endpoints: ceil((end-start)/1 day) + 1. Returns 0 when end precedes
// start.
func LeaveDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	days := int(math.Ceil(end.Sub(start).Hours()/24)) + 1
	return days
}

// CompositionFor maps a leave duration to its tier. Longer absences get
// larger, harder tests.
func CompositionFor(days int) Composition {
	switch {
	case days > 7:
		return Composition{MCQCount: 7, CodingCount: 3, Bias: BiasHard}
	case days >= 3:
		return Composition{MCQCount: 6, CodingCount: 2, Bias: BiasModerate}
	default:
		return Composition{MCQCount: 5, CodingCount: 2, Bias: BiasEasy}
	}
}

// DifficultyQuota splits a question count across difficulty buckets
// according to the tier bias. The buckets always sum to count; the
// remainder after integer division lands on the biased bucket.
func DifficultyQuota(count int, bias DifficultyBias) map[model.Difficulty]int {
	if count <= 0 {
		return map[model.Difficulty]int{}
	}

	var easy, medium, hard int
	switch bias {
	case BiasHard:
		hard = count / 2
		medium = count / 3
		easy = count - hard - medium
	case BiasEasy:
		easy = count / 2
		medium = count / 3
		hard = count - easy - medium
	default:
		medium = count / 2
		easy = (count - medium) / 2
		hard = count - medium - easy
	}

	return map[model.Difficulty]int{
		model.DifficultyEasy:   easy,
		model.DifficultyMedium: medium,
		model.DifficultyHard:   hard,
	}
}

// RemainingSeconds is the server-authoritative remaining time:
// timeLimit*60 - (now - startedAt), floored at zero. The client clock
// never participates in expiry decisions.
func RemainingSeconds(startedAt time.Time, timeLimitMinutes int, now time.Time) int {
	total := timeLimitMinutes * 60
	elapsed := int(now.Sub(startedAt).Seconds())
	remaining := total - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
