package assessment

// WarningLevel is the escalation tier shown to the test taker.
type WarningLevel string

const (
	WarningNormal   WarningLevel = "normal"
	WarningWarning  WarningLevel = "warning"
	WarningCritical WarningLevel = "critical"
)

// PenaltyPercent computes the cumulative score deduction for a raw
// violation count, capped at 100.
func PenaltyPercent(count, perViolationPercent int) int {
	if count <= 0 || perViolationPercent <= 0 {
		return 0
	}
	penalty := count * perViolationPercent
	if penalty > 100 {
		return 100
	}
	return penalty
}

// WarnLevel derives the escalation tier from the raw count relative to
// the configured maximum: critical from maxViolations-1 on, warning
// from maxViolations-2 on, normal below.
func WarnLevel(count, maxViolations int) WarningLevel {
	switch {
	case count >= maxViolations-1:
		return WarningCritical
	case count >= maxViolations-2:
		return WarningWarning
	default:
		return WarningNormal
	}
}

// LimitReached reports whether the count has hit the auto-submit
// threshold.
func LimitReached(count, maxViolations int) bool {
	return count >= maxViolations
}
