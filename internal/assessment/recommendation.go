package assessment

// RecommendationAction is the engine's suggested approval action. It is
// advisory; the final decision is human.
type RecommendationAction string

const (
	RecommendApprove RecommendationAction = "approve"
	RecommendReview  RecommendationAction = "review"
	RecommendReject  RecommendationAction = "reject"
	RecommendPending RecommendationAction = "pending"
)

// Recommendation pairs the suggested action with its reason.
type Recommendation struct {
	Action RecommendationAction `json:"action"`
	Reason string               `json:"reason"`
}

// Recommend maps a final score to an approval recommendation against
// the configured passing threshold.
func Recommend(finalScore float64, passingPercentage int) Recommendation {
	threshold := float64(passingPercentage)
	switch {
	case finalScore >= 80:
		return Recommendation{Action: RecommendApprove, Reason: "Excellent performance"}
	case finalScore >= threshold:
		return Recommendation{Action: RecommendApprove, Reason: "Satisfactory performance"}
	case finalScore >= threshold-10:
		return Recommendation{Action: RecommendReview, Reason: "Borderline score - requires review"}
	default:
		return Recommendation{Action: RecommendReject, Reason: "Below passing threshold"}
	}
}

// RecommendPendingTest is the recommendation for leaves whose test has
// not completed yet.
func RecommendPendingTest() Recommendation {
	return Recommendation{Action: RecommendPending, Reason: "Test not completed"}
}
