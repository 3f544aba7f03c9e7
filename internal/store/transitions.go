package store

import "smartop/fleet-service/internal/models"

var transitionMap = map[models.ReviewDecision][]string{
	models.DecisionApproved: {models.SubmissionPending},
	models.DecisionRejected: {models.SubmissionPending},
}

func ValidTransition(decision models.ReviewDecision, fromStatus string) bool {
	allowed, ok := transitionMap[decision]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
