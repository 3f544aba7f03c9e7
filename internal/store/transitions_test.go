package store

import (
	"testing"

	"smartop/fleet-service/internal/models"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		decision models.ReviewDecision
		from     string
		valid    bool
	}{
		{models.DecisionApproved, "pending", true},
		{models.DecisionRejected, "pending", true},
		{models.DecisionApproved, "approved", false},
		{models.DecisionRejected, "approved", false},
		{models.DecisionApproved, "rejected", false},
		{models.DecisionRejected, "rejected", false},
		{models.ReviewDecision("pending"), "pending", false},
		{models.ReviewDecision("unknown"), "pending", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.decision, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.decision, tt.from, got, tt.valid)
		}
	}
}
