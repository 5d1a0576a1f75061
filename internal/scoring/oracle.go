// Package scoring evaluates lead profiles against a weighted ICP rubric.
// Two oracles are provided: a deterministic rule scorer and an AI scorer
// backed by Claude. Both produce the same ScoreResult shape; sub-scores
// are validated and clamped here regardless of which oracle ran.
package scoring

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Oracle scores one profile against the configured rubric.
type Oracle interface {
	Score(ctx context.Context, profile model.LeadProfile) (model.ScoreResult, error)
}

// Neutral returns the fallback result used when an oracle call fails:
// every sub-score sits at the midpoint so a single bad profile neither
// sinks nor inflates a batch.
func Neutral(reason string) model.ScoreResult {
	return model.ScoreResult{
		IndustryFit:    neutralScore,
		RoleFit:        neutralScore,
		CompanySizeFit: neutralScore,
		DecisionMaker:  neutralScore,
		TotalScore:     neutralScore,
		Percentage:     neutralScore * 10,
		Grade:          model.GradeFor(neutralScore * 10),
		Category:       "none",
		Reasoning:      reason,
	}
}
