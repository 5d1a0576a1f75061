package model

// ScoreResult holds the ICP evaluation for a single profile. Sub-scores
// are in [0,10]; TotalScore is the rubric-weighted average.
type ScoreResult struct {
	IndustryFit    float64 `json:"industry_fit"`
	RoleFit        float64 `json:"role_fit"`
	CompanySizeFit float64 `json:"company_size_fit"`
	DecisionMaker  float64 `json:"decision_maker"`

	TotalScore float64 `json:"total_score"`
	Percentage float64 `json:"score_percentage"`
	Grade      string  `json:"grade"`
	Category   string  `json:"icp_category,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// GradeFor buckets a score percentage into a letter grade.
func GradeFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 70:
		return "B+"
	case percentage >= 60:
		return "B"
	case percentage >= 50:
		return "C+"
	case percentage >= 40:
		return "C"
	case percentage >= 30:
		return "D+"
	default:
		return "D"
	}
}
