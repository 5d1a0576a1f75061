package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestInsertValues_NumericBlanksAreNull(t *testing.T) {
	p := model.LeadProfile{LinkedInURL: "https://linkedin.com/in/ada"}
	vals := insertValues(&p)
	byName := make(map[string]any, len(vals))
	for i, c := range leadColumns {
		byName[c.name] = vals[i]
	}

	assert.Nil(t, byName["company_founded_year"])
	assert.Nil(t, byName["work_experience_months"])
	assert.Nil(t, byName["icp_score"])
	assert.Nil(t, byName["icp_percentage"])
	// Text blanks stay empty strings, not NULL.
	assert.Equal(t, "", byName["full_name"])
}

func TestInsertValues_ScoredProfileKeepsZeroScore(t *testing.T) {
	p := model.LeadProfile{LinkedInURL: "https://linkedin.com/in/ada"}
	p.ApplyScore(model.ScoreResult{TotalScore: 0, Percentage: 0, Grade: "D"})

	vals := insertValues(&p)
	byName := make(map[string]any, len(vals))
	for i, c := range leadColumns {
		byName[c.name] = vals[i]
	}
	// A genuine zero score is stored, not nulled.
	assert.Equal(t, 0.0, byName["icp_score"])
	assert.Equal(t, "D", byName["icp_grade"])
}

func TestSkippedExtras(t *testing.T) {
	p := model.LeadProfile{
		Extra: map[string]any{
			"openToWork":  true,
			"email":       "has a column",
			"creatorMode": false,
		},
	}
	assert.Equal(t, []string{"creator_mode", "open_to_work"}, skippedExtras(&p))
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "open_to_work", snakeCase("openToWork"))
	assert.Equal(t, "email", snakeCase("email"))
	assert.Equal(t, "company_founded_year", snakeCase("companyFoundedYear"))
	assert.Equal(t, "already_snake", snakeCase("already_snake"))
}
