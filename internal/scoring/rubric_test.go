package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_WeightedAverage(t *testing.T) {
	r := DefaultRubric() // 30/30/20/20
	res := r.Finalize(Subscores{IndustryFit: 10, RoleFit: 10, CompanySizeFit: 5, DecisionMaker: 5}, "operations", "good fit")

	// 10*0.3 + 10*0.3 + 5*0.2 + 5*0.2 = 8.0
	assert.Equal(t, 8.0, res.TotalScore)
	assert.Equal(t, 80.0, res.Percentage)
	assert.Equal(t, "A", res.Grade)
	assert.Equal(t, "operations", res.Category)
}

func TestFinalize_PercentageCappedAt100(t *testing.T) {
	r := &Rubric{Weights: Weights{IndustryFit: 50, RoleFit: 50, CompanySizeFit: 50, DecisionMaker: 50}}
	res := r.Finalize(Subscores{IndustryFit: 10, RoleFit: 10, CompanySizeFit: 10, DecisionMaker: 10}, "", "")
	assert.Equal(t, 100.0, res.Percentage)
}

func TestFinalize_SubstitutesNeutralForInvalid(t *testing.T) {
	r := DefaultRubric()
	res := r.Finalize(Subscores{
		IndustryFit:    -3,
		RoleFit:        42,
		CompanySizeFit: math.NaN(),
		DecisionMaker:  math.Inf(1),
	}, "", "")

	assert.Equal(t, 5.0, res.IndustryFit)
	assert.Equal(t, 5.0, res.RoleFit)
	assert.Equal(t, 5.0, res.CompanySizeFit)
	assert.Equal(t, 5.0, res.DecisionMaker)
	assert.Equal(t, 5.0, res.TotalScore)
	assert.Equal(t, 50.0, res.Percentage)
	assert.Equal(t, "C+", res.Grade)
}

func TestNeutral(t *testing.T) {
	res := Neutral("scoring failed: timeout")
	assert.Equal(t, 5.0, res.TotalScore)
	assert.Equal(t, 50.0, res.Percentage)
	assert.Equal(t, "C+", res.Grade)
	assert.Equal(t, "none", res.Category)
	assert.Equal(t, "scoring failed: timeout", res.Reasoning)
}

func TestLoadRubric_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: saas
weights:
  industry_fit: 40
  role_fit: 40
  company_size_fit: 10
  decision_maker: 10
target_industries: [software, saas]
`), 0o644))

	r, err := LoadRubric(path)
	require.NoError(t, err)
	assert.Equal(t, "saas", r.Name)
	assert.Equal(t, 40.0, r.Weights.IndustryFit)
	assert.Equal(t, []string{"software", "saas"}, r.TargetIndustries)
	// Unset sections keep defaults.
	assert.NotEmpty(t, r.TargetRoles)
}

func TestLoadRubric_MissingFile(t *testing.T) {
	_, err := LoadRubric("does/not/exist.yaml")
	require.Error(t, err)
}
