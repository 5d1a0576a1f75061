package scoring

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// neutralScore substitutes any sub-score that is missing or out of range.
const neutralScore = 5.0

// Weights are the rubric's sub-score weights, expressed as percentages.
type Weights struct {
	IndustryFit    float64 `yaml:"industry_fit"`
	RoleFit        float64 `yaml:"role_fit"`
	CompanySizeFit float64 `yaml:"company_size_fit"`
	DecisionMaker  float64 `yaml:"decision_maker"`
}

// Rubric defines what an ideal customer looks like and how much each
// dimension counts.
type Rubric struct {
	Name              string   `yaml:"name"`
	Weights           Weights  `yaml:"weights"`
	TargetIndustries  []string `yaml:"target_industries"`
	TargetRoles       []string `yaml:"target_roles"`
	CompanySizeRanges []string `yaml:"company_size_ranges"`

	// Category keyword sets map a matched industry onto an ICP category.
	Categories map[string][]string `yaml:"categories"`
}

// DefaultRubric returns the built-in operations/field-service rubric.
func DefaultRubric() *Rubric {
	return &Rubric{
		Name: "default",
		Weights: Weights{
			IndustryFit:    30,
			RoleFit:        30,
			CompanySizeFit: 20,
			DecisionMaker:  20,
		},
		TargetIndustries: []string{
			"manufacturing", "industrial automation", "heavy equipment",
			"cnc", "robotics", "facility management", "fleet operations",
			"commercial real estate", "kitchen automation", "hospitality",
		},
		TargetRoles: []string{
			"operations head", "plant manager", "maintenance lead",
			"production engineer", "facility manager",
			"maintenance coordinator", "service head", "asset manager",
		},
		CompanySizeRanges: []string{"11-50", "51-200", "201-500"},
		Categories: map[string][]string{
			"operations": {
				"manufacturing", "industrial", "automation", "equipment",
				"cnc", "robotics", "facility", "fleet", "operations",
			},
			"field_service": {
				"kitchen", "restaurant", "food", "real estate", "appliance",
				"hotel", "hospitality", "service", "maintenance",
			},
		},
	}
}

// LoadRubric reads a rubric from a YAML file, filling unset weights from
// the default rubric.
func LoadRubric(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scoring: read rubric %s", path)
	}

	r := DefaultRubric()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, eris.Wrapf(err, "scoring: parse rubric %s", path)
	}
	if r.Weights.IndustryFit+r.Weights.RoleFit+r.Weights.CompanySizeFit+r.Weights.DecisionMaker == 0 {
		r.Weights = DefaultRubric().Weights
	}
	return r, nil
}

// Subscores are raw oracle outputs before validation.
type Subscores struct {
	IndustryFit    float64
	RoleFit        float64
	CompanySizeFit float64
	DecisionMaker  float64
}

// Finalize validates sub-scores and derives the composite result: each
// value outside [0,10] (or non-finite) is replaced with the neutral 5.0,
// the total is the weighted average, percentage is capped at 100, and the
// grade is bucketed deterministically.
func (r *Rubric) Finalize(sub Subscores, category, reasoning string) model.ScoreResult {
	industry := sanitize(sub.IndustryFit)
	role := sanitize(sub.RoleFit)
	size := sanitize(sub.CompanySizeFit)
	decision := sanitize(sub.DecisionMaker)

	total := industry*r.Weights.IndustryFit/100 +
		role*r.Weights.RoleFit/100 +
		size*r.Weights.CompanySizeFit/100 +
		decision*r.Weights.DecisionMaker/100
	total = math.Round(total*100) / 100

	pct := math.Min(100, total*10)

	return model.ScoreResult{
		IndustryFit:    industry,
		RoleFit:        role,
		CompanySizeFit: size,
		DecisionMaker:  decision,
		TotalScore:     total,
		Percentage:     pct,
		Grade:          model.GradeFor(pct),
		Category:       category,
		Reasoning:      reasoning,
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 10 {
		return neutralScore
	}
	return v
}
