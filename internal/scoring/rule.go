package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// RuleScorer evaluates profiles with deterministic keyword heuristics.
// It never fails: thin profiles simply score low.
type RuleScorer struct {
	rubric *Rubric
}

// NewRuleScorer creates a rule-based oracle for the given rubric.
func NewRuleScorer(rubric *Rubric) *RuleScorer {
	if rubric == nil {
		rubric = DefaultRubric()
	}
	return &RuleScorer{rubric: rubric}
}

// Score implements Oracle.
func (s *RuleScorer) Score(_ context.Context, p model.LeadProfile) (model.ScoreResult, error) {
	sub := Subscores{
		IndustryFit:    s.scoreIndustry(p),
		RoleFit:        s.scoreRole(p),
		CompanySizeFit: s.scoreCompanySize(p),
		DecisionMaker:  s.scoreDecisionMaker(p),
	}
	category := s.category(p, sub)
	reasoning := s.reasoning(p, sub)
	return s.rubric.Finalize(sub, category, reasoning), nil
}

func (s *RuleScorer) scoreIndustry(p model.LeadProfile) float64 {
	industry := strings.ToLower(p.CompanyIndustry)
	if industry == "" {
		return 0
	}
	best := 0.0
	for _, target := range s.rubric.TargetIndustries {
		target = strings.ToLower(target)
		if industry == target {
			return 10
		}
		if strings.Contains(industry, target) || strings.Contains(target, industry) {
			best = max(best, 7)
		}
	}
	return best
}

func (s *RuleScorer) scoreRole(p model.LeadProfile) float64 {
	title := strings.ToLower(p.JobTitle)
	headline := strings.ToLower(p.Headline)
	if title == "" && headline == "" {
		return 0
	}
	best := 0.0
	for _, target := range s.rubric.TargetRoles {
		target = strings.ToLower(target)
		if strings.Contains(title, target) || strings.Contains(headline, target) {
			return 10
		}
		for _, word := range strings.Fields(target) {
			if strings.Contains(title, word) || strings.Contains(headline, word) {
				best = max(best, 6)
			}
		}
	}
	return best
}

// sizeAliases maps canonical size ranges onto looser descriptions a
// provider might return.
var sizeAliases = map[string][]string{
	"1-10":      {"1-10", "startup", "small"},
	"11-50":     {"11-50", "small"},
	"51-200":    {"51-200", "medium"},
	"201-500":   {"201-500", "medium"},
	"501-1000":  {"501-1000", "large"},
	"1001-5000": {"1001-5000", "large"},
	"5001+":     {"5001+", "enterprise", "large"},
}

func (s *RuleScorer) scoreCompanySize(p model.LeadProfile) float64 {
	size := strings.ToLower(p.CompanySize)
	if size == "" || len(s.rubric.CompanySizeRanges) == 0 {
		return 0
	}
	for _, target := range s.rubric.CompanySizeRanges {
		if strings.Contains(size, strings.ToLower(target)) {
			return 10
		}
		for _, alias := range sizeAliases[target] {
			if strings.Contains(size, alias) {
				return 8
			}
		}
	}
	return 3
}

// Keyword tiers for decision-maker scoring. Executive titles outrank
// manager-level ones.
var (
	executiveKeywords = []string{"chief", "vp", "vice president", "director", "head", "owner", "founder"}
	managerKeywords   = []string{"manager", "lead", "senior", "principal"}
	leadershipOther   = []string{"executive", "supervisor"}
)

func (s *RuleScorer) scoreDecisionMaker(p model.LeadProfile) float64 {
	haystack := strings.ToLower(p.JobTitle + " " + p.Seniority + " " + strings.Join(p.Functions, " "))

	for _, kw := range executiveKeywords {
		if strings.Contains(haystack, kw) {
			return 10
		}
	}
	best := 0.0
	for _, kw := range managerKeywords {
		if strings.Contains(haystack, kw) {
			best = max(best, 7)
		}
	}
	for _, kw := range leadershipOther {
		if strings.Contains(haystack, kw) {
			best = max(best, 5)
		}
	}
	return best
}

func (s *RuleScorer) category(p model.LeadProfile, sub Subscores) string {
	pct := (sub.IndustryFit*s.rubric.Weights.IndustryFit/100 +
		sub.RoleFit*s.rubric.Weights.RoleFit/100 +
		sub.CompanySizeFit*s.rubric.Weights.CompanySizeFit/100 +
		sub.DecisionMaker*s.rubric.Weights.DecisionMaker/100) * 10
	if pct < 50 {
		return "none"
	}

	industry := strings.ToLower(p.CompanyIndustry)
	for name, keywords := range s.rubric.Categories {
		for _, kw := range keywords {
			if strings.Contains(industry, kw) {
				return name
			}
		}
	}
	return "general"
}

func (s *RuleScorer) reasoning(p model.LeadProfile, sub Subscores) string {
	var parts []string

	switch {
	case sub.IndustryFit >= 8:
		parts = append(parts, fmt.Sprintf("Strong industry match with %s", orFallback(p.CompanyIndustry, "target industry")))
	case sub.IndustryFit >= 5:
		parts = append(parts, fmt.Sprintf("Partial industry alignment with %s", orFallback(p.CompanyIndustry, "industry")))
	default:
		parts = append(parts, "Limited industry fit")
	}

	switch {
	case sub.RoleFit >= 8:
		parts = append(parts, fmt.Sprintf("Excellent role match: %s", orFallback(p.JobTitle, "job title")))
	case sub.RoleFit >= 5:
		parts = append(parts, fmt.Sprintf("Good role alignment: %s", orFallback(p.JobTitle, "job title")))
	default:
		parts = append(parts, "Role doesn't strongly align with targets")
	}

	if sub.DecisionMaker >= 8 {
		parts = append(parts, "Likely decision maker")
	}

	return strings.Join(parts, ". ")
}

func orFallback(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
