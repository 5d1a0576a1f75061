package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/claude"
)

const scoringPromptTemplate = `You are an ICP (Ideal Customer Profile) evaluator.

Assess how well this profile matches the "%s" rubric using the structured fields available.

Profile Data:
%s

Target industries: %s
Target roles: %s
Target company sizes: %s

Scoring Criteria (each 0-10):
- industry_fit: match between companyIndustry and the target industries
- role_fit: match between jobTitle or headline and the target roles
- company_size_fit: match between companySize and the target size ranges
- decision_maker: seniority, functions, or leadership keywords

Instructions:
- Use strict logic; if a match is weak or unclear, score it low
- Output ONLY valid JSON (no extra explanation, markdown, or text)

Output Format:
{
    "industry_fit": <0-10>,
    "role_fit": <0-10>,
    "company_size_fit": <0-10>,
    "decision_maker": <0-10>,
    "icp_category": "<best-fit category or none>",
    "reasoning": "Brief reasoning based on the fields provided"
}`

// ClaudeScorer asks Claude to evaluate a profile against the rubric. The
// model's sub-scores are validated and re-weighted locally; its total is
// never trusted.
type ClaudeScorer struct {
	client claude.Client
	model  string
	rubric *Rubric
	retry  resilience.RetryConfig
}

// NewClaudeScorer creates an AI oracle.
func NewClaudeScorer(client claude.Client, modelID string, rubric *Rubric) *ClaudeScorer {
	if rubric == nil {
		rubric = DefaultRubric()
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("anthropic", "score")
	return &ClaudeScorer{client: client, model: modelID, rubric: rubric, retry: retry}
}

// Score implements Oracle. Any failure (transport, malformed JSON) is
// returned as an error; the pipeline substitutes a neutral result.
func (s *ClaudeScorer) Score(ctx context.Context, p model.LeadProfile) (model.ScoreResult, error) {
	profileJSON, err := json.MarshalIndent(profileForAnalysis(p), "", "  ")
	if err != nil {
		return model.ScoreResult{}, eris.Wrap(err, "scoring: marshal profile")
	}

	prompt := fmt.Sprintf(scoringPromptTemplate,
		s.rubric.Name,
		profileJSON,
		strings.Join(s.rubric.TargetIndustries, ", "),
		strings.Join(s.rubric.TargetRoles, ", "),
		strings.Join(s.rubric.CompanySizeRanges, ", "),
	)

	temperature := 0.0
	text, err := resilience.Do(ctx, s.retry, func(ctx context.Context) (string, error) {
		return s.client.Complete(ctx, claude.Request{
			Model:       s.model,
			MaxTokens:   1024,
			Prompt:      prompt,
			Temperature: &temperature,
		})
	})
	if err != nil {
		return model.ScoreResult{}, eris.Wrap(err, "scoring: complete")
	}

	result, err := s.parse(text)
	if err != nil {
		zap.L().Warn("scoring: unparseable model output",
			zap.String("profile", p.LinkedInURL),
			zap.Error(err),
		)
		return model.ScoreResult{}, err
	}
	return result, nil
}

// profileForAnalysis selects the fields worth showing the model, eliding
// empties to cut prompt noise.
func profileForAnalysis(p model.LeadProfile) map[string]any {
	fields := map[string]any{
		"fullName":             p.FullName,
		"headline":             p.Headline,
		"jobTitle":             p.JobTitle,
		"companyName":          p.CompanyName,
		"companyIndustry":      p.CompanyIndustry,
		"companySize":          p.CompanySize,
		"location":             p.Location,
		"seniority":            p.Seniority,
		"functions":            strings.Join(p.Functions, ", "),
		"departments":          strings.Join(p.Departments, ", "),
		"companyWebsite":       p.CompanyWebsite,
		"companyDomain":        p.CompanyDomain,
		"workExperienceMonths": p.WorkExperienceMonths,
	}
	if p.CompanyFoundedYear > 0 {
		fields["companyFoundedYear"] = p.CompanyFoundedYear
	}
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
		if n, ok := v.(int); ok && n == 0 {
			delete(fields, k)
		}
	}
	return fields
}

func (s *ClaudeScorer) parse(text string) (model.ScoreResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return model.ScoreResult{}, eris.Wrap(err, "scoring: parse model output")
	}

	// Some prompts produce company_maturity_fit instead of company_size_fit.
	if _, ok := raw["company_size_fit"]; !ok {
		if v, ok := raw["company_maturity_fit"]; ok {
			raw["company_size_fit"] = v
		}
	}

	sub := Subscores{
		IndustryFit:    numField(raw, "industry_fit"),
		RoleFit:        numField(raw, "role_fit"),
		CompanySizeFit: numField(raw, "company_size_fit"),
		DecisionMaker:  numField(raw, "decision_maker"),
	}
	category, _ := raw["icp_category"].(string)
	reasoning, _ := raw["reasoning"].(string)

	return s.rubric.Finalize(sub, category, reasoning), nil
}

// numField extracts a numeric field; anything missing or non-numeric
// comes back out of range so Finalize substitutes the neutral score.
func numField(raw map[string]any, key string) float64 {
	v, ok := raw[key]
	if !ok {
		return -1
	}
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return -1
		}
		return f
	default:
		return -1
	}
}
