package store

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// column maps one canonical profile field onto its destination column.
// Numeric columns receive NULL, never an empty string, when the profile
// has no value; string columns store "".
type column struct {
	name    string
	numeric bool
	value   func(p *model.LeadProfile) any
}

var leadColumns = []column{
	{name: "linkedin_url", value: func(p *model.LeadProfile) any { return p.LinkedInURL }},
	{name: "full_name", value: func(p *model.LeadProfile) any { return p.FullName }},
	{name: "first_name", value: func(p *model.LeadProfile) any { return p.FirstName }},
	{name: "last_name", value: func(p *model.LeadProfile) any { return p.LastName }},
	{name: "headline", value: func(p *model.LeadProfile) any { return p.Headline }},
	{name: "about", value: func(p *model.LeadProfile) any { return p.About }},
	{name: "email", value: func(p *model.LeadProfile) any { return p.Email }},
	{name: "email_status", value: func(p *model.LeadProfile) any { return p.EmailStatus }},
	{name: "photo_url", value: func(p *model.LeadProfile) any { return p.PhotoURL }},
	{name: "job_title", value: func(p *model.LeadProfile) any { return p.JobTitle }},
	{name: "seniority", value: func(p *model.LeadProfile) any { return p.Seniority }},
	{name: "departments", value: func(p *model.LeadProfile) any { return jsonList(p.Departments) }},
	{name: "functions", value: func(p *model.LeadProfile) any { return jsonList(p.Functions) }},
	{name: "location", value: func(p *model.LeadProfile) any { return p.Location }},
	{name: "city", value: func(p *model.LeadProfile) any { return p.City }},
	{name: "state", value: func(p *model.LeadProfile) any { return p.State }},
	{name: "country", value: func(p *model.LeadProfile) any { return p.Country }},
	{name: "company_name", value: func(p *model.LeadProfile) any { return p.CompanyName }},
	{name: "company_website", value: func(p *model.LeadProfile) any { return p.CompanyWebsite }},
	{name: "company_linkedin", value: func(p *model.LeadProfile) any { return p.CompanyLinkedIn }},
	{name: "company_phone", value: func(p *model.LeadProfile) any { return p.CompanyPhone }},
	{name: "company_industry", value: func(p *model.LeadProfile) any { return p.CompanyIndustry }},
	{name: "company_size", value: func(p *model.LeadProfile) any { return p.CompanySize }},
	{name: "company_domain", value: func(p *model.LeadProfile) any { return p.CompanyDomain }},
	{name: "company_founded_year", numeric: true, value: func(p *model.LeadProfile) any { return nilIfZero(p.CompanyFoundedYear) }},
	{name: "work_experience_months", numeric: true, value: func(p *model.LeadProfile) any { return nilIfZero(p.WorkExperienceMonths) }},
	{name: "icp_score", numeric: true, value: func(p *model.LeadProfile) any { return scoreOrNil(p, p.ICPScore) }},
	{name: "icp_percentage", numeric: true, value: func(p *model.LeadProfile) any { return scoreOrNil(p, p.ICPPercentage) }},
	{name: "icp_grade", value: func(p *model.LeadProfile) any { return p.ICPGrade }},
	{name: "icp_breakdown", value: func(p *model.LeadProfile) any { return jsonBreakdown(p.ICPBreakdown) }},
	{name: "source", value: func(p *model.LeadProfile) any { return p.Source }},
	{name: "scraped_at", value: func(p *model.LeadProfile) any { return p.ScrapedAt }},
}

// schemaColumns is the destination column set, used to decide which
// provider extras have nowhere to go.
var schemaColumns = func() map[string]struct{} {
	set := make(map[string]struct{}, len(leadColumns))
	for _, c := range leadColumns {
		set[c.name] = struct{}{}
	}
	return set
}()

func insertColumns() []string {
	names := make([]string, len(leadColumns))
	for i, c := range leadColumns {
		names[i] = c.name
	}
	return names
}

func insertValues(p *model.LeadProfile) []any {
	vals := make([]any, len(leadColumns))
	for i, c := range leadColumns {
		vals[i] = c.value(p)
	}
	return vals
}

// skippedExtras lists the profile's extra fields, snake_cased, that do
// not exist in the schema and therefore cannot be stored.
func skippedExtras(p *model.LeadProfile) []string {
	var skipped []string
	for k := range p.Extra {
		name := snakeCase(k)
		if _, ok := schemaColumns[name]; !ok {
			skipped = append(skipped, name)
		}
	}
	sort.Strings(skipped)
	return skipped
}

func nilIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

// scoreOrNil keeps score columns NULL for unscored profiles so a stored
// zero always means "scored zero".
func scoreOrNil(p *model.LeadProfile, v float64) any {
	if p.ICPBreakdown == nil {
		return nil
	}
	return v
}

func jsonList(items []string) any {
	if len(items) == 0 {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	return string(data)
}

func jsonBreakdown(s *model.ScoreResult) any {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	return string(data)
}

// snakeCase converts camelCase provider field names to column naming.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
