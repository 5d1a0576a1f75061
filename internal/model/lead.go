package model

import "time"

// RawProfile is a provider-shaped record exactly as returned by a search
// or enrichment API. It is normalized into a LeadProfile before anything
// downstream touches it and is never persisted directly.
type RawProfile = map[string]any

// LeadProfile is the canonical prospect record. The LinkedIn URL is the
// natural key used for deduplication at the persistence layer.
type LeadProfile struct {
	LinkedInURL string `json:"linkedin_url"`
	FullName    string `json:"full_name,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Headline    string `json:"headline,omitempty"`
	About       string `json:"about,omitempty"`

	Email       string `json:"email,omitempty"`
	EmailStatus string `json:"email_status,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`

	JobTitle    string   `json:"job_title,omitempty"`
	Seniority   string   `json:"seniority,omitempty"`
	Departments []string `json:"departments,omitempty"`
	Functions   []string `json:"functions,omitempty"`

	Location string `json:"location,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`

	CompanyName        string `json:"company_name,omitempty"`
	CompanyWebsite     string `json:"company_website,omitempty"`
	CompanyLinkedIn    string `json:"company_linkedin,omitempty"`
	CompanyPhone       string `json:"company_phone,omitempty"`
	CompanyIndustry    string `json:"company_industry,omitempty"`
	CompanySize        string `json:"company_size,omitempty"`
	CompanyDomain      string `json:"company_domain,omitempty"`
	CompanyFoundedYear int    `json:"company_founded_year,omitempty"`

	WorkExperienceMonths int `json:"work_experience_months,omitempty"`

	ICPScore      float64      `json:"icp_score,omitempty"`
	ICPPercentage float64      `json:"icp_percentage,omitempty"`
	ICPGrade      string       `json:"icp_grade,omitempty"`
	ICPBreakdown  *ScoreResult `json:"icp_breakdown,omitempty"`

	// Source tags which adapter produced the record ("apollo", "google").
	Source string `json:"source,omitempty"`

	ScrapedAt time.Time `json:"scraped_at,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Extra carries provider fields with no canonical slot. The persistence
	// gateway drops any that do not exist in the destination schema and
	// reports them as skipped, so schema drift stays visible.
	Extra map[string]any `json:"extra,omitempty"`
}

// ApplyScore copies a score result onto the profile's ICP fields.
func (p *LeadProfile) ApplyScore(s ScoreResult) {
	p.ICPScore = s.TotalScore
	p.ICPPercentage = s.Percentage
	p.ICPGrade = s.Grade
	breakdown := s
	p.ICPBreakdown = &breakdown
}
