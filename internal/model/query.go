package model

import "fmt"

// Method selects the search provider used for a generation run.
type Method string

const (
	// MethodApollo runs a structured people search against Apollo.io.
	MethodApollo Method = "apollo"
	// MethodGoogle finds LinkedIn profile URLs via Google Custom Search
	// and enriches them through the profile scraper.
	MethodGoogle Method = "google"
)

// Query describes one lead-generation request.
type Query struct {
	Method       Method   `json:"method" yaml:"method"`
	JobTitles    []string `json:"job_titles" yaml:"job_titles"`
	Locations    []string `json:"locations" yaml:"locations"`
	Industries   []string `json:"industries,omitempty" yaml:"industries,omitempty"`
	CompanySizes []string `json:"company_sizes,omitempty" yaml:"company_sizes,omitempty"`
	Limit        int      `json:"limit" yaml:"limit"`
}

// ValidationError reports a query that cannot start a run. It is returned
// synchronously before any provider call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s %s", e.Field, e.Reason)
}

// Validate checks the required query fields. Method must be a known
// provider and jobTitles/locations must be non-empty.
func (q Query) Validate() error {
	switch q.Method {
	case MethodApollo, MethodGoogle:
	case "":
		return &ValidationError{Field: "method", Reason: "is required"}
	default:
		return &ValidationError{Field: "method", Reason: fmt.Sprintf("%q is not a supported provider", q.Method)}
	}
	if len(q.JobTitles) == 0 {
		return &ValidationError{Field: "jobTitles", Reason: "must contain at least one title"}
	}
	if len(q.Locations) == 0 {
		return &ValidationError{Field: "locations", Reason: "must contain at least one location"}
	}
	return nil
}
