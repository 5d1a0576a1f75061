// Package store persists generated leads. Two gateways implement the
// same interface: Postgres for deployments and SQLite for local runs.
// Saving is idempotent on the lead's LinkedIn URL; replaying a batch
// counts duplicates instead of erroring.
package store

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Filter specifies criteria for listing saved leads.
type Filter struct {
	Grade         string  `json:"grade,omitempty"`
	Source        string  `json:"source,omitempty"`
	MinPercentage float64 `json:"min_percentage,omitempty"`
	Limit         int     `json:"limit,omitempty"`
	Offset        int     `json:"offset,omitempty"`
}

// SaveReport accounts for every profile in a batch: each one lands in
// exactly one of the three outcome counters.
type SaveReport struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`

	// SkippedFields lists provider fields that had no destination column,
	// deduplicated across the batch. Non-empty means schema drift.
	SkippedFields []string `json:"skipped_fields,omitempty"`
}

// LeadStore defines the persistence interface for generated leads.
type LeadStore interface {
	// SaveLeads inserts a batch. Individual row failures never abort the
	// batch; the report says what happened to each profile.
	SaveLeads(ctx context.Context, leads []model.LeadProfile) (*SaveReport, error)

	ListLeads(ctx context.Context, filter Filter) ([]model.LeadProfile, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
