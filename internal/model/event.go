package model

import "time"

// Event types emitted over the lifetime of a generation session.
const (
	EventStarted            = "started"
	EventSearchStarted      = "search_started"
	EventProfilesFound      = "profiles_found"
	EventEnrichmentStarted  = "enrichment_started"
	EventEnrichmentProgress = "enrichment_progress"
	EventProfileEnriched    = "profile_enriched"
	EventEnrichmentDone     = "enrichment_completed"
	EventScoringStarted     = "scoring_started"
	EventLeadScored         = "lead_scored"
	EventScoringCompleted   = "scoring_completed"
	EventSavingStarted      = "saving_started"
	EventSavingCompleted    = "saving_completed"
	EventGenerationDone     = "generation_completed"
	EventError              = "error"
)

// Event is one progress update within a session.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Terminal reports whether an event type ends its session.
func Terminal(eventType string) bool {
	return eventType == EventGenerationDone || eventType == EventError
}
