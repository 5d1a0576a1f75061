// Package provider contains the search and enrichment adapters. Every
// outbound call to a rate-limited API goes through the credential
// rotation loop in rotate.go, and every response body is normalized into
// a single tagged shape in normalize.go before anything downstream sees it.
package provider

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SearchAdapter produces lead profiles from a validated query. Adapters
// degrade to an empty slice on provider trouble; a non-nil error means
// the adapter could not run at all (e.g. unconfigured client).
type SearchAdapter interface {
	// Name identifies the adapter and matches model.Method values.
	Name() string

	// Scored reports whether returned profiles already carry ICP scores.
	// When false the orchestrator runs its own scoring phase.
	Scored() bool

	Search(ctx context.Context, q model.Query, em Emitter) ([]model.LeadProfile, error)
}

// Emitter receives progress events from an adapter. The orchestrator
// bridges it onto the session tracker; adapters never see sessions.
type Emitter interface {
	Emit(eventType, message string, payload map[string]any)
}

// NopEmitter discards all events. Used when a run has no session.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(string, string, map[string]any) {}
