// Package pipeline orchestrates a lead-generation run: validate the
// query, dispatch to a search adapter, score what came back, persist,
// and narrate the whole thing as session events.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/provider"
	"github.com/sells-group/leadgen-cli/internal/scoring"
	"github.com/sells-group/leadgen-cli/internal/session"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// Summary statuses.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Summary is the synchronous result of a generation run.
type Summary struct {
	Status    string              `json:"status"`
	Message   string              `json:"message,omitempty"`
	Count     int                 `json:"count"`
	Leads     []model.LeadProfile `json:"leads,omitempty"`
	SaveStats *store.SaveReport   `json:"save_stats,omitempty"`
	SessionID string              `json:"session_id,omitempty"`
}

// Options tunes run behavior.
type Options struct {
	// DefaultLimit applies when the query does not set one.
	DefaultLimit int
	// RunTimeout bounds detached background runs started via Start.
	RunTimeout time.Duration
}

// Generator runs the lead-generation pipeline. All collaborators are
// injected; the generator owns no globals.
type Generator struct {
	opts     Options
	adapters map[model.Method]provider.SearchAdapter
	oracle   scoring.Oracle
	store    store.LeadStore
	tracker  *session.Tracker
}

// NewGenerator creates a generator. oracle may be nil when every adapter
// returns pre-scored profiles. tracker may be nil for one-shot CLI runs.
func NewGenerator(opts Options, adapters map[model.Method]provider.SearchAdapter, oracle scoring.Oracle, leadStore store.LeadStore, tracker *session.Tracker) *Generator {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 25
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 30 * time.Minute
	}
	return &Generator{
		opts:     opts,
		adapters: adapters,
		oracle:   oracle,
		store:    leadStore,
		tracker:  tracker,
	}
}

// Methods lists the providers this generator can dispatch to, sorted for
// stable API output.
func (g *Generator) Methods() []model.Method {
	methods := make([]model.Method, 0, len(g.adapters))
	for m := range g.adapters {
		methods = append(methods, m)
	}
	slices.Sort(methods)
	return methods
}

// trackerEmitter bridges adapter events onto one tracked session.
type trackerEmitter struct {
	tracker *session.Tracker
	id      string
}

func (e trackerEmitter) Emit(eventType, message string, payload map[string]any) {
	e.tracker.Emit(e.id, eventType, message, payload)
}

func (g *Generator) emitter(sessionID string) provider.Emitter {
	if g.tracker == nil || sessionID == "" {
		return provider.NopEmitter{}
	}
	return trackerEmitter{tracker: g.tracker, id: sessionID}
}

// Generate runs the pipeline synchronously. It never returns a Go error:
// every failure mode ends in an error-status Summary and, when a session
// is attached, a terminal error event. Partial progress stays persisted;
// re-running the same query is safe because saving deduplicates.
func (g *Generator) Generate(ctx context.Context, q model.Query, sessionID string) *Summary {
	log := zap.L().With(
		zap.String("session_id", sessionID),
		zap.String("method", string(q.Method)),
	)
	// The run owns its session; registering here means direct callers
	// get a pollable session without going through Start.
	if g.tracker != nil && sessionID != "" {
		g.tracker.Create(sessionID)
	}
	em := g.emitter(sessionID)

	if err := q.Validate(); err != nil {
		log.Warn("query rejected", zap.Error(err))
		return g.fail(em, sessionID, err.Error())
	}
	if q.Limit <= 0 {
		q.Limit = g.opts.DefaultLimit
	}

	em.Emit(model.EventStarted, "Starting lead generation", map[string]any{
		"method": string(q.Method),
		"limit":  q.Limit,
	})

	adapter, ok := g.adapters[q.Method]
	if !ok {
		return g.fail(em, sessionID, fmt.Sprintf("no adapter configured for method %q", q.Method))
	}

	leads, err := adapter.Search(ctx, q, em)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		return g.fail(em, sessionID, "search failed: "+err.Error())
	}
	if len(leads) == 0 {
		em.Emit(model.EventGenerationDone, "No matching leads found", map[string]any{"count": 0})
		return &Summary{Status: StatusCompleted, Message: "no matching leads found", SessionID: sessionID}
	}

	if !adapter.Scored() && g.oracle != nil {
		g.scoreAll(ctx, leads, em, log)
	}

	em.Emit(model.EventSavingStarted, fmt.Sprintf("Saving %d leads", len(leads)), map[string]any{
		"count": len(leads),
	})
	report, err := g.store.SaveLeads(ctx, leads)
	if err != nil {
		log.Error("persistence failed", zap.Error(err))
		return g.fail(em, sessionID, "saving failed: "+err.Error())
	}
	em.Emit(model.EventSavingCompleted, fmt.Sprintf("Saved %d new leads, %d duplicates", report.Successful, report.Duplicates), map[string]any{
		"successful": report.Successful,
		"duplicates": report.Duplicates,
		"failed":     report.Failed,
	})

	em.Emit(model.EventGenerationDone, fmt.Sprintf("Generated %d leads", len(leads)), map[string]any{
		"count": len(leads),
	})
	log.Info("generation run finished",
		zap.Int("count", len(leads)),
		zap.Int("saved", report.Successful),
		zap.Int("duplicates", report.Duplicates),
	)
	return &Summary{
		Status:    StatusCompleted,
		Count:     len(leads),
		Leads:     leads,
		SaveStats: report,
		SessionID: sessionID,
	}
}

// scoreAll scores profiles sequentially. A failing profile gets the
// neutral score and the batch continues.
func (g *Generator) scoreAll(ctx context.Context, leads []model.LeadProfile, em provider.Emitter, log *zap.Logger) {
	em.Emit(model.EventScoringStarted, fmt.Sprintf("Scoring %d leads", len(leads)), map[string]any{
		"count": len(leads),
	})
	for i := range leads {
		lead := &leads[i]
		res, err := g.oracle.Score(ctx, *lead)
		if err != nil {
			log.Warn("scoring failed, recording neutral score",
				zap.String("linkedin_url", lead.LinkedInURL),
				zap.Error(err),
			)
			res = scoring.Neutral("scoring unavailable: " + err.Error())
		}
		lead.ApplyScore(res)
		em.Emit(model.EventLeadScored, fmt.Sprintf("Scored %s: %s", lead.FullName, res.Grade), map[string]any{
			"linkedin_url": lead.LinkedInURL,
			"grade":        res.Grade,
			"percentage":   res.Percentage,
		})
	}
	em.Emit(model.EventScoringCompleted, "Scoring finished", map[string]any{
		"count": len(leads),
	})
}

func (g *Generator) fail(em provider.Emitter, sessionID, message string) *Summary {
	em.Emit(model.EventError, message, nil)
	return &Summary{Status: StatusError, Message: message, SessionID: sessionID}
}

// Start launches a detached background run and returns its session id
// for polling. The run gets its own timeout-bounded context; callers
// observe progress through the tracker, not a return value.
func (g *Generator) Start(q model.Query) string {
	id := uuid.New().String()
	g.tracker.Create(id)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), g.opts.RunTimeout)
		defer cancel()
		g.Generate(ctx, q, id)
	}()

	return id
}
