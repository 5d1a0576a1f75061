package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/provider"
	"github.com/sells-group/leadgen-cli/internal/session"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// stubAdapter returns canned profiles for handler tests.
type stubAdapter struct {
	profiles []model.LeadProfile
}

func (s *stubAdapter) Name() string { return "apollo" }
func (s *stubAdapter) Scored() bool { return true }

func (s *stubAdapter) Search(_ context.Context, _ model.Query, em provider.Emitter) ([]model.LeadProfile, error) {
	em.Emit(model.EventProfilesFound, fmt.Sprintf("Found %d prospects", len(s.profiles)), map[string]any{
		"count": len(s.profiles),
	})
	return s.profiles, nil
}

func newTestEnv(t *testing.T, profiles []model.LeadProfile) *pipelineEnv {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	tracker := session.NewTracker(0)
	gen := pipeline.NewGenerator(pipeline.Options{},
		map[model.Method]provider.SearchAdapter{
			model.MethodApollo: &stubAdapter{profiles: profiles},
		}, nil, st, tracker)

	return &pipelineEnv{Store: st, Tracker: tracker, Generator: gen}
}

func TestServe_Health(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Capabilities(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/capabilities", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"methods":["apollo"]}`, rec.Body.String())
}

func TestServe_GenerateLeads_InvalidBody(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate-leads", strings.NewReader("{broken")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_GenerateLeads_InvalidQuery(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	body := `{"method":"apollo","job_titles":[],"locations":["Texas"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate-leads", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobTitles")
}

func TestServe_GenerateLeads_AcceptedAndPollable(t *testing.T) {
	profiles := []model.LeadProfile{{
		LinkedInURL: "https://linkedin.com/in/ada",
		FullName:    "Ada Lovelace",
		Source:      "apollo",
	}}
	env := newTestEnv(t, profiles)
	router := newRouter(env)

	body := `{"method":"apollo","job_titles":["VP Operations"],"locations":["Texas"],"limit":5}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate-leads", strings.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted struct {
		Status    string `json:"status"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, "accepted", accepted.Status)
	require.NotEmpty(t, accepted.SessionID)

	// Poll until the background run completes.
	deadline := time.After(5 * time.Second)
	for {
		statusRec := httptest.NewRecorder()
		router.ServeHTTP(statusRec, httptest.NewRequest(http.MethodGet,
			"/api/generate-leads/status?session_id="+accepted.SessionID+"&history=true", nil))
		require.Equal(t, http.StatusOK, statusRec.Code)

		var snap session.Snapshot
		require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &snap))
		if snap.Completed {
			assert.False(t, snap.Active)
			assert.Equal(t, model.EventGenerationDone, snap.Current.Type)
			assert.NotEmpty(t, snap.History)
			break
		}
		select {
		case <-deadline:
			t.Fatal("run did not complete in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// The generated lead is now queryable.
	leadsRec := httptest.NewRecorder()
	router.ServeHTTP(leadsRec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	require.Equal(t, http.StatusOK, leadsRec.Code)

	var listing struct {
		Count int                 `json:"count"`
		Leads []model.LeadProfile `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(leadsRec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)
	assert.Equal(t, "Ada Lovelace", listing.Leads[0].FullName)
}

func TestServe_Status_MissingSessionID(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generate-leads/status", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_Status_UnknownSession(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generate-leads/status?session_id=nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_Leads_BadParams(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads?min_percentage=high", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads?limit=lots", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_Leads_EmptyIsArray(t *testing.T) {
	router := newRouter(newTestEnv(t, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"leads":[]}`, rec.Body.String())
}
