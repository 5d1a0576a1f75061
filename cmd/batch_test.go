package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBatchFile(t *testing.T) {
	path := writeBatchFile(t, `
queries:
  - method: apollo
    job_titles: ["Operations Manager"]
    locations: ["Texas"]
    limit: 10
  - method: google
    job_titles: ["Plant Manager"]
    locations: ["Ohio"]
`)

	queries, err := loadBatchFile(path)
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, model.MethodApollo, queries[0].Method)
	assert.Equal(t, 10, queries[0].Limit)
	assert.Equal(t, model.MethodGoogle, queries[1].Method)
}

func TestLoadBatchFile_MissingFile(t *testing.T) {
	_, err := loadBatchFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadBatchFile_Empty(t *testing.T) {
	path := writeBatchFile(t, "queries: []\n")
	_, err := loadBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no queries")
}

func TestLoadBatchFile_InvalidQuery(t *testing.T) {
	path := writeBatchFile(t, `
queries:
  - method: apollo
    locations: ["Texas"]
`)
	_, err := loadBatchFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query 1")
}

func TestProcessBatch_RunsAllQueries(t *testing.T) {
	env := newTestEnv(t, []model.LeadProfile{{
		LinkedInURL: "https://linkedin.com/in/ada",
		FullName:    "Ada Lovelace",
		Source:      "apollo",
	}})

	queries := []model.Query{
		{Method: model.MethodApollo, JobTitles: []string{"COO"}, Locations: []string{"Texas"}},
		{Method: model.MethodApollo, JobTitles: []string{"CEO"}, Locations: []string{"Ohio"}},
		// No google adapter registered in the test env, so this one fails
		// without sinking the batch.
		{Method: model.MethodGoogle, JobTitles: []string{"CTO"}, Locations: []string{"Utah"}},
	}

	err := processBatch(context.Background(), env.Generator, queries, 2)
	require.NoError(t, err)

	// Both apollo queries saved the same profile; one insert, one duplicate.
	leads, err := env.Store.ListLeads(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}
