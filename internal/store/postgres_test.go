package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := NewPostgresWithPool(mock)
	return s, mock
}

// anyInsertArgs returns one AnyArg matcher per insert parameter (id plus the
// shared mapping columns), since pgxmock requires the argument count to match.
func anyInsertArgs() []any {
	args := make([]any, len(insertColumns())+1)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func sampleLead(url string) model.LeadProfile {
	p := model.LeadProfile{
		LinkedInURL: url,
		FullName:    "Ada Lovelace",
		JobTitle:    "VP Operations",
		CompanyName: "Acme Industrial",
		Source:      "apollo",
		ScrapedAt:   time.Now().UTC(),
	}
	p.ApplyScore(model.ScoreResult{TotalScore: 8, Percentage: 80, Grade: "A"})
	return p
}

func TestPostgresStore_SaveLeads_CountsEachOutcome(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	// First row inserts, second hits the unique index, third fails outright.
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(anyInsertArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(anyInsertArgs()...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "leads_linkedin_url_key"})
	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(anyInsertArgs()...).
		WillReturnError(&pgconn.PgError{Code: "57014", Message: "statement timeout"})

	report, err := s.SaveLeads(context.Background(), []model.LeadProfile{
		sampleLead("https://linkedin.com/in/ada"),
		sampleLead("https://linkedin.com/in/ada"),
		sampleLead("https://linkedin.com/in/grace"),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveLeads_ReplayIsIdempotent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	lead := sampleLead("https://linkedin.com/in/ada")

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(anyInsertArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	first, err := s.SaveLeads(context.Background(), []model.LeadProfile{lead})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Successful)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(anyInsertArgs()...).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	second, err := s.SaveLeads(context.Background(), []model.LeadProfile{lead})
	require.NoError(t, err)
	assert.Zero(t, second.Successful)
	assert.Equal(t, 1, second.Duplicates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveLeads_ReportsSkippedExtras(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	lead := sampleLead("https://linkedin.com/in/ada")
	lead.Extra = map[string]any{
		"openToWork": true,
		"email":      "duplicate-of-canonical",
	}

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(anyInsertArgs()...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	report, err := s.SaveLeads(context.Background(), []model.LeadProfile{lead})
	require.NoError(t, err)
	// "email" exists in the schema, "openToWork" does not.
	assert.Equal(t, []string{"open_to_work"}, report.SkippedFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveLeads_EmptyBatch(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	report, err := s.SaveLeads(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListLeads_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	cols := append(insertColumns(), "created_at")
	rows := pgxmock.NewRows(cols).AddRow(
		"https://linkedin.com/in/ada", "Ada Lovelace", "Ada", "Lovelace",
		"VP Operations at Acme", "", "ada@acme.com", "verified", "",
		"VP Operations", "vp", nil, nil,
		"Austin, TX, US", "Austin", "TX", "US",
		"Acme Industrial", "", "", "", "machinery", "85", "acme.com",
		int64(1999), int64(42), 8.0, 80.0,
		"A", `{"total_score":8,"percentage":80,"grade":"A"}`, "apollo",
		time.Now().UTC(), time.Now().UTC(),
	)

	mock.ExpectQuery(`SELECT .+ FROM leads WHERE true AND icp_grade = \$1 AND icp_percentage >= \$2`).
		WithArgs("A", 70.0, 50).
		WillReturnRows(rows)

	leads, err := s.ListLeads(context.Background(), Filter{Grade: "A", MinPercentage: 70, Limit: 50})
	require.NoError(t, err)
	require.Len(t, leads, 1)

	lead := leads[0]
	assert.Equal(t, "Ada Lovelace", lead.FullName)
	assert.Equal(t, 1999, lead.CompanyFoundedYear)
	assert.Equal(t, 80.0, lead.ICPPercentage)
	require.NotNil(t, lead.ICPBreakdown)
	assert.Equal(t, "A", lead.ICPBreakdown.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS leads`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
