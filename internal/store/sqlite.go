package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements LeadStore using modernc.org/sqlite. It is the
// default for local runs where no Postgres DSN is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                     TEXT PRIMARY KEY,
	linkedin_url           TEXT NOT NULL UNIQUE,
	full_name              TEXT NOT NULL DEFAULT '',
	first_name             TEXT NOT NULL DEFAULT '',
	last_name              TEXT NOT NULL DEFAULT '',
	headline               TEXT NOT NULL DEFAULT '',
	about                  TEXT NOT NULL DEFAULT '',
	email                  TEXT NOT NULL DEFAULT '',
	email_status           TEXT NOT NULL DEFAULT '',
	photo_url              TEXT NOT NULL DEFAULT '',
	job_title              TEXT NOT NULL DEFAULT '',
	seniority              TEXT NOT NULL DEFAULT '',
	departments            TEXT,
	functions              TEXT,
	location               TEXT NOT NULL DEFAULT '',
	city                   TEXT NOT NULL DEFAULT '',
	state                  TEXT NOT NULL DEFAULT '',
	country                TEXT NOT NULL DEFAULT '',
	company_name           TEXT NOT NULL DEFAULT '',
	company_website        TEXT NOT NULL DEFAULT '',
	company_linkedin       TEXT NOT NULL DEFAULT '',
	company_phone          TEXT NOT NULL DEFAULT '',
	company_industry       TEXT NOT NULL DEFAULT '',
	company_size           TEXT NOT NULL DEFAULT '',
	company_domain         TEXT NOT NULL DEFAULT '',
	company_founded_year   INTEGER,
	work_experience_months INTEGER,
	icp_score              REAL,
	icp_percentage         REAL,
	icp_grade              TEXT NOT NULL DEFAULT '',
	icp_breakdown          TEXT,
	source                 TEXT NOT NULL DEFAULT '',
	scraped_at             DATETIME,
	created_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_icp_grade ON leads(icp_grade);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_leads_icp_percentage ON leads(icp_percentage DESC);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC);
`

var sqliteInsertSQL = func() string {
	cols := append([]string{"id"}, insertColumns()...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf(
		"INSERT INTO leads (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		placeholders,
	)
}()

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveLeads mirrors the Postgres gateway's per-row accounting. SQLite
// reports unique violations as text, so detection is by message.
func (s *SQLiteStore) SaveLeads(ctx context.Context, leads []model.LeadProfile) (*SaveReport, error) {
	report := &SaveReport{Total: len(leads)}
	skipped := make(map[string]struct{})

	for i := range leads {
		lead := &leads[i]
		for _, f := range skippedExtras(lead) {
			skipped[f] = struct{}{}
		}

		args := append([]any{uuid.New().String()}, insertValues(lead)...)
		_, err := s.db.ExecContext(ctx, sqliteInsertSQL, args...)
		if err == nil {
			report.Successful++
			continue
		}
		if isSQLiteUniqueViolation(err) {
			report.Duplicates++
			continue
		}
		report.Failed++
		zap.L().Warn("lead insert failed",
			zap.String("linkedin_url", lead.LinkedInURL),
			zap.Error(err),
		)
	}

	for f := range skipped {
		report.SkippedFields = append(report.SkippedFields, f)
	}
	sort.Strings(report.SkippedFields)
	return report, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter Filter) ([]model.LeadProfile, error) {
	query := `SELECT ` + strings.Join(insertColumns(), ", ") + `, created_at FROM leads WHERE 1=1`
	args := []any{}

	if filter.Grade != "" {
		query += ` AND icp_grade = ?`
		args = append(args, filter.Grade)
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	if filter.MinPercentage > 0 {
		query += ` AND icp_percentage >= ?`
		args = append(args, filter.MinPercentage)
	}
	query += ` ORDER BY icp_percentage DESC, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.LeadProfile
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func isSQLiteUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
