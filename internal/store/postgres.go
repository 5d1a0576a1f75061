package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// uniqueViolation is the SQLSTATE for duplicate-key errors.
const uniqueViolation = "23505"

// PostgresStore implements LeadStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
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
	departments            JSONB,
	functions              JSONB,
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
	icp_score              DOUBLE PRECISION,
	icp_percentage         DOUBLE PRECISION,
	icp_grade              TEXT NOT NULL DEFAULT '',
	icp_breakdown          JSONB,
	source                 TEXT NOT NULL DEFAULT '',
	scraped_at             TIMESTAMPTZ,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_icp_grade ON leads(icp_grade);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_leads_icp_percentage ON leads(icp_percentage DESC);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC);
`

// leadInsertSQL is built once from the shared mapping table so the
// insert and the mapping can never drift apart.
var leadInsertSQL = func() string {
	cols := append([]string{"id"}, insertColumns()...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO leads (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
}()

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveLeads inserts each profile individually. A unique violation on the
// LinkedIn URL counts as a duplicate, any other row error counts as a
// failure, and neither stops the rest of the batch.
func (s *PostgresStore) SaveLeads(ctx context.Context, leads []model.LeadProfile) (*SaveReport, error) {
	report := &SaveReport{Total: len(leads)}
	skipped := make(map[string]struct{})

	for i := range leads {
		lead := &leads[i]
		for _, f := range skippedExtras(lead) {
			skipped[f] = struct{}{}
		}

		args := append([]any{uuid.New().String()}, insertValues(lead)...)
		_, err := s.pool.Exec(ctx, leadInsertSQL, args...)
		if err == nil {
			report.Successful++
			continue
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
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

func (s *PostgresStore) ListLeads(ctx context.Context, filter Filter) ([]model.LeadProfile, error) {
	query := `SELECT ` + strings.Join(insertColumns(), ", ") + `, created_at FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Grade != "" {
		query += fmt.Sprintf(` AND icp_grade = $%d`, argIdx)
		args = append(args, filter.Grade)
		argIdx++
	}
	if filter.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, filter.Source)
		argIdx++
	}
	if filter.MinPercentage > 0 {
		query += fmt.Sprintf(` AND icp_percentage >= $%d`, argIdx)
		args = append(args, filter.MinPercentage)
		argIdx++
	}
	query += ` ORDER BY icp_percentage DESC NULLS LAST, created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.LeadProfile
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

// rowScanner is satisfied by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLead reads one row in insertColumns order plus created_at.
func scanLead(row rowScanner) (model.LeadProfile, error) {
	var p model.LeadProfile
	var departments, functions, breakdown sql.NullString
	var foundedYear, expMonths sql.NullInt64
	var icpScore, icpPct sql.NullFloat64
	var scrapedAt sql.NullTime

	err := row.Scan(
		&p.LinkedInURL, &p.FullName, &p.FirstName, &p.LastName,
		&p.Headline, &p.About, &p.Email, &p.EmailStatus, &p.PhotoURL,
		&p.JobTitle, &p.Seniority, &departments, &functions,
		&p.Location, &p.City, &p.State, &p.Country,
		&p.CompanyName, &p.CompanyWebsite, &p.CompanyLinkedIn,
		&p.CompanyPhone, &p.CompanyIndustry, &p.CompanySize, &p.CompanyDomain,
		&foundedYear, &expMonths, &icpScore, &icpPct,
		&p.ICPGrade, &breakdown, &p.Source, &scrapedAt, &p.CreatedAt,
	)
	if err != nil {
		return p, err
	}

	if departments.Valid {
		_ = json.Unmarshal([]byte(departments.String), &p.Departments)
	}
	if functions.Valid {
		_ = json.Unmarshal([]byte(functions.String), &p.Functions)
	}
	if breakdown.Valid {
		var s model.ScoreResult
		if err := json.Unmarshal([]byte(breakdown.String), &s); err == nil {
			p.ICPBreakdown = &s
		}
	}
	p.CompanyFoundedYear = int(foundedYear.Int64)
	p.WorkExperienceMonths = int(expMonths.Int64)
	p.ICPScore = icpScore.Float64
	p.ICPPercentage = icpPct.Float64
	if scrapedAt.Valid {
		p.ScrapedAt = scrapedAt.Time
	}
	return p, nil
}

