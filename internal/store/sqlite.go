package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/aggregate"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	query      TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	lead_count INTEGER NOT NULL DEFAULT 0,
	stats      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id       TEXT PRIMARY KEY,
	run_id   TEXT NOT NULL REFERENCES runs(id),
	position INTEGER NOT NULL,
	score    INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT '',
	record   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_query ON runs(query);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run and all of its leads in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, result *aggregate.Result) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	statsJSON, err := json.Marshal(result.Stats)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal stats")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, location, lead_count, stats, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, result.Query, result.Location, len(result.Leads), string(statsJSON), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	for i := range result.Leads {
		lead := &result.Leads[i]
		recordJSON, err := json.Marshal(lead)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: marshal lead %d", i)
		}
		var score int
		var priority string
		if lead.LeadScore != nil {
			score = lead.LeadScore.TotalScore
			priority = string(lead.LeadScore.Priority)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO leads (id, run_id, position, score, priority, record) VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), id, i, score, priority, string(recordJSON),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert lead %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return &Run{
		ID:        id,
		Query:     result.Query,
		Location:  result.Location,
		LeadCount: len(result.Leads),
		Stats:     result.Stats,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, location, lead_count, stats, created_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, query, location, lead_count, stats, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Query != "" {
		query += ` AND query = ?`
		args = append(args, filter.Query)
	}
	query += ` ORDER BY created_at DESC`

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
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// GetLeads returns a run's leads in their persisted ranking order.
func (s *SQLiteStore) GetLeads(ctx context.Context, runID string) ([]model.BusinessRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM leads WHERE run_id = ? ORDER BY position ASC`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get leads for run %s", runID)
	}
	defer rows.Close()

	var leads []model.BusinessRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var rec model.BusinessRecord
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, rec)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: get leads iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var r Run
	var statsJSON string

	err := row.Scan(&r.ID, &r.Query, &r.Location, &r.LeadCount, &statsJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(statsJSON), &r.Stats); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal stats")
	}
	return &r, nil
}
