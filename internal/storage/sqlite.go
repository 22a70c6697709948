package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteArchive is the default single-file archive.
type SQLiteArchive struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite archive at the given path.
func OpenSQLite(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

// Close closes the database connection.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		created_at    TEXT NOT NULL,
		plugin        TEXT NOT NULL,
		status        TEXT NOT NULL,
		confidence    REAL NOT NULL DEFAULT 0,
		best_text     TEXT,
		execution_ms  REAL,
		inputs_json   TEXT NOT NULL,
		response_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_plugin ON runs(plugin);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun stores a run.
func (a *SQLiteArchive) SaveRun(ctx context.Context, r Run) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, plugin, status, confidence, best_text, execution_ms, inputs_json, response_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Plugin, r.Status, r.Confidence, r.BestText,
		r.ExecutionMS, string(r.InputsJSON), string(r.ResponseJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const sqliteColumns = `id, created_at, plugin, status, confidence, best_text, execution_ms, inputs_json, response_json`

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(s scanner) (Run, error) {
	var r Run
	var created string
	var best sql.NullString
	var execMS sql.NullFloat64
	var inputs, body string

	if err := s.Scan(&r.ID, &created, &r.Plugin, &r.Status, &r.Confidence, &best, &execMS, &inputs, &body); err != nil {
		return Run{}, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if best.Valid {
		r.BestText = best.String
	}
	if execMS.Valid {
		r.ExecutionMS = execMS.Float64
	}
	r.InputsJSON = []byte(inputs)
	r.ResponseJSON = []byte(body)
	return r, nil
}

// GetRun retrieves a run by id.
func (a *SQLiteArchive) GetRun(ctx context.Context, id string) (*Run, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanSQLiteRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// ListRuns returns runs, newest first.
func (a *SQLiteArchive) ListRuns(ctx context.Context, p ListParams) ([]Run, error) {
	where, args := p.where(questionMark)
	query := `SELECT ` + sqliteColumns + ` FROM runs` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT %d OFFSET %d", p.limit(), p.Offset)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		r, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats returns aggregate statistics about archived runs.
func (a *SQLiteArchive) Stats(ctx context.Context) (*Stats, error) {
	stats := newStats()

	var mean sql.NullFloat64
	row := a.db.QueryRowContext(ctx, "SELECT COUNT(*), AVG(confidence) FROM runs")
	if err := row.Scan(&stats.TotalRuns, &mean); err != nil {
		return nil, err
	}
	stats.MeanConfidence = mean.Float64

	for column, into := range map[string]map[string]int{"plugin": stats.ByPlugin, "status": stats.ByStatus} {
		if err := a.countBy(ctx, column, into); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// countBy fills into with per-value counts of column. column is never user input.
func (a *SQLiteArchive) countBy(ctx context.Context, column string, into map[string]int) error {
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("SELECT %s, COUNT(*) FROM runs GROUP BY %s", column, column))
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}
