package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresArchive stores runs in PostgreSQL, for archives shared between
// several API instances.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool and creates the schema.
func OpenPostgres(ctx context.Context, connStr string) (*PostgresArchive, error) {
	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	a := &PostgresArchive{pool: pool}
	if err := a.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return a, nil
}

// Close closes the connection pool.
func (a *PostgresArchive) Close() error {
	a.pool.Close()
	return nil
}

func (a *PostgresArchive) createSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            UUID PRIMARY KEY,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		plugin        TEXT NOT NULL,
		status        TEXT NOT NULL,
		confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
		best_text     TEXT NOT NULL DEFAULT '',
		execution_ms  DOUBLE PRECISION NOT NULL DEFAULT 0,
		inputs_json   JSONB NOT NULL,
		response_json JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_plugin ON runs(plugin);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`
	_, err := a.pool.Exec(ctx, schema)
	return err
}

// SaveRun stores a run.
func (a *PostgresArchive) SaveRun(ctx context.Context, r Run) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO runs (id, created_at, plugin, status, confidence, best_text, execution_ms, inputs_json, response_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.ID, r.CreatedAt, r.Plugin, r.Status, r.Confidence, r.BestText, r.ExecutionMS,
		string(r.InputsJSON), string(r.ResponseJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const postgresColumns = `id::text, created_at, plugin, status, confidence, best_text, execution_ms,
	inputs_json::text, response_json::text`

func scanPostgresRun(row pgx.Row) (Run, error) {
	var r Run
	var inputs, body string
	err := row.Scan(&r.ID, &r.CreatedAt, &r.Plugin, &r.Status, &r.Confidence, &r.BestText,
		&r.ExecutionMS, &inputs, &body)
	if err != nil {
		return Run{}, err
	}
	r.InputsJSON = []byte(inputs)
	r.ResponseJSON = []byte(body)
	return r, nil
}

// GetRun retrieves a run by id.
func (a *PostgresArchive) GetRun(ctx context.Context, id string) (*Run, error) {
	row := a.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM runs WHERE id::text = $1`, id)
	r, err := scanPostgresRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

func dollar(n int) string { return "$" + strconv.Itoa(n) }

// ListRuns returns runs, newest first.
func (a *PostgresArchive) ListRuns(ctx context.Context, p ListParams) ([]Run, error) {
	where, args := p.where(dollar)
	query := `SELECT ` + postgresColumns + ` FROM runs` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT %d OFFSET %d", p.limit(), p.Offset)

	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats returns aggregate statistics about archived runs.
func (a *PostgresArchive) Stats(ctx context.Context) (*Stats, error) {
	stats := newStats()

	var mean *float64
	err := a.pool.QueryRow(ctx, "SELECT COUNT(*), AVG(confidence) FROM runs").Scan(&stats.TotalRuns, &mean)
	if err != nil {
		return nil, err
	}
	if mean != nil {
		stats.MeanConfidence = *mean
	}

	rows, err := a.pool.Query(ctx, "SELECT plugin, status, COUNT(*) FROM runs GROUP BY plugin, status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var plugin, status string
		var count int
		if err := rows.Scan(&plugin, &status, &count); err != nil {
			return nil, err
		}
		stats.ByPlugin[plugin] += count
		stats.ByStatus[status] += count
	}
	return stats, rows.Err()
}
