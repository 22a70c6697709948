package storage

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseArchive stores runs in ClickHouse for large batch archives that
// are mostly aggregated.
type ClickHouseArchive struct {
	conn driver.Conn
}

// OpenClickHouse connects using a clickhouse:// DSN and creates the schema.
func OpenClickHouse(ctx context.Context, dsn string) (*ClickHouseArchive, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	if opts.Settings == nil {
		opts.Settings = clickhouse.Settings{}
	}
	opts.Settings["max_execution_time"] = 60
	opts.DialTimeout = 10 * time.Second
	opts.MaxOpenConns = 10
	opts.MaxIdleConns = 5
	opts.ConnMaxLifetime = time.Hour

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	a := &ClickHouseArchive{conn: conn}
	if err := a.createSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the ClickHouse connection.
func (a *ClickHouseArchive) Close() error {
	return a.conn.Close()
}

func (a *ClickHouseArchive) createSchema(ctx context.Context) error {
	err := a.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id            String,
		created_at    DateTime64(3),
		plugin        LowCardinality(String),
		status        LowCardinality(String),
		confidence    Float64,
		best_text     String,
		execution_ms  Float64,
		inputs_json   String,
		response_json String
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(created_at)
	ORDER BY (plugin, created_at, id)`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun stores a run.
func (a *ClickHouseArchive) SaveRun(ctx context.Context, r Run) error {
	err := a.conn.Exec(ctx, `
		INSERT INTO runs (id, created_at, plugin, status, confidence, best_text, execution_ms, inputs_json, response_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.CreatedAt, r.Plugin, r.Status, r.Confidence, r.BestText, r.ExecutionMS,
		string(r.InputsJSON), string(r.ResponseJSON))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SaveRuns stores runs in one batch.
func (a *ClickHouseArchive) SaveRuns(ctx context.Context, runs []Run) error {
	if len(runs) == 0 {
		return nil
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO runs (id, created_at, plugin, status, confidence, best_text, execution_ms, inputs_json, response_json)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, r := range runs {
		err := batch.Append(r.ID, r.CreatedAt, r.Plugin, r.Status, r.Confidence, r.BestText, r.ExecutionMS,
			string(r.InputsJSON), string(r.ResponseJSON))
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func (a *ClickHouseArchive) query(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := a.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var inputs, body string
		err := rows.Scan(&r.ID, &r.CreatedAt, &r.Plugin, &r.Status, &r.Confidence, &r.BestText,
			&r.ExecutionMS, &inputs, &body)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.InputsJSON = []byte(inputs)
		r.ResponseJSON = []byte(body)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

const clickhouseColumns = `id, created_at, plugin, status, confidence, best_text, execution_ms, inputs_json, response_json`

// GetRun retrieves a run by id.
func (a *ClickHouseArchive) GetRun(ctx context.Context, id string) (*Run, error) {
	runs, err := a.query(ctx, `SELECT `+clickhouseColumns+` FROM runs WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &runs[0], nil
}

// ListRuns returns runs, newest first.
func (a *ClickHouseArchive) ListRuns(ctx context.Context, p ListParams) ([]Run, error) {
	where, args := p.where(questionMark)
	query := `SELECT ` + clickhouseColumns + ` FROM runs` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT %d OFFSET %d", p.limit(), p.Offset)
	return a.query(ctx, query, args...)
}

// Stats returns aggregate statistics about archived runs.
func (a *ClickHouseArchive) Stats(ctx context.Context) (*Stats, error) {
	stats := newStats()

	var total uint64
	var mean float64
	if err := a.conn.QueryRow(ctx, "SELECT count(), avg(confidence) FROM runs").Scan(&total, &mean); err != nil {
		return nil, err
	}
	stats.TotalRuns = int(total)
	if !math.IsNaN(mean) {
		stats.MeanConfidence = mean
	}

	rows, err := a.conn.Query(ctx, "SELECT plugin, status, count() FROM runs GROUP BY plugin, status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var plugin, status string
		var count uint64
		if err := rows.Scan(&plugin, &status, &count); err != nil {
			return nil, err
		}
		stats.ByPlugin[plugin] += int(count)
		stats.ByStatus[status] += int(count)
	}
	return stats, rows.Err()
}
