// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/supermart/salesd/internal/dataset"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS sales_records (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id      TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	category      TEXT NOT NULL,
	sub_category  TEXT NOT NULL,
	city          TEXT NOT NULL,
	order_date    TEXT NOT NULL,
	region        TEXT NOT NULL,
	state         TEXT NOT NULL,
	sales         REAL NOT NULL,
	discount      REAL NOT NULL,
	profit        REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sales_order_date ON sales_records(order_date);
CREATE INDEX IF NOT EXISTS idx_sales_category   ON sales_records(category);
CREATE INDEX IF NOT EXISTS idx_sales_region     ON sales_records(region);

CREATE TABLE IF NOT EXISTS ingests (
	id           TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT,
	rows_loaded  INTEGER NOT NULL DEFAULT 0,
	rows_skipped INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);
`

// Ingest is one row of the ingest history.
type Ingest struct {
	ID          string
	Source      string
	StartedAt   time.Time
	FinishedAt  time.Time
	RowsLoaded  int
	RowsSkipped int
	Status      string // running | succeeded | failed
	Error       string
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// New opens the database at path and applies the schema.
func New(path string, cfg Config) (*Store, error) {
	db, err := Open(path, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// ReplaceAll transactionally replaces the full record set.
func (s *Store) ReplaceAll(ctx context.Context, records []dataset.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sales_records`); err != nil {
		return fmt.Errorf("store: clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records
			(order_id, customer_name, category, sub_category, city, order_date, region, state, sales, discount, profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.OrderID, r.CustomerName, r.Category, r.SubCategory, r.City,
			r.OrderDate.Format(dateLayout), r.Region, r.State,
			r.Sales, r.Discount, r.Profit,
		); err != nil {
			return fmt.Errorf("store: insert record %s: %w", r.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit replace: %w", err)
	}
	return nil
}

// LoadAll reads every persisted record, ordered by date. Used for warm starts
// when the CSV source is unavailable.
func (s *Store) LoadAll(ctx context.Context) ([]dataset.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, customer_name, category, sub_category, city, order_date, region, state, sales, discount, profit
		FROM sales_records ORDER BY order_date, id`)
	if err != nil {
		return nil, fmt.Errorf("store: load records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []dataset.Record
	for rows.Next() {
		var r dataset.Record
		var date string
		if err := rows.Scan(
			&r.OrderID, &r.CustomerName, &r.Category, &r.SubCategory, &r.City,
			&date, &r.Region, &r.State, &r.Sales, &r.Discount, &r.Profit,
		); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}
		if r.OrderDate, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("store: corrupt order date %q: %w", date, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRecords returns the number of persisted records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales_records`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count records: %w", err)
	}
	return n, nil
}

// BeginIngest records the start of an ingest run.
func (s *Store) BeginIngest(ctx context.Context, id, source string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingests (id, source, started_at, status) VALUES (?, ?, ?, 'running')`,
		id, source, startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: begin ingest %s: %w", id, err)
	}
	return nil
}

// FinishIngest records the outcome of an ingest run.
func (s *Store) FinishIngest(ctx context.Context, id string, finishedAt time.Time, loaded, skipped int, runErr error) error {
	status := "succeeded"
	errMsg := ""
	if runErr != nil {
		status = "failed"
		errMsg = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE ingests SET finished_at = ?, rows_loaded = ?, rows_skipped = ?, status = ?, error = ?
		WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339), loaded, skipped, status, errMsg, id)
	if err != nil {
		return fmt.Errorf("store: finish ingest %s: %w", id, err)
	}
	return nil
}

// RecentIngests returns the most recent ingest runs, newest first.
func (s *Store) RecentIngests(ctx context.Context, limit int) ([]Ingest, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, started_at, COALESCE(finished_at, ''), rows_loaded, rows_skipped, status, error
		FROM ingests ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list ingests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Ingest
	for rows.Next() {
		var ing Ingest
		var started, finished string
		if err := rows.Scan(&ing.ID, &ing.Source, &started, &finished,
			&ing.RowsLoaded, &ing.RowsSkipped, &ing.Status, &ing.Error); err != nil {
			return nil, fmt.Errorf("store: scan ingest: %w", err)
		}
		if ing.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("store: corrupt ingest timestamp %q: %w", started, err)
		}
		if finished != "" {
			if ing.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
				return nil, fmt.Errorf("store: corrupt ingest timestamp %q: %w", finished, err)
			}
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}
