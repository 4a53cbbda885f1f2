package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/market-stats/pkg/summary"
	"github.com/example/market-stats/pkg/transaction"

	_ "modernc.org/sqlite"
)

// Run describes one stored snapshot
type Run struct {
	ID          int64
	Source      string
	CreatedAt   time.Time
	RecordCount int
	Total       decimal.Decimal
}

// Store keeps snapshots of loaded records and their summaries in SQLite
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite file at dbPath and applies pending migrations
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun stores records and their summary as one run and returns its id
func (s *Store) SaveRun(ctx context.Context, source string, records []transaction.Record, sum summary.Summary) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (source, created_at, record_count, total) VALUES (?, ?, ?, ?)`,
		source, s.now().UTC().Format(time.RFC3339), len(records), sum.Total.String())
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for i, r := range records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (run_id, position, name, price, currency, listed_on, acted_on) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, r.Name, r.Price.String(), string(r.Currency),
			r.ListedOn.Format(time.DateOnly), r.ActedOn.Format(time.DateOnly))
		if err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	for i, nt := range sum.ByName {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO name_totals (run_id, position, name, total, count) VALUES (?, ?, ?, ?, ?)`,
			id, i, nt.Name, nt.Total.String(), nt.Count)
		if err != nil {
			return 0, fmt.Errorf("insert name total %q: %w", nt.Name, err)
		}
	}

	for _, mt := range sum.ByMonth {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO month_totals (run_id, year, month, total, count) VALUES (?, ?, ?, ?, ?)`,
			id, mt.Month.Year, int(mt.Month.Month), mt.Total.String(), mt.Count)
		if err != nil {
			return 0, fmt.Errorf("insert month total %s: %w", mt.Month, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

// Runs lists stored runs, newest first
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, created_at, record_count, total FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt string
			total     string
		)
		if err := rows.Scan(&run.ID, &run.Source, &createdAt, &run.RecordCount, &total); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse run %d time: %w", run.ID, err)
		}
		if run.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse run %d total: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// NameTotals returns the per-name summary of a run in its stored order
func (s *Store) NameTotals(ctx context.Context, runID int64) ([]summary.NameTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, total, count FROM name_totals WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query name totals: %w", err)
	}
	defer rows.Close()

	var out []summary.NameTotal
	for rows.Next() {
		var (
			nt    summary.NameTotal
			total string
		)
		if err := rows.Scan(&nt.Name, &total, &nt.Count); err != nil {
			return nil, fmt.Errorf("scan name total: %w", err)
		}
		if nt.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total for %q: %w", nt.Name, err)
		}
		out = append(out, nt)
	}
	return out, rows.Err()
}

// MonthTotals returns the per-month summary of a run in chronological order
func (s *Store) MonthTotals(ctx context.Context, runID int64) ([]summary.MonthTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, month, total, count FROM month_totals WHERE run_id = ? ORDER BY year, month`, runID)
	if err != nil {
		return nil, fmt.Errorf("query month totals: %w", err)
	}
	defer rows.Close()

	var out []summary.MonthTotal
	for rows.Next() {
		var (
			mt    summary.MonthTotal
			month int
			total string
		)
		if err := rows.Scan(&mt.Month.Year, &month, &total, &mt.Count); err != nil {
			return nil, fmt.Errorf("scan month total: %w", err)
		}
		mt.Month.Month = time.Month(month)
		if mt.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total for %s: %w", mt.Month, err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}
