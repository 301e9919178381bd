package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/id"
	"github.com/cleared-dev/stmtimport/internal/ledger"
	"github.com/cleared-dev/stmtimport/internal/model"
)

// ErrDuplicate is returned by Save for a record already stored.
var ErrDuplicate = errors.New("duplicate transaction")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		handler TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		status TEXT NOT NULL DEFAULT 'running',
		imported INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		total TEXT NOT NULL DEFAULT '0',
		message TEXT
	);`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		transaction_date DATE NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		expense INTEGER NOT NULL,
		description TEXT NOT NULL,
		note TEXT,
		category TEXT,
		source TEXT NOT NULL,
		source_color INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES import_runs(id) ON DELETE SET NULL
	);`,
}

// Run is one row of import_runs.
type Run struct {
	ID         string
	File       string
	Handler    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Imported   int
	Skipped    int
	Total      decimal.Decimal
	Message    string
}

// SQLite is a persistence sink backed by a SQLite database. Records are
// keyed by fingerprint, so importing a statement twice stores nothing new.
type SQLite struct {
	db    *sql.DB
	runID string
}

// Open opens or creates the database at path and its tables.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// BeginRun records a started import. Records saved afterwards carry its id.
func (s *SQLite) BeginRun(ctx context.Context, runID, file, handler string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, file, handler, started_at) VALUES (?, ?, ?, ?)`,
		runID, file, handler, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	s.runID = runID
	return nil
}

// FinishRun stores the terminal event of a run.
func (s *SQLite) FinishRun(ctx context.Context, runID string, ev model.ImportEvent) error {
	status, imported, skipped, total, msg, handler := "", 0, 0, decimal.Zero, "", ""
	switch e := ev.(type) {
	case model.Success:
		status, imported, skipped, total, handler = "success", e.Imported, e.Skipped, e.Total, e.Handler
	case model.Failure:
		status, msg = "failure", e.Error()
	default:
		return fmt.Errorf("run %s: %T is not a terminal event", runID, ev)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE import_runs SET finished_at = ?, status = ?, imported = ?, skipped = ?, total = ?, message = ?,
			handler = COALESCE(NULLIF(?, ''), handler) WHERE id = ?`,
		time.Now().UTC(), status, imported, skipped, total.String(), msg, handler, runID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run: unknown run %s", runID)
	}
	if s.runID == runID {
		s.runID = ""
	}
	return nil
}

// Save validates and inserts rec. It returns ErrDuplicate when a record
// with the same fingerprint exists.
func (s *SQLite) Save(ctx context.Context, rec model.TransactionRecord) error {
	if err := ledger.Check(rec); err != nil {
		return err
	}

	var runID any
	if s.runID != "" {
		runID = s.runID
	}
	fp := id.Fingerprint(rec)
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO transactions
			(id, run_id, transaction_date, amount, currency, expense, description, note, category, source, source_color)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fp, runID, rec.Date.Format("2006-01-02"),
		rec.Amount.StringFixed(rec.Currency.DecimalPlaces()), string(rec.Currency),
		rec.Expense, rec.Description, rec.Note, rec.Category, rec.Source, rec.SourceColor)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, id.Short(fp))
	}
	return nil
}

// Count returns the number of stored transactions.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}
	return n, nil
}

// Transactions returns stored records ordered by date.
func (s *SQLite) Transactions(ctx context.Context) ([]model.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_date, amount, currency, expense, description, note, category, source, source_color
			FROM transactions ORDER BY transaction_date, rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []model.TransactionRecord
	for rows.Next() {
		var (
			rec            model.TransactionRecord
			date, amount   string
			currency       string
			note, category sql.NullString
		)
		if err := rows.Scan(&date, &amount, &currency, &rec.Expense, &rec.Description, &note, &category, &rec.Source, &rec.SourceColor); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		if rec.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parsing stored amount %q: %w", amount, err)
		}
		rec.Currency = model.Currency(currency)
		rec.Note, rec.Category = note.String, category.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Runs returns import runs, newest first.
func (s *SQLite) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, handler, started_at, finished_at, status, imported, skipped, total, message
			FROM import_runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			finished sql.NullTime
			total    string
			msg      sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.File, &r.Handler, &r.StartedAt, &finished, &r.Status, &r.Imported, &r.Skipped, &total, &msg); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		if r.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parsing run total %q: %w", total, err)
		}
		r.Message = msg.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// parseDate accepts both the plain layout and the timestamp form the
// driver may hand back for DATE columns.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing stored date %q", s)
}
