// Package store persists audit reports in SQLite. Reports are append-only:
// Save inserts, never updates, so scan history is an immutable ledger.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/hashicorp/go-hclog"
	_ "github.com/mattn/go-sqlite3"

	"github.com/scanward/scanward/internal/audit"
	"github.com/scanward/scanward/pkg/shared/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding scan reports. Writes for the same
// scan root are serialized so concurrent scans of one tree cannot interleave
// their history entries.
type Store struct {
	db     *sql.DB
	logger hclog.Logger

	mu        sync.Mutex
	rootLocks map[string]*sync.Mutex
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string, logger hclog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, errors.NewPersistenceError("open", fmt.Errorf("creating database directory %s: %w", dir, err))
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errors.NewPersistenceError("open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewPersistenceError("open", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewPersistenceError("migrate", err)
	}

	logger.Debug("report store ready", "path", path)
	return &Store{
		db:        db,
		logger:    logger,
		rootLocks: make(map[string]*sync.Mutex),
	}, nil
}

func applyMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("initializing migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("initializing migrations: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rootLock returns the write lock for a scan root.
func (s *Store) rootLock(rootPath string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.rootLocks[rootPath]
	if !ok {
		lock = &sync.Mutex{}
		s.rootLocks[rootPath] = lock
	}
	return lock
}

// Save inserts the report and its findings in one transaction. A duplicate
// scan id fails the insert; existing rows are never touched.
func (s *Store) Save(ctx context.Context, report *audit.Report) error {
	lock := s.rootLock(report.RootPath)
	lock.Lock()
	defer lock.Unlock()

	raw, err := json.Marshal(report)
	if err != nil {
		return errors.NewPersistenceError("save", fmt.Errorf("encoding report %s: %w", report.ScanID, err))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewPersistenceError("save", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (scan_id, root_path, started_at, ended_at, risk_score, risk_band, incomplete, total_findings, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ScanID,
		report.RootPath,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.EndedAt.UTC().Format(time.RFC3339Nano),
		report.RiskScore,
		report.RiskBand,
		report.Incomplete,
		len(report.Findings),
		string(raw),
	)
	if err != nil {
		return errors.NewPersistenceError("save", fmt.Errorf("inserting report %s: %w", report.ScanID, err))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (id, scan_id, file_path, line_number, rule_id, category, issue_type, severity, cwe, description, recommendation, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.NewPersistenceError("save", err)
	}
	defer stmt.Close()

	for _, f := range report.Findings {
		_, err := stmt.ExecContext(ctx,
			f.ID, report.ScanID, f.FilePath, f.LineNumber, f.RuleID,
			string(f.Category), f.IssueType, string(f.Severity),
			f.CWE, f.Description, f.Recommendation, string(f.Source),
		)
		if err != nil {
			return errors.NewPersistenceError("save", fmt.Errorf("inserting finding %s: %w", f.ID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewPersistenceError("save", err)
	}

	s.logger.Debug("report persisted", "scan_id", report.ScanID, "findings", len(report.Findings))
	return nil
}

// Load returns the stored report for a scan id.
func (s *Store) Load(ctx context.Context, scanID string) (*audit.Report, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE scan_id = ?`, scanID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.NewPersistenceError("load", fmt.Errorf("report %s not found", scanID))
	}
	if err != nil {
		return nil, errors.NewPersistenceError("load", err)
	}

	report := &audit.Report{}
	if err := json.Unmarshal([]byte(raw), report); err != nil {
		return nil, errors.NewPersistenceError("load", fmt.Errorf("decoding report %s: %w", scanID, err))
	}
	return report, nil
}

// History lists stored scans for a root path, newest first. A limit of zero
// or less returns everything.
func (s *Store) History(ctx context.Context, rootPath string, limit int) ([]audit.ReportSummary, error) {
	query := `
		SELECT scan_id, started_at, risk_score, total_findings
		FROM reports
		WHERE root_path = ?
		ORDER BY started_at DESC, scan_id DESC`
	args := []interface{}{rootPath}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewPersistenceError("history", err)
	}
	defer rows.Close()

	var summaries []audit.ReportSummary
	for rows.Next() {
		var summary audit.ReportSummary
		var startedAt string
		if err := rows.Scan(&summary.ScanID, &startedAt, &summary.RiskScore, &summary.TotalFindings); err != nil {
			return nil, errors.NewPersistenceError("history", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			summary.Timestamp = ts
		} else {
			s.logger.Warn("unparsable started_at on history row", "scan_id", summary.ScanID, "value", startedAt, "error", parseErr)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("history", err)
	}
	return summaries, nil
}
