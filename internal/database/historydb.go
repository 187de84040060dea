package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"souschef/internal/model"
)

// ErrRunNotFound is returned when a requested run does not exist.
var ErrRunNotFound = errors.New("run not found in history")

// HistoryDB provides SQLite-based storage for run reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all runs rather
// than a file per run. This keeps the history queryable with plain SQL
// and makes backup/restore a single-file operation.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "souschef.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and the history sees far more
	// writes than reads, so a single connection is enough.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path to the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per pipeline run, with the full report as JSON
	-- and the fields the history listing needs denormalized for querying.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		objective TEXT NOT NULL,
		succeeded INTEGER NOT NULL DEFAULT 0,
		recipe_title TEXT,
		source_url TEXT,
		artifact_path TEXT,
		attempts INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_succeeded ON runs(succeeded);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one row of the history listing.
type RunRecord struct {
	ID           int64
	Objective    string
	Succeeded    bool
	RecipeTitle  string
	SourceURL    string
	ArtifactPath string
	Attempts     int
	Duration     time.Duration
	StartedAt    time.Time
}

// InsertRun stores a run report and returns its row ID.
func (hdb *HistoryDB) InsertRun(ctx context.Context, report *model.RunReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var recipeTitle, sourceURL string
	if report.Recipe != nil {
		recipeTitle = report.Recipe.Title
	}
	if report.Winner != nil {
		sourceURL = report.Winner.URL
	}

	query := `
	INSERT INTO runs (objective, succeeded, recipe_title, source_url, artifact_path, attempts, duration_ms, started_at, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		report.Objective,
		report.Succeeded,
		recipeTitle,
		sourceURL,
		report.ArtifactPath,
		report.AttemptCount(),
		report.Duration.Milliseconds(),
		report.StartedAt.UTC().Format(time.RFC3339),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// ListRecent returns the most recent runs, newest first.
func (hdb *HistoryDB) ListRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, objective, succeeded, recipe_title, source_url, artifact_path, attempts, duration_ms, started_at
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`

	rows, err := hdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRunRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return records, nil
}

// GetRun retrieves the full report for a run by its row ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	query := `SELECT report_json FROM runs WHERE id = ?`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}

	return &report, nil
}

// CountRuns returns the total number of stored runs.
func (hdb *HistoryDB) CountRuns(ctx context.Context) (int, error) {
	var count int
	err := hdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

// scanRunRecord scans one history row.
func scanRunRecord(rows *sql.Rows) (RunRecord, error) {
	var (
		record      RunRecord
		recipeTitle sql.NullString
		sourceURL   sql.NullString
		artifact    sql.NullString
		durationMS  int64
		startedAt   string
	)

	err := rows.Scan(
		&record.ID,
		&record.Objective,
		&record.Succeeded,
		&recipeTitle,
		&sourceURL,
		&artifact,
		&record.Attempts,
		&durationMS,
		&startedAt,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to scan run record: %w", err)
	}

	record.RecipeTitle = recipeTitle.String
	record.SourceURL = sourceURL.String
	record.ArtifactPath = artifact.String
	record.Duration = time.Duration(durationMS) * time.Millisecond

	if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
		record.StartedAt = ts
	}

	return record, nil
}
