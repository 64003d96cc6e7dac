package scheduler

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection holding the run history.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewDB initializes a new DB connection and ensures the schema is set up.
func NewDB(dataSourceName string, logger zerolog.Logger) (*DB, error) {
	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scheduler database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}

	db := &DB{
		db:     dbInstance,
		logger: logger.With().Str("module", "SchedulerDB").Logger(),
	}

	if err := db.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	db.logger.Info().Str("path", dataSourceName).Msg("Scheduler database initialized")
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func (d *DB) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		status TEXT NOT NULL,
		candidates_found INTEGER DEFAULT 0,
		unique_courses INTEGER DEFAULT 0,
		new_confirmed INTEGER DEFAULT 0,
		notes TEXT
	);
	`
	_, err := d.db.Exec(query)
	if err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize run_history schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a new run_history record with status "STARTED" and
// returns the ID of the inserted row.
func (d *DB) RecordRunStart(runID string, startTime time.Time) (int64, error) {
	query := `INSERT INTO run_history (run_id, start_time, status) VALUES (?, ?, ?)`
	result, err := d.db.Exec(query, runID, startTime, "STARTED")
	if err != nil {
		return 0, fmt.Errorf("failed to insert run start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	d.logger.Debug().Int64("db_id", id).Str("run_id", runID).Msg("Recorded run start")
	return id, nil
}

// UpdateRunCompletion fills in the completion details of an existing record.
func (d *DB) UpdateRunCompletion(dbRunID int64, endTime time.Time, status string, candidatesFound, uniqueCourses, newConfirmed int, notes []string) error {
	joined := strings.Join(notes, "; ")
	query := `UPDATE run_history SET end_time = ?, status = ?, candidates_found = ?, unique_courses = ?, new_confirmed = ?, notes = ? WHERE id = ?`
	_, err := d.db.Exec(query, endTime, status, candidatesFound, uniqueCourses, newConfirmed,
		sql.NullString{String: joined, Valid: joined != ""}, dbRunID)
	if err != nil {
		return fmt.Errorf("failed to update run completion for ID %d: %w", dbRunID, err)
	}
	return nil
}

// GetLastRunTime retrieves the start_time of the most recent completed run.
// Returns sql.ErrNoRows when no run has completed yet.
func (d *DB) GetLastRunTime() (*time.Time, error) {
	query := `SELECT start_time FROM run_history WHERE status = ? ORDER BY start_time DESC LIMIT 1`
	var startTime time.Time
	err := d.db.QueryRow(query, "COMPLETED").Scan(&startTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query last run start time: %w", err)
	}
	return &startTime, nil
}
