package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB persists emitted URLs to sqlite so the history survives restarts.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewDB opens (or creates) the history database and ensures the schema.
func NewDB(dataSourceName string, logger zerolog.Logger) (*DB, error) {
	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}

	db := &DB{
		db:     dbInstance,
		logger: logger.With().Str("module", "HistoryDB").Logger(),
	}

	if err := db.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	db.logger.Info().Str("path", dataSourceName).Msg("History database initialized")
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
	CREATE TABLE IF NOT EXISTS emitted_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		emitted_at DATETIME NOT NULL
	);
	`
	_, err := d.db.Exec(query)
	if err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize emitted_urls schema")
		return err
	}
	return nil
}

// Record inserts the given URLs inside a single transaction and prunes the
// table back down to capacity, oldest rows first.
func (d *DB) Record(urls []string, capacity int) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, url := range urls {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO emitted_urls (url, emitted_at) VALUES (?, ?)`, url, now); err != nil {
			return fmt.Errorf("failed to insert emitted url: %w", err)
		}
	}

	prune := `DELETE FROM emitted_urls WHERE id NOT IN (SELECT id FROM emitted_urls ORDER BY id DESC LIMIT ?)`
	if _, err := tx.Exec(prune, capacity); err != nil {
		return fmt.Errorf("failed to prune emitted urls: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history transaction: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit persisted URLs in insertion order, oldest
// first, so the in-memory store can be rebuilt with eviction order intact.
func (d *DB) LoadRecent(limit int) ([]string, error) {
	query := `SELECT url FROM (SELECT id, url FROM emitted_urls ORDER BY id DESC LIMIT ?) ORDER BY id ASC`
	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query emitted urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan emitted url row: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// Clear removes every persisted URL.
func (d *DB) Clear() error {
	if _, err := d.db.Exec(`DELETE FROM emitted_urls`); err != nil {
		return fmt.Errorf("failed to clear emitted urls: %w", err)
	}
	return nil
}
