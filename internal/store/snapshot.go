// Package store persists the last successfully fetched schedule config so a
// fresh instance can serve it when the calendar is unreachable at startup.
// Bookings themselves are never stored; the external calendar is the only
// system of record for them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"bookdesk/internal/models"
)

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schedule_snapshots (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			config     TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{DB: db}, nil
}

// SaveSnapshot upserts the single schedule snapshot row.
func (db *DB) SaveSnapshot(ctx context.Context, cfg models.ScheduleConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO schedule_snapshots (id, config, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config = excluded.config,
			updated_at = excluded.updated_at`,
		string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the persisted schedule config, or an error when none
// was ever saved.
func (db *DB) LoadSnapshot(ctx context.Context) (models.ScheduleConfig, error) {
	var data string
	err := db.QueryRowContext(ctx, `SELECT config FROM schedule_snapshots WHERE id = 1`).Scan(&data)
	if err != nil {
		return models.ScheduleConfig{}, fmt.Errorf("load snapshot: %w", err)
	}

	var cfg models.ScheduleConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return models.ScheduleConfig{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return cfg, nil
}
