package localstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
	"github.com/mcdev12/reckoning/go/internal/sqlutil"
)

//go:embed schema.sql
var schemaSQL string

// DayLayout is the calendar-day format used for daily activity rows
const DayLayout = "2006-01-02"

// Store is the on-device progress replica.
// It keeps the encoded progress record under progress.LocalRecordKey in a
// SQLite key/value table, the same shape the game pages persist in local storage.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path and applies the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Read returns the persisted progress state.
// Missing or malformed data reads as the default state.
func (s *Store) Read() models.ProgressState {
	raw, err := s.GetItem(progress.LocalRecordKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read local progress record")
		return models.ProgressState{CompletedItems: []string{}}
	}
	if raw == nil {
		return models.ProgressState{CompletedItems: []string{}}
	}

	state, err := progress.DecodeLocalRecord(raw)
	if err != nil {
		log.Warn().Err(err).Msg("discarding malformed local progress record")
		return models.ProgressState{CompletedItems: []string{}}
	}
	return state
}

// Write persists state under progress.LocalRecordKey
func (s *Store) Write(state models.ProgressState) error {
	raw, err := progress.EncodeLocalRecord(state)
	if err != nil {
		return err
	}
	return s.SetItem(progress.LocalRecordKey, raw)
}

// GetItem returns the raw value stored under key, or nil when absent
func (s *Store) GetItem(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return []byte(value), nil
}

// SetItem stores value under key, replacing any previous value
func (s *Store) SetItem(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO local_records (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// MarkDailyActivity records day as active.
// It reports true only the first time a given calendar day is marked.
func (s *Store) MarkDailyActivity(day time.Time) (bool, error) {
	var first bool
	err := sqlutil.Run(context.Background(), s.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT OR IGNORE INTO daily_activity (day) VALUES (?)`, day.Format(DayLayout))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		first = n == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to mark daily activity: %w", err)
	}
	return first, nil
}

// ActiveDays returns every marked day in ascending order
func (s *Store) ActiveDays() ([]string, error) {
	rows, err := s.db.Query(`SELECT day FROM daily_activity ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active days: %w", err)
	}
	defer rows.Close()

	days := []string{}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan active day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
