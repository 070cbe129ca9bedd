// Package history records generation runs in a SQL database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	// ErrUnsupportedDriver is returned for a driver other than sqlite or postgres.
	ErrUnsupportedDriver = errors.New("unsupported history driver")
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	started_at      BIGINT NOT NULL,
	finished_at     BIGINT NOT NULL,
	fetched         INTEGER NOT NULL,
	unique_channels INTEGER NOT NULL,
	matched         INTEGER NOT NULL,
	alive           INTEGER,
	live_today      INTEGER NOT NULL,
	group_count     INTEGER NOT NULL,
	playlist_bytes  INTEGER NOT NULL
)`

// Run is one recorded generation run.
type Run struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Fetched       int       `json:"fetched"`
	Unique        int       `json:"unique"`
	Matched       int       `json:"matched"`
	Alive         *int      `json:"alive,omitempty"`
	LiveToday     int       `json:"liveToday"`
	Groups        int       `json:"groups"`
	PlaylistBytes int       `json:"playlistBytes"`
}

// Store persists runs.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the history database and creates the schema when missing.
// dsn is a file path for sqlite and a connection URL for postgres.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: driver}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate creates the runs table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}
	return nil
}

// Record stores a run, assigning a new ID when it has none.
func (s *Store) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	var alive sql.NullInt64
	if run.Alive != nil {
		alive = sql.NullInt64{Int64: int64(*run.Alive), Valid: true}
	}

	query := s.rebind(`
		INSERT INTO runs (id, started_at, finished_at, fetched, unique_channels, matched, alive, live_today, group_count, playlist_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.Fetched,
		run.Unique,
		run.Matched,
		alive,
		run.LiveToday,
		run.Groups,
		run.PlaylistBytes,
	)
	if err != nil {
		return run, fmt.Errorf("failed to record run: %w", err)
	}

	return run, nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	query := s.rebind(`
		SELECT id, started_at, finished_at, fetched, unique_channels, matched, alive, live_today, group_count, playlist_bytes
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	runs := make([]Run, 0, n)
	for rows.Next() {
		var (
			run               Run
			started, finished int64
			alive             sql.NullInt64
		)
		if err := rows.Scan(
			&run.ID,
			&started,
			&finished,
			&run.Fetched,
			&run.Unique,
			&run.Matched,
			&alive,
			&run.LiveToday,
			&run.Groups,
			&run.PlaylistBytes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = time.UnixMilli(started).UTC()
		run.FinishedAt = time.UnixMilli(finished).UTC()
		if alive.Valid {
			v := int(alive.Int64)
			run.Alive = &v
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites "?" placeholders to "$n" for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
