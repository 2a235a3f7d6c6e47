package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists window stats and bookmarks across runs, keyed by run ID.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// WriteWindow stores one stats window. Rewriting the same window replaces it.
func (s *SQLiteStore) WriteWindow(ctx context.Context, stats WindowStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode window %d: %w", stats.WindowEndTick, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO windows (run_id, window_end, sim_time, agents, panicking, fleeing, seeds_eaten, coop_arrivals, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, window_end) DO UPDATE SET
			sim_time = excluded.sim_time,
			agents = excluded.agents,
			panicking = excluded.panicking,
			fleeing = excluded.fleeing,
			seeds_eaten = excluded.seeds_eaten,
			coop_arrivals = excluded.coop_arrivals,
			payload = excluded.payload
	`, stats.RunID, stats.WindowEndTick, stats.SimTimeSec, stats.Agents, stats.Panicking,
		stats.Fleeing, stats.SeedsEaten, stats.CoopArrivals, payload)
	return err
}

// Windows returns every stored window of a run in tick order.
func (s *SQLiteStore) Windows(ctx context.Context, runID string) ([]WindowStats, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM windows WHERE run_id = ? ORDER BY window_end`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WindowStats
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ws WindowStats
		if err := json.Unmarshal(payload, &ws); err != nil {
			return nil, fmt.Errorf("decode window for run %s: %w", runID, err)
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) WriteBookmark(ctx context.Context, b Bookmark) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO bookmarks (run_id, type, tick, sim_time, description)
		VALUES (?, ?, ?, ?, ?)
	`, b.RunID, string(b.Type), b.Tick, b.SimTimeSec, b.Description)
	return err
}

// Bookmarks returns the bookmarks recorded for a run in tick order.
func (s *SQLiteStore) Bookmarks(ctx context.Context, runID string) ([]Bookmark, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT type, tick, sim_time, description FROM bookmarks
		WHERE run_id = ? ORDER BY tick, id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		b := Bookmark{RunID: runID}
		var typ string
		if err := rows.Scan(&typ, &b.Tick, &b.SimTimeSec, &b.Description); err != nil {
			return nil, err
		}
		b.Type = BookmarkType(typ)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS windows (
			run_id TEXT NOT NULL,
			window_end INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			agents INTEGER NOT NULL,
			panicking INTEGER NOT NULL,
			fleeing INTEGER NOT NULL,
			seeds_eaten INTEGER NOT NULL,
			coop_arrivals INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, window_end)
		);
		CREATE TABLE IF NOT EXISTS bookmarks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			type TEXT NOT NULL,
			tick INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			description TEXT NOT NULL
		);
	`)
	return err
}
