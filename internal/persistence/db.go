// Package persistence journals runs to SQLite: which seed and stage were
// played, the map that was generated and every event the run produced.
// Nothing is ever loaded back into a simulation.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/gist-rs/the-rust-of-us/internal/engine"
	"github.com/gist-rs/the-rust-of-us/internal/mapgen"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

// DB wraps a SQLite connection for the run journal.
type DB struct {
	conn *sqlx.DB
}

// Run is one journaled simulation run.
type Run struct {
	ID         string     `db:"id" json:"id"`
	Seed       string     `db:"seed" json:"seed"`
	Stage      string     `db:"stage" json:"stage"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	Ticks      int64      `db:"ticks" json:"ticks"`
	Outcome    string     `db:"outcome" json:"outcome"`
}

// MapRecord is a generated map as stored in the journal.
type MapRecord struct {
	RunID  string `db:"run_id" json:"run_id"`
	Seed   string `db:"seed" json:"seed"`
	Size   int    `db:"size" json:"size"`
	Layout string `db:"layout" json:"layout"` // one row of glyphs per line
	Carved string `db:"carved" json:"carved"` // space separated coordinates
}

// EventRecord is one journaled event.
type EventRecord struct {
	RunID   string `db:"run_id" json:"run_id"`
	Tick    int64  `db:"tick" json:"tick"`
	Kind    string `db:"kind" json:"kind"`
	Agent   int64  `db:"agent" json:"agent"`
	Payload string `db:"payload" json:"payload"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		stage TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		ticks INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS maps (
		run_id TEXT PRIMARY KEY REFERENCES runs(id),
		seed TEXT NOT NULL,
		size INTEGER NOT NULL,
		layout TEXT NOT NULL,
		carved TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		agent INTEGER NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun records a new run and returns its id.
func (db *DB) StartRun(seed, stage string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, stage, started_at) VALUES (?, ?, ?, ?)",
		id, seed, stage, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	slog.Info("run journaled", "run", id, "seed", seed, "stage", stage)
	return id, nil
}

// FinishRun stamps the end of a run.
func (db *DB) FinishRun(runID string, ticks uint64, outcome string) error {
	_, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ?, ticks = ?, outcome = ? WHERE id = ?",
		time.Now().UTC(), int64(ticks), outcome, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// GetRun loads a run by id.
func (db *DB) GetRun(runID string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT id, seed, stage, started_at, finished_at, ticks, outcome FROM runs WHERE id = ?", runID)
	return r, err
}

// SaveMap stores the dungeon generated for a run.
func (db *DB) SaveMap(runID string, d *mapgen.Dungeon) error {
	carved := make([]string, 0, len(d.Carved))
	for _, c := range d.Carved {
		carved = append(carved, world.FormatCoord(c))
	}
	_, err := db.conn.NamedExec(
		`INSERT OR REPLACE INTO maps (run_id, seed, size, layout, carved)
		 VALUES (:run_id, :seed, :size, :layout, :carved)`,
		MapRecord{
			RunID:  runID,
			Seed:   d.Seed,
			Size:   d.Size,
			Layout: strings.Join(d.Layout.Rows(), "\n"),
			Carved: strings.Join(carved, " "),
		},
	)
	if err != nil {
		return fmt.Errorf("save map: %w", err)
	}
	return nil
}

// GetMap loads the map stored for a run.
func (db *DB) GetMap(runID string) (MapRecord, error) {
	var m MapRecord
	err := db.conn.Get(&m, "SELECT run_id, seed, size, layout, carved FROM maps WHERE run_id = ?", runID)
	return m, err
}

// SaveEvents appends events to the journal.
func (db *DB) SaveEvents(runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (run_id, tick, kind, agent, payload) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		if _, err := stmt.Exec(runID, int64(e.Tick), string(e.Kind), int64(e.Agent), string(payload)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent events of a run, newest first.
func (db *DB) RecentEvents(runID string, limit int) ([]EventRecord, error) {
	var events []EventRecord
	err := db.conn.Select(&events,
		"SELECT run_id, tick, kind, agent, payload FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}

// Decode unpacks the stored event.
func (r EventRecord) Decode() (engine.Event, error) {
	var e engine.Event
	err := json.Unmarshal([]byte(r.Payload), &e)
	return e, err
}
