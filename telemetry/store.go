package telemetry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// defaultBatch is the number of samples buffered before a write.
const defaultBatch = 64

// Store persists population history to SQLite. Every row is stamped with
// the run ID so several runs can share one database file.
type Store struct {
	conn    *sqlx.DB
	runID   uuid.UUID
	batch   int
	pending []Sample
}

// OpenStore opens or creates a SQLite database at path and registers a run.
func OpenStore(path string, runID uuid.UUID, seed uint64) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn, runID: runID, batch: defaultBatch}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	_, err = conn.Exec(`INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)`,
		runID.String(), int64(seed), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS population (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		time REAL NOT NULL,
		species TEXT NOT NULL,
		count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS windows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		deer INTEGER NOT NULL,
		horses INTEGER NOT NULL,
		wolves INTEGER NOT NULL,
		grass INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		culled INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_population_run ON population(run_id, time);
	CREATE INDEX IF NOT EXISTS idx_windows_run ON windows(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RunID returns the identifier stamped on this store's rows.
func (s *Store) RunID() uuid.UUID {
	return s.runID
}

// Record buffers a sample and writes the buffer once it is full. It
// implements Sink.
func (s *Store) Record(smp Sample) error {
	s.pending = append(s.pending, smp)
	if len(s.pending) >= s.batch {
		return s.Flush()
	}
	return nil
}

// Flush writes all buffered samples in one transaction.
func (s *Store) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO population (run_id, time, species, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	run := s.runID.String()
	for _, smp := range s.pending {
		if _, err := stmt.Exec(run, smp.Time, smp.Species, smp.Count); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

// WriteWindow stores the headline numbers of a window.
func (s *Store) WriteWindow(w WindowStats) error {
	_, err := s.conn.Exec(`INSERT INTO windows
		(run_id, window_end, sim_time, deer, horses, wolves, grass, births, deaths, kills, culled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID.String(), w.WindowEndTick, w.SimTimeSec, w.Deer, w.Horses, w.Wolves, w.Grass,
		w.Births(), w.Deaths(), w.Kills, w.CulledDeaths)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}
	return nil
}

// Samples returns the stored samples of a run in insertion order.
func (s *Store) Samples(runID uuid.UUID) ([]Sample, error) {
	var out []Sample
	err := s.conn.Select(&out,
		"SELECT time, count, species FROM population WHERE run_id = ? ORDER BY id",
		runID.String(),
	)
	return out, err
}

// WindowCount returns the number of windows stored for a run.
func (s *Store) WindowCount(runID uuid.UUID) (int, error) {
	var n int
	err := s.conn.Get(&n, "SELECT COUNT(*) FROM windows WHERE run_id = ?", runID.String())
	return n, err
}

// Close flushes pending samples and closes the database connection.
func (s *Store) Close() error {
	flushErr := s.Flush()
	if err := s.conn.Close(); err != nil {
		return err
	}
	return flushErr
}
