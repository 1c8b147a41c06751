// Package store persists solve results in a SQLite database.
//
// Each run keeps the problem name, the search configuration, the final status
// and objective, and the routes as node sequences encoded as JSON.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/katalvlaran/lvroute/routing"
)

const schemaVersion = 1

// ErrRunNotFound is returned by Get for unknown run ids.
var ErrRunNotFound = errors.New("store: run not found")

// Run is one persisted solve.
type Run struct {
	ID            uuid.UUID
	Problem       string
	Status        string
	Strategy      string
	Metaheuristic string
	Objective     int64
	Penalty       int64
	// Routes holds the node sequence of every vehicle, start and end included.
	Routes [][]int
	// Dropped lists the nodes of unperformed visits.
	Dropped   []int
	CreatedAt time.Time
}

// RunFromAssignment converts a solved assignment into a Run. The run id is
// the assignment id. asg may be nil for failed solves. Automatic choices are
// stored under the strategy and metaheuristic they resolve to.
func RunFromAssignment(problem string, model *routing.Model, asg *routing.Assignment, params *routing.SearchParameters) Run {
	if params == nil {
		params = routing.DefaultSearchParameters()
	}
	strategy, metaheuristic := params.Resolve()
	r := Run{
		ID:            uuid.New(),
		Problem:       problem,
		Status:        model.Status().String(),
		Strategy:      strategy.String(),
		Metaheuristic: metaheuristic.String(),
		CreatedAt:     time.Now().UTC(),
	}
	if asg == nil {
		return r
	}
	manager := model.Manager()
	r.ID = asg.ID()
	r.Objective = asg.ObjectiveValue()
	r.Penalty = asg.PenaltyCost()
	r.Routes = make([][]int, asg.Vehicles())
	for v := range r.Routes {
		r.Routes[v] = manager.IndicesToNodes(asg.Route(v))
	}
	r.Dropped = manager.IndicesToNodes(asg.Unperformed())
	return r
}

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == nil {
		if version > schemaVersion {
			return fmt.Errorf("store: schema version %d is newer than %d", version, schemaVersion)
		}
		return nil
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);
	INSERT INTO schema_version (version) VALUES (1);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		problem TEXT NOT NULL,
		status TEXT NOT NULL,
		strategy TEXT NOT NULL,
		metaheuristic TEXT NOT NULL,
		objective INTEGER NOT NULL,
		penalty INTEGER NOT NULL,
		routes TEXT NOT NULL,
		dropped TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// Save inserts r, replacing any run with the same id.
func (s *Store) Save(ctx context.Context, r Run) error {
	routes, err := json.Marshal(r.Routes)
	if err != nil {
		return fmt.Errorf("store: encode routes: %w", err)
	}
	dropped, err := json.Marshal(r.Dropped)
	if err != nil {
		return fmt.Errorf("store: encode dropped: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, problem, status, strategy, metaheuristic, objective, penalty, routes, dropped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Problem, r.Status, r.Strategy, r.Metaheuristic,
		r.Objective, r.Penalty, string(routes), string(dropped), r.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("store: save run %s: %w", r.ID, err)
	}
	return nil
}

const selectRun = `SELECT id, problem, status, strategy, metaheuristic, objective, penalty,
	routes, dropped, created_at FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r               Run
		id              string
		routes, dropped string
		created         int64
	)
	if err := row.Scan(&id, &r.Problem, &r.Status, &r.Strategy, &r.Metaheuristic,
		&r.Objective, &r.Penalty, &routes, &dropped, &created); err != nil {
		return Run{}, err
	}
	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("store: run id %q: %w", id, err)
	}
	if err = json.Unmarshal([]byte(routes), &r.Routes); err != nil {
		return Run{}, fmt.Errorf("store: decode routes of %s: %w", id, err)
	}
	if err = json.Unmarshal([]byte(dropped), &r.Dropped); err != nil {
		return Run{}, fmt.Errorf("store: decode dropped of %s: %w", id, err)
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	return r, nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("store: get run %s: %w", id, err)
	}
	return r, nil
}

// List returns up to limit runs, newest first. limit <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectRun+" ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	var errs []error
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		errs = append(errs, fmt.Errorf("store: checkpoint: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: close: %w", err))
	}
	return errors.Join(errs...)
}
