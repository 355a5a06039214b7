package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store provides SQLite-backed access to the orchestrator state store.
type Store struct {
	db *sql.DB
}

// Open opens the store file at path, creating it if absent. The parent
// directory must already exist (the filesystem layout step guarantees
// that in the pipeline).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	// SQLite serializes writes anyway; a single connection avoids
	// SQLITE_BUSY churn between the pipeline and the health probe.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL on %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy_timeout on %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Bootstrap applies the guarded schema statements. Safe to call any
// number of times; existing tables and their rows are left untouched.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Ping executes a no-op statement to prove the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

// CountAgents returns the number of agent rows. It doubles as the health
// probe's trivial read: it fails unless the bootstrap schema exists.
func (s *Store) CountAgents(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM agents").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListAgents returns all agent rows, newest first. Read-only: the
// orchestrator owns the row data.
func (s *Store) ListAgents(ctx context.Context) ([]AgentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, status, created_at FROM agents ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []AgentRecord
	for rows.Next() {
		var a AgentRecord
		if err := rows.Scan(&a.ID, &a.Name, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// ListTasks returns all task rows, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, agent_name, task_description, status, result, created_at, completed_at FROM tasks ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []TaskRecord
	for rows.Next() {
		var task TaskRecord
		var result sql.NullString
		if err := rows.Scan(&task.ID, &task.AgentName, &task.TaskDescription,
			&task.Status, &result, &task.CreatedAt, &task.CompletedAt); err != nil {
			return nil, err
		}
		task.Result = result.String
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
