// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history persists a record of formula evaluations to a local
// SQLite database, so `formulae history` can show what ran, when, and
// with what result without the host needing its own logging pipeline.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	pkgerrors "github.com/tombee/formulae/pkg/errors"
)

const connectTimeout = 5 * time.Second

// Run is one recorded Evaluator.Run invocation.
type Run struct {
	ID            int64
	Target        string
	CorrelationID string
	Caller        string
	Result        any
	Error         string
	DurationMS    int64
	CreatedAt     time.Time
}

// Store is a SQLite-backed history of formula runs.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path, running migrations
// if needed. Use ":memory:" for an ephemeral store (tests, one-shot CLI
// invocations that don't want a file left behind).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite serializes writes; one connection avoids SQLITE_BUSY retries
	// for a single-process CLI/MCP-server workload.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &pkgerrors.TimeoutError{Operation: "connect to history database", Duration: connectTimeout, Cause: err}
		}
		return nil, fmt.Errorf("connect to history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			target TEXT NOT NULL,
			correlation_id TEXT NOT NULL,
			caller TEXT NOT NULL,
			result TEXT,
			error TEXT,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target)`)
	if err != nil {
		return fmt.Errorf("create target index: %w", err)
	}

	return nil
}

// Record inserts a completed run. Result is JSON-marshaled; a non-empty
// run.Error records a failed run instead of a successful one.
func (s *Store) Record(ctx context.Context, run Run) error {
	var resultJSON any
	if run.Error == "" {
		encoded, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		resultJSON = string(encoded)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (target, correlation_id, caller, result, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.Target, run.CorrelationID, run.Caller, resultJSON, nullString(run.Error),
		run.DurationMS, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

// Recent returns the most recent runs, newest first, optionally filtered
// to a single target. A limit of 0 defaults to 20.
func (s *Store) Recent(ctx context.Context, target string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, target, correlation_id, caller, result, error, duration_ms, created_at
		FROM runs
	`
	args := []any{}
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run          Run
			resultJSON   sql.NullString
			errMsg       sql.NullString
			createdAtStr string
		)

		if err := rows.Scan(&run.ID, &run.Target, &run.CorrelationID, &run.Caller,
			&resultJSON, &errMsg, &run.DurationMS, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if resultJSON.Valid {
			if err := json.Unmarshal([]byte(resultJSON.String), &run.Result); err != nil {
				return nil, fmt.Errorf("unmarshal result for run %d: %w", run.ID, err)
			}
		}
		run.Error = errMsg.String

		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for run %d: %w", run.ID, err)
		}
		run.CreatedAt = createdAt

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
