// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/emptylab/driftbottle/internal/store"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ store.BottleStore = (*BottleStore)(nil)

// maxOpenConns bounds the shared connection pool. SQLite serializes
// writes anyway; a small pool keeps reader concurrency without
// unbounded file handles.
const maxOpenConns = 8

// BottleStore implements store.BottleStore backed by SQLite with sqlite-vec.
// A single pooled *sql.DB is shared by all requests; connections are
// acquired per statement and released on every exit path.
type BottleStore struct {
	db         *sql.DB
	dimensions int

	mu       sync.Mutex
	migrated bool
}

// Open opens (or creates) the SQLite database at dbPath. The passage table
// and vec0 virtual table are not created here: schema creation is deferred
// to the first ingest, so a never-written store stays schemaless.
func Open(dbPath string, dimensions int) (*BottleStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, drifterr.Errorf(drifterr.CodeStoreConnectionFailure, "opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, drifterr.Errorf(drifterr.CodeStoreConnectionFailure, "pinging sqlite db: %w", err)
	}

	return &BottleStore{db: db, dimensions: dimensions}, nil
}

// ensureSchema creates the passage table and vector index if absent.
func (s *BottleStore) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.migrated {
		return nil
	}

	const bottleDDL = `
CREATE TABLE IF NOT EXISTS drift_bottles (
	id      TEXT PRIMARY KEY,
	owner   TEXT,
	title   TEXT,
	content TEXT
)`
	if _, err := s.db.ExecContext(ctx, bottleDDL); err != nil {
		return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "creating drift_bottles table: %w", err)
	}

	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS bottle_vectors USING vec0(id TEXT PRIMARY KEY, embedding float[%d] distance_metric=cosine)`,
		s.dimensions,
	)
	if _, err := s.db.ExecContext(ctx, vecDDL); err != nil {
		return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "creating bottle_vectors virtual table: %w", err)
	}

	s.migrated = true
	return nil
}

// Upsert writes passages and their vectors in one transaction.
func (s *BottleStore) Upsert(ctx context.Context, rows []store.EmbeddedPassage) error {
	if len(rows) == 0 {
		return nil
	}

	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range rows {
		blob, err := sqlite_vec.SerializeFloat32(row.Embedding)
		if err != nil {
			return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "serializing embedding %s: %w", row.ID, err)
		}

		const bottleQ = `INSERT INTO drift_bottles(id, owner, title, content) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET owner = excluded.owner, title = excluded.title, content = excluded.content`
		if _, err := tx.ExecContext(ctx, bottleQ, row.ID, row.Owner, row.Title, row.Content); err != nil {
			return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "upserting passage %s: %w", row.ID, err)
		}

		// vec0 does not support ON CONFLICT; delete first for upsert.
		if _, err := tx.ExecContext(ctx, `DELETE FROM bottle_vectors WHERE id = ?`, row.ID); err != nil {
			return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "deleting existing vector %s: %w", row.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO bottle_vectors(id, embedding) VALUES (?, ?)`, row.ID, blob); err != nil {
			return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "inserting vector %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "committing upsert: %w", err)
	}
	return nil
}

// Search performs a k-nearest-neighbor query. The vec0 table is declared
// with cosine distance, so similarity is reported as 1 - distance.
func (s *BottleStore) Search(ctx context.Context, query []float32, k int) ([]store.Match, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "serializing query vector: %w", err)
	}

	const q = `SELECT v.id, v.distance, b.owner, b.title, b.content
FROM bottle_vectors v
JOIN drift_bottles b ON b.id = v.id
WHERE v.embedding MATCH ? AND k = ?
ORDER BY v.distance`

	rows, err := s.db.QueryContext(ctx, q, blob, k)
	if err != nil {
		return nil, drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "searching vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []store.Match
	for rows.Next() {
		var m store.Match
		var distance float64

		if err := rows.Scan(&m.Passage.ID, &distance, &m.Passage.Owner, &m.Passage.Title, &m.Passage.Content); err != nil {
			return nil, drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "scanning match: %w", err)
		}
		m.Score = 1 - distance

		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "iterating matches: %w", err)
	}

	return matches, nil
}

// FindByOwnerTitle returns passages matching owner and exact title.
// "no such table" means the store has never been written; that reports
// as no passages, not an error.
func (s *BottleStore) FindByOwnerTitle(ctx context.Context, owner, title string) ([]store.Passage, error) {
	const q = `SELECT id, owner, title, content FROM drift_bottles WHERE owner = ? AND title = ?`

	rows, err := s.db.QueryContext(ctx, q, owner, title)
	if err != nil {
		if isNoSuchTable(err) {
			return nil, nil
		}
		return nil, drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "querying passages for %s/%s: %w", owner, title, err)
	}
	defer func() { _ = rows.Close() }()

	var passages []store.Passage
	for rows.Next() {
		var p store.Passage
		if err := rows.Scan(&p.ID, &p.Owner, &p.Title, &p.Content); err != nil {
			return nil, drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "scanning passage: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, drifterr.Errorf(drifterr.CodeStoreDatabaseFailure, "iterating passages: %w", err)
	}

	return passages, nil
}

// Close closes the underlying database pool.
func (s *BottleStore) Close() error {
	return s.db.Close()
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
