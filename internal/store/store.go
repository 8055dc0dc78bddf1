// Copyright 2025 The Stockpile Authors
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

// Package store is the SQLite persistence layer: products, purchase orders,
// the sales ledger, and the audit trail. Every write operation appends an
// audit_log row describing who did what.
package store

import (
	"database/sql"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a lookup by SKU or id matches no row.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sku TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	price REAL NOT NULL,
	min_price REAL NOT NULL,
	max_price REAL NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 0,
	reorder_level INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	is_promo_active INTEGER NOT NULL DEFAULT 0,
	items_sold_count INTEGER NOT NULL DEFAULT 0,
	reviews_count INTEGER NOT NULL DEFAULT 0,
	discount_rate REAL NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS purchase_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id INTEGER NOT NULL REFERENCES products(id),
	quantity INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'draft',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id INTEGER NOT NULL REFERENCES products(id),
	quantity INTEGER NOT NULL,
	price_at_sale REAL NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	actor TEXT NOT NULL,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id INTEGER,
	details TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// Store wraps a SQLite database. All methods are safe for concurrent use;
// writes are serialized by the mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the SQLite database at path and applies
// the schema. Foreign key enforcement is enabled on every connection.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// A single connection keeps in-memory databases coherent and sidesteps
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.Init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Init applies the schema. It is idempotent.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(schema)
	return errors.Wrap(err, "init schema")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// nowStr formats the current UTC time with seconds precision, the timestamp
// format used throughout the schema.
func nowStr() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// timeStr formats t the way nowStr does, for cutoff comparisons against
// stored timestamps.
func timeStr(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Audit appends an audit trail record. entityID may be zero when the affected
// entity's id is unknown at logging time.
func (s *Store) Audit(actor, action, entityType string, entityID int64, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audit(actor, action, entityType, entityID, details)
}

// audit is Audit without locking, for use inside already-locked write paths.
func (s *Store) audit(actor, action, entityType string, entityID int64, details string) error {
	var id any
	if entityID != 0 {
		id = entityID
	}
	_, err := s.db.Exec(
		"INSERT INTO audit_log (actor, action, entity_type, entity_id, details, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		actor, action, entityType, id, details, nowStr(),
	)
	return errors.Wrap(err, "insert audit_log")
}

// AuditCount returns the number of audit trail records. Useful for tests and
// health checks.
func (s *Store) AuditCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM audit_log").Scan(&n)
	return n, errors.Wrap(err, "count audit_log")
}
