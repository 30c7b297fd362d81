// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package prefs keeps local user state: named selection presets and trait
// usage counters, stored in an SQLite file next to the application.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/TobyLyon/MOJOpfpMaker/mojo"
)

var ErrNoPreset = errors.New("prefs: preset not found")

const schema = `
CREATE TABLE IF NOT EXISTS presets (
    name       TEXT PRIMARY KEY,
    selections TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE TABLE IF NOT EXISTS trait_counts (
    category  TEXT NOT NULL,
    option_id TEXT NOT NULL,
    uses      INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (category, option_id)
);
CREATE TABLE IF NOT EXISTS counters (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL DEFAULT 0
);`

// Counter names the session persists across restarts.
const (
	CounterOrdersServed = "orders_served"
	CounterOrderNumber  = "order_number"
)

// Store is the preference database. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the preference database at path with
// production-safe pragmas.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("prefs: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("prefs: open: %w", err)
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("prefs: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prefs: schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SavePreset stores a named selection, replacing any existing preset of the
// same name.
func (s *Store) SavePreset(ctx context.Context, name string, sels []mojo.Selection) error {
	raw, err := json.Marshal(sels)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO presets (name, selections, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(name) DO UPDATE SET selections = excluded.selections, updated_at = excluded.updated_at`,
		name, string(raw))
	return err
}

// LoadPreset returns a named selection.
func (s *Store) LoadPreset(ctx context.Context, name string) ([]mojo.Selection, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT selections FROM presets WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPreset
	}
	if err != nil {
		return nil, err
	}
	var sels []mojo.Selection
	if err := json.Unmarshal([]byte(raw), &sels); err != nil {
		return nil, fmt.Errorf("prefs: corrupt preset %q: %w", name, err)
	}
	return sels, nil
}

// ListPresets returns preset names, most recently updated first.
func (s *Store) ListPresets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM presets ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeletePreset removes a named selection.
func (s *Store) DeletePreset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoPreset
	}
	return nil
}

// BumpUsage increments the usage counter of every selected trait.
func (s *Store) BumpUsage(ctx context.Context, sels []mojo.Selection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, sel := range sels {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trait_counts (category, option_id, uses) VALUES (?, ?, 1)
			ON CONFLICT(category, option_id) DO UPDATE SET uses = uses + 1`,
			string(sel.Category), sel.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Counter returns a named counter, zero when it was never written.
func (s *Store) Counter(ctx context.Context, name string) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

// SetCounter overwrites a named counter.
func (s *Store) SetCounter(ctx context.Context, name string, value int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO counters (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		name, value)
	return err
}

// TraitCount is a usage tally for one catalog option.
type TraitCount struct {
	Category mojo.Category
	ID       string
	Uses     int
}

// TopTraits returns the most used options of a category.
func (s *Store) TopTraits(ctx context.Context, c mojo.Category, limit int) ([]TraitCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, option_id, uses FROM trait_counts
		WHERE category = ? ORDER BY uses DESC, option_id LIMIT ?`,
		string(c), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TraitCount
	for rows.Next() {
		var tc TraitCount
		var cat string
		if err := rows.Scan(&cat, &tc.ID, &tc.Uses); err != nil {
			return nil, err
		}
		tc.Category = mojo.Category(cat)
		out = append(out, tc)
	}
	return out, rows.Err()
}
