// Package sqlite stores region snapshots in a local SQLite database using
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/modelwatch/pkg/constants"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/state"
)

const schema = `CREATE TABLE IF NOT EXISTS model_state (
	region       TEXT PRIMARY KEY,
	model_ids    TEXT NOT NULL,
	last_updated TEXT NOT NULL
)`

// Backend is a state.Backend over a single table keyed by region.
type Backend struct {
	db *sql.DB
}

var _ state.Backend = (*Backend)(nil)

// Open opens the database at path, creating parent directories and the
// schema as needed. ":memory:" opens a private in-memory database.
func Open(path string) (*Backend, error) {
	if path == "" {
		return nil, errors.NewConfigError("sqlite", "database path is required", nil)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapResource("open", "sqlite", path, err)
	}
	if path == ":memory:" {
		// every new connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range append(pragmas, schema) {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", stmt, err)
		}
	}

	return &Backend{db: db}, nil
}

// Load implements state.Backend.
func (b *Backend) Load(ctx context.Context, region string) (*state.Record, error) {
	var doc state.Document
	var ids string
	err := b.db.QueryRowContext(ctx,
		`SELECT region, model_ids, last_updated FROM model_state WHERE region = ?`, region,
	).Scan(&doc.Region, &ids, &doc.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("state record", region)
	}
	if err != nil {
		return nil, errors.WrapResource("select", "state record", region, err)
	}
	if err := json.Unmarshal([]byte(ids), &doc.ModelIDs); err != nil {
		return nil, errors.WrapParse("json", region, err)
	}
	return doc.Record(), nil
}

// Put implements state.Backend.
func (b *Backend) Put(ctx context.Context, rec state.Record) error {
	doc := rec.Document()
	ids, err := json.Marshal(doc.ModelIDs)
	if err != nil {
		return errors.WrapParse("json", rec.Region, err)
	}
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO model_state (region, model_ids, last_updated) VALUES (?, ?, ?)
		ON CONFLICT(region) DO UPDATE SET
			model_ids = excluded.model_ids,
			last_updated = excluded.last_updated`,
		doc.Region, string(ids), doc.LastUpdated)
	if err != nil {
		return errors.WrapResource("upsert", "state record", rec.Region, err)
	}
	return nil
}

// Regions lists every region with a stored record.
func (b *Backend) Regions(ctx context.Context) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT region FROM model_state ORDER BY region`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var regions []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// Close implements state.Backend.
func (b *Backend) Close() error {
	return b.db.Close()
}
