package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"itemdb/internal"
)

type RecordKind string

const (
	KindItems   RecordKind = "items"
	KindRecipes RecordKind = "recipes"
)

const MetaSnapshotSavedAt = "snapshot.saved_at"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  kind TEXT NOT NULL,
  position INTEGER NOT NULL,
  raw_json TEXT NOT NULL,
  PRIMARY KEY(kind, position)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

const upsertMetadata = `
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`

// SaveSnapshot replaces both record sets and writes meta plus
// snapshot.saved_at in a single transaction.
func (d *DB) SaveSnapshot(items, recipes []internal.RawRecord, meta map[string]string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM records`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records (kind, position, raw_json) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	insert := func(kind RecordKind, records []internal.RawRecord) error {
		for i, rec := range records {
			blob, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encode %s record %d: %w", kind, i, err)
			}
			if _, err := stmt.Exec(string(kind), i, string(blob)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(KindItems, items); err != nil {
		return err
	}
	if err := insert(KindRecipes, recipes); err != nil {
		return err
	}

	for key, value := range meta {
		if _, err := tx.Exec(upsertMetadata, key, value); err != nil {
			return fmt.Errorf("set metadata %s: %w", key, err)
		}
	}
	if _, err := tx.Exec(upsertMetadata, MetaSnapshotSavedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) ListRecords(kind RecordKind) ([]internal.RawRecord, error) {
	rows, err := d.conn.Query(`SELECT raw_json FROM records WHERE kind = ? ORDER BY position ASC`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.RawRecord{}
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var rec internal.RawRecord
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", kind, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) CountRecords(kind RecordKind) (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM records WHERE kind = ?`, string(kind)).Scan(&n)
	return n, err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
