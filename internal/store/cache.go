// Package store provides the SQLite transaction cache and the Postgres
// reader for the dashboard database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/runway/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed caching of parsed statement files.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces every cached transaction for path and records the
// file's tracking info.
func (c *Cache) SaveFile(path string, txs []model.Transaction, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)`, path, mtimeNs, sizeBytes, now)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM transactions WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO transactions
		(id, file_path, kind, amount, occurred_at, category_id, description,
		 counterparty, reference, is_recurring, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range txs {
		recurring := 0
		if t.IsRecurring {
			recurring = 1
		}
		_, err = stmt.Exec(
			t.ID, path, string(t.Kind), t.Amount, t.OccurredAt.UTC().Format(time.RFC3339Nano),
			t.CategoryID, t.Description, t.Counterparty, t.Reference, recurring, string(t.Source),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadAllTransactions reads every cached transaction, oldest first.
func (c *Cache) LoadAllTransactions() ([]model.Transaction, error) {
	rows, err := c.db.Query(`SELECT
		id, file_path, kind, amount, occurred_at, category_id, description,
		counterparty, reference, is_recurring, source
		FROM transactions ORDER BY occurred_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var kind, occurred string
		var category, desc, counterparty, ref, src sql.NullString
		var recurring int

		err := rows.Scan(&t.ID, &t.FilePath, &kind, &t.Amount, &occurred, &category, &desc,
			&counterparty, &ref, &recurring, &src)
		if err != nil {
			return nil, err
		}

		t.Kind = model.Kind(kind)
		t.OccurredAt, err = time.Parse(time.RFC3339Nano, occurred)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		t.CategoryID = category.String
		t.Description = desc.String
		t.Counterparty = counterparty.String
		t.Reference = ref.String
		t.Source = model.Source(src.String)
		t.IsRecurring = recurring != 0
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// DeleteFile removes a tracked file and its transactions.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// TransactionCount returns the number of cached transactions.
func (c *Cache) TransactionCount() (int, error) {
	var n int
	err := c.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&n)
	return n, err
}
