// Package store provides a SQLite-backed cache for parsed workbook rows.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/salesdash/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotCached is returned by LoadSheet when no entry exists.
var ErrNotCached = errors.New("sheet not cached")

// childTables are cleared child-first so deletes work even without
// foreign key enforcement.
var childTables = []string{"row_investments", "sheet_rows", "sheet_channels", "sheets"}

// Cache provides SQLite-backed sheet caching.
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

// SheetEntry is one parsed sheet as stored in the cache.
type SheetEntry struct {
	Path       string
	OptionsKey string
	Sheet      string
	File       FileInfo
	Channels   []string
	Rows       []model.Row
	Cleaned    int
	Failures   int
}

// GetTrackedFile returns the stored mtime/size for a path and options key.
func (c *Cache) GetTrackedFile(path, optionsKey string) (FileInfo, bool, error) {
	var fi FileInfo
	err := c.db.QueryRow(`SELECT mtime_ns, size_bytes FROM sheets
		WHERE file_path = ? AND options_key = ?`, path, optionsKey).Scan(&fi.MtimeNs, &fi.SizeBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return fi, false, nil
	}
	if err != nil {
		return fi, false, err
	}
	return fi, true, nil
}

// SaveSheet replaces the cached rows for e.Path and e.OptionsKey.
func (c *Cache) SaveSheet(e SheetEntry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range childTables {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE file_path = ? AND options_key = ?", e.Path, e.OptionsKey); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO sheets
		(file_path, options_key, sheet, mtime_ns, size_bytes, cleaned_cells, parse_failures, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Path, e.OptionsKey, e.Sheet, e.File.MtimeNs, e.File.SizeBytes, e.Cleaned, e.Failures, now,
	)
	if err != nil {
		return err
	}

	for i, ch := range e.Channels {
		_, err = tx.Exec(`INSERT INTO sheet_channels (file_path, options_key, position, channel)
			VALUES (?, ?, ?, ?)`, e.Path, e.OptionsKey, i, ch)
		if err != nil {
			return err
		}
	}

	for i, r := range e.Rows {
		_, err = tx.Exec(`INSERT INTO sheet_rows
			(file_path, options_key, position, month, month_id, revenue, customers, line)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Path, e.OptionsKey, i, r.Month, r.MonthID, r.Revenue, r.Customers, r.Line,
		)
		if err != nil {
			return err
		}
		for ch, amount := range r.Investments {
			_, err = tx.Exec(`INSERT INTO row_investments
				(file_path, options_key, position, channel, amount)
				VALUES (?, ?, ?, ?, ?)`, e.Path, e.OptionsKey, i, ch, amount)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadSheet reads a cached sheet. Rows come back in their saved order.
func (c *Cache) LoadSheet(path, optionsKey string) (SheetEntry, error) {
	e := SheetEntry{Path: path, OptionsKey: optionsKey}

	var sheet sql.NullString
	err := c.db.QueryRow(`SELECT sheet, mtime_ns, size_bytes, cleaned_cells, parse_failures
		FROM sheets WHERE file_path = ? AND options_key = ?`, path, optionsKey).
		Scan(&sheet, &e.File.MtimeNs, &e.File.SizeBytes, &e.Cleaned, &e.Failures)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotCached
	}
	if err != nil {
		return e, err
	}
	e.Sheet = sheet.String

	chRows, err := c.db.Query(`SELECT channel FROM sheet_channels
		WHERE file_path = ? AND options_key = ? ORDER BY position`, path, optionsKey)
	if err != nil {
		return e, err
	}
	for chRows.Next() {
		var ch string
		if err := chRows.Scan(&ch); err != nil {
			_ = chRows.Close()
			return e, err
		}
		e.Channels = append(e.Channels, ch)
	}
	_ = chRows.Close()
	if err := chRows.Err(); err != nil {
		return e, err
	}

	rows, err := c.db.Query(`SELECT month, month_id, revenue, customers, line
		FROM sheet_rows WHERE file_path = ? AND options_key = ? ORDER BY position`, path, optionsKey)
	if err != nil {
		return e, err
	}
	for rows.Next() {
		r := model.Row{Investments: make(map[string]float64, len(e.Channels))}
		if err := rows.Scan(&r.Month, &r.MonthID, &r.Revenue, &r.Customers, &r.Line); err != nil {
			_ = rows.Close()
			return e, err
		}
		e.Rows = append(e.Rows, r)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return e, err
	}

	// Batch-load investments
	invRows, err := c.db.Query(`SELECT position, channel, amount FROM row_investments
		WHERE file_path = ? AND options_key = ?`, path, optionsKey)
	if err != nil {
		return e, err
	}
	defer func() { _ = invRows.Close() }()

	for invRows.Next() {
		var (
			pos    int
			ch     string
			amount float64
		)
		if err := invRows.Scan(&pos, &ch, &amount); err != nil {
			return e, err
		}
		if pos >= 0 && pos < len(e.Rows) {
			e.Rows[pos].Investments[ch] = amount
		}
	}

	return e, invRows.Err()
}

// DeleteSheet removes every cached entry for a file.
func (c *Cache) DeleteSheet(path string) error {
	for _, table := range childTables {
		if _, err := c.db.Exec("DELETE FROM "+table+" WHERE file_path = ?", path); err != nil {
			return err
		}
	}
	return nil
}

// SheetCount returns the number of cached sheets.
func (c *Cache) SheetCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM sheets").Scan(&count)
	return count, err
}
