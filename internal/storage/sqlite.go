package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is the default Sheet backend, a single local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sheet_rows (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            sheet TEXT NOT NULL,
            is_header INTEGER NOT NULL DEFAULT 0,
            cells TEXT NOT NULL,
            created_at TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet, id);`,
		`CREATE TABLE IF NOT EXISTS search_settings (
            sheet TEXT NOT NULL,
            position INTEGER NOT NULL,
            keyword TEXT NOT NULL,
            PRIMARY KEY (sheet, keyword)
        );`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLite) EnsureHeader(ctx context.Context, table string, header []string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_rows WHERE sheet = ? AND is_header = 1`, table).Scan(&n); err != nil {
		return fmt.Errorf("count header %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	b, _ := json.Marshal(header)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO sheet_rows(sheet, is_header, cells, created_at) VALUES(?, 1, ?, ?)`, table, string(b), time.Now()); err != nil {
		return fmt.Errorf("insert header %s: %w", table, err)
	}
	return nil
}

func (s *SQLite) ExistingLinks(ctx context.Context, table string, col int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM sheet_rows WHERE sheet = ? AND is_header = 0 ORDER BY id`, table)
	if err != nil {
		return nil, fmt.Errorf("query rows %s: %w", table, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan rows %s: %w", table, err)
		}
		if v := cell(raw, col); v != "" {
			out = append(out, v)
		}
	}
	return out, rows.Err()
}

func (s *SQLite) AppendRows(ctx context.Context, table string, rows []Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sheet_rows(sheet, is_header, cells, created_at) VALUES(?, 0, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	now := time.Now()
	for _, r := range rows {
		b, _ := json.Marshal(r)
		if _, err := stmt.ExecContext(ctx, table, string(b), now); err != nil {
			return fmt.Errorf("append %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) AppendRow(ctx context.Context, table string, row Row) error {
	b, _ := json.Marshal(row)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO sheet_rows(sheet, is_header, cells, created_at) VALUES(?, 0, ?, ?)`, table, string(b), time.Now()); err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return nil
}

func (s *SQLite) Keywords(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT keyword FROM search_settings WHERE sheet = ? ORDER BY position`, table)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan keywords: %w", err)
		}
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out, rows.Err()
}

func (s *SQLite) AddKeyword(ctx context.Context, table, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("empty keyword")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO search_settings(sheet, position, keyword)
        VALUES(?, (SELECT COALESCE(MAX(position), 0) + 1 FROM search_settings WHERE sheet = ?), ?)
        ON CONFLICT(sheet, keyword) DO NOTHING`, table, table, keyword)
	if err != nil {
		return fmt.Errorf("add keyword %s: %w", keyword, err)
	}
	return nil
}

// cell decodes a stored row and returns column col, or "" when absent.
func cell(raw string, col int) string {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil || col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}
