package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Sheet backend for shared deployments.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects with a pgx connection string and applies the schema.
func OpenPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Postgres{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sheet_rows (
			id BIGSERIAL PRIMARY KEY,
			sheet TEXT NOT NULL,
			is_header BOOLEAN NOT NULL DEFAULT FALSE,
			cells JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sheet_rows_sheet ON sheet_rows(sheet, id)`,
		`CREATE TABLE IF NOT EXISTS search_settings (
			sheet TEXT NOT NULL,
			position INT NOT NULL,
			keyword TEXT NOT NULL,
			PRIMARY KEY (sheet, keyword)
		)`,
	}
	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *Postgres) EnsureHeader(ctx context.Context, table string, header []string) error {
	b, _ := json.Marshal(header)
	_, err := s.pool.Exec(ctx, `INSERT INTO sheet_rows (sheet, is_header, cells)
		SELECT $1, TRUE, $2::jsonb
		WHERE NOT EXISTS (SELECT 1 FROM sheet_rows WHERE sheet = $1 AND is_header)`, table, string(b))
	if err != nil {
		return fmt.Errorf("insert header %s: %w", table, err)
	}
	return nil
}

func (s *Postgres) ExistingLinks(ctx context.Context, table string, col int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT COALESCE(cells->>$2::int, '') FROM sheet_rows WHERE sheet = $1 AND NOT is_header ORDER BY id`, table, col)
	if err != nil {
		return nil, fmt.Errorf("query rows %s: %w", table, err)
	}
	links, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan rows %s: %w", table, err)
	}
	out := links[:0]
	for _, l := range links {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Postgres) AppendRows(ctx context.Context, table string, rows []Row) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	batch := &pgx.Batch{}
	for _, r := range rows {
		b, _ := json.Marshal(r)
		batch.Queue(`INSERT INTO sheet_rows (sheet, is_header, cells) VALUES ($1, FALSE, $2::jsonb)`, table, string(b))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return tx.Commit(ctx)
}

func (s *Postgres) AppendRow(ctx context.Context, table string, row Row) error {
	b, _ := json.Marshal(row)
	if _, err := s.pool.Exec(ctx, `INSERT INTO sheet_rows (sheet, is_header, cells) VALUES ($1, FALSE, $2::jsonb)`, table, string(b)); err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return nil
}

func (s *Postgres) Keywords(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT keyword FROM search_settings WHERE sheet = $1 ORDER BY position`, table)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Postgres) AddKeyword(ctx context.Context, table, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("empty keyword")
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO search_settings (sheet, position, keyword)
		VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM search_settings WHERE sheet = $1), $2)
		ON CONFLICT (sheet, keyword) DO NOTHING`, table, keyword)
	if err != nil {
		return fmt.Errorf("add keyword %s: %w", keyword, err)
	}
	return nil
}
