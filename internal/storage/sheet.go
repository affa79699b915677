// Package storage persists collected rows in a spreadsheet-like tabular store
// and keeps the seen-hash registry.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"viral-scout/internal/model"
)

// Row is one stored line; cells follow the table's header.
type Row []string

// Sheet is a tabular store of named tables that each start with a header row.
type Sheet interface {
	// EnsureHeader writes header as the first row of table if it has none.
	EnsureHeader(ctx context.Context, table string, header []string) error
	// ExistingLinks reads column col of every data row in table.
	ExistingLinks(ctx context.Context, table string, col int) ([]string, error)
	// AppendRows writes rows in one batch; either all or none are stored.
	AppendRows(ctx context.Context, table string, rows []Row) error
	AppendRow(ctx context.Context, table string, row Row) error
	// Keywords lists the search terms of the settings table in order.
	Keywords(ctx context.Context, table string) ([]string, error)
	AddKeyword(ctx context.Context, table, keyword string) error
	Close() error
}

var (
	BlogHeader = []string{"수집일시", "키워드", "제목", "날짜", "링크", "상태(신규)", "요약", "주요내용", "경쟁사언급", "감성", "액션포인트"}
	CafeHeader = []string{"수집일시", "키워드", "카페명", "제목", "날짜", "링크", "본문내용요약", "댓글수", "핵심연관키워드", "경쟁사언급"}
)

// Link column positions within BlogHeader and CafeHeader.
const (
	BlogLinkColumn = 4
	CafeLinkColumn = 5
)

const timestampLayout = "2006-01-02 15:04:05"

// StatusNew marks a freshly collected blog row.
const StatusNew = "신규"

// Header returns the header of the table holding src rows.
func Header(src model.Source) []string {
	if src == model.SourceCafe {
		return CafeHeader
	}
	return BlogHeader
}

// LinkColumn returns the link column index for src rows.
func LinkColumn(src model.Source) int {
	if src == model.SourceCafe {
		return CafeLinkColumn
	}
	return BlogLinkColumn
}

// NewRow lays out an accepted post in its table's column order.
func NewRow(collected time.Time, p model.Post, a model.AnalysisResult) Row {
	ts := collected.Format(timestampLayout)
	if p.Source == model.SourceCafe {
		return Row{
			ts,
			p.Keyword,
			p.GroupName,
			p.Title,
			p.PublishedDate,
			p.Link,
			a.Summary,
			strconv.Itoa(len(p.Comments)),
			a.CoreKeywordsText(),
			a.BrandMentionsText(),
		}
	}
	return Row{
		ts,
		p.Keyword,
		p.Title,
		p.PublishedDate,
		p.Link,
		StatusNew,
		a.Summary,
		a.KeyNotes,
		a.BrandMentionsText(),
		a.Sentiment.Label(),
		a.ActionPoint,
	}
}

// Flush stores rows, first as one batch and then row by row with pacing if
// the batch fails. It returns how many rows were stored and logs any shortfall.
func Flush(ctx context.Context, s Sheet, table string, rows []Row, pace time.Duration) int {
	if len(rows) == 0 {
		return 0
	}
	err := s.AppendRows(ctx, table, rows)
	if err == nil {
		slog.Info("storage: batch saved", "table", table, "rows", len(rows))
		return len(rows)
	}
	slog.Warn("storage: batch write failed, retrying row by row", "table", table, "rows", len(rows), "err", err)

	saved := 0
	for i, r := range rows {
		if i > 0 && pace > 0 {
			select {
			case <-ctx.Done():
				slog.Error("storage: row writes interrupted", "table", table, "saved", saved, "expected", len(rows))
				return saved
			case <-time.After(pace):
			}
		}
		if err := s.AppendRow(ctx, table, r); err != nil {
			slog.Warn("storage: row write failed", "table", table, "row", i, "err", err)
			continue
		}
		saved++
	}
	if saved != len(rows) {
		slog.Error("storage: saved count mismatch", "table", table, "saved", saved, "expected", len(rows))
	}
	return saved
}

// Open connects the configured backend.
func Open(ctx context.Context, driver, dsn string) (Sheet, error) {
	switch driver {
	case "sqlite":
		s, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}
}
