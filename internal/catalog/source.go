package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/xuri/excelize/v2"

	"itemdb/internal"
	"itemdb/internal/config"
	"itemdb/internal/storage"
)

// Source yields the raw records of one dataset.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]internal.RawRecord, error)
}

const (
	sheetsPrefix = "sheets:"
	sqlitePrefix = "sqlite:"
)

// NeedsStore reports whether the descriptor reads from the snapshot store.
func NeedsStore(descriptor string) bool {
	return strings.HasPrefix(strings.TrimSpace(descriptor), sqlitePrefix)
}

// OpenSource resolves a source descriptor. An empty descriptor means the
// dataset is not configured and yields a nil Source.
func OpenSource(ctx context.Context, cfg config.Config, descriptor string, db *storage.DB) (Source, error) {
	descriptor = strings.TrimSpace(descriptor)
	lower := strings.ToLower(descriptor)

	switch {
	case descriptor == "":
		return nil, nil
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		return NewHTTPSource(cfg, descriptor), nil
	case strings.HasPrefix(lower, sheetsPrefix):
		src, err := NewSheetsSource(ctx, cfg, descriptor[len(sheetsPrefix):])
		if err != nil {
			return nil, err
		}
		return src, nil
	case strings.HasPrefix(lower, sqlitePrefix):
		if db == nil {
			return nil, errors.New("sqlite source requires an open snapshot store")
		}
		kind := storage.RecordKind(strings.TrimSpace(descriptor[len(sqlitePrefix):]))
		if kind != storage.KindItems && kind != storage.KindRecipes {
			return nil, fmt.Errorf("unknown snapshot record kind: %s", kind)
		}
		return &StoreSource{db: db, kind: kind}, nil
	default:
		return &FileSource{Path: descriptor}, nil
	}
}

// FileSource reads a local .json array, a .jsonc array with comments and
// trailing commas, or the first sheet of a .xlsx workbook.
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) Records(ctx context.Context) ([]internal.RawRecord, error) {
	ext := strings.ToLower(filepath.Ext(s.Path))
	if ext == ".xlsx" {
		return readXLSX(s.Path)
	}
	blob, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	if ext == ".jsonc" || ext == ".hujson" {
		blob, err = hujson.Standardize(blob)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONC: %w", err)
		}
	}
	return DecodeRecords(blob)
}

func readXLSX(path string) ([]internal.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNotArray
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	table := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(row))
		for _, c := range row {
			cells = append(cells, c)
		}
		table = append(table, cells)
	}
	return tableToRecords(table), nil
}

// tableToRecords turns a header row plus data rows into records. Fully blank
// rows are dropped; short rows simply lack the trailing columns.
func tableToRecords(table [][]any) []internal.RawRecord {
	if len(table) == 0 {
		return []internal.RawRecord{}
	}

	headers := make([]string, 0, len(table[0]))
	for _, h := range table[0] {
		headers = append(headers, strings.TrimSpace(fmt.Sprint(h)))
	}

	out := make([]internal.RawRecord, 0, len(table)-1)
	for _, row := range table[1:] {
		rec := internal.RawRecord{}
		blank := true
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			rec[headers[i]] = cell
			blank = false
		}
		if blank {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// StoreSource reads records saved by the snapshot command.
type StoreSource struct {
	db   *storage.DB
	kind storage.RecordKind
}

func (s *StoreSource) Name() string { return sqlitePrefix + string(s.kind) }

func (s *StoreSource) Records(ctx context.Context) ([]internal.RawRecord, error) {
	return s.db.ListRecords(s.kind)
}
