// Package xlsx appends completed intakes to an Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/domain"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet records are written to.
const DefaultSheet = "Sheet1"

// Sink implements ports.RecordSink on top of a single .xlsx file.
// Appends are serialized by a mutex and each one rewrites the workbook through
// a temporary file, so a failed append leaves the previous rows intact.
type Sink struct {
	path   string
	sheet  string
	logger *slog.Logger
	mu     sync.Mutex
}

type Option func(*Sink)

// WithSheet sets the worksheet name.
func WithSheet(name string) Option {
	return func(s *Sink) {
		if name != "" {
			s.sheet = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a sink writing to path. The file is created on first append.
func New(path string, opts ...Option) *Sink {
	s := &Sink{
		path:   path,
		sheet:  DefaultSheet,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the workbook location.
func (s *Sink) Path() string {
	return s.path
}

// Append adds the record as a new row. Columns are matched by header name;
// headers missing from an existing workbook are appended to the right.
func (s *Sink) Append(ctx context.Context, rec domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", s.sheet, err)
	}

	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	header, changed := mergeHeader(header, domain.Columns())
	if changed {
		if err := f.SetSheetRow(s.sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	values := rec.Map()
	row := make([]any, len(header))
	for i, col := range header {
		if v, ok := values[col]; ok {
			row[i] = v
		}
	}

	// Row 1 is the header; len(rows) already counts it when present.
	next := len(rows) + 1
	if len(rows) == 0 {
		next = 2
	}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(s.sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	if err := s.save(f); err != nil {
		return err
	}

	s.logger.Debug("Record appended", "id", rec.ID, "row", next, "file", s.path)
	return nil
}

// Records reads back every row in the workbook.
func (s *Sink) Records() ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return []domain.Record{}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", s.sheet, err)
	}

	records := []domain.Record{}
	if len(rows) < 2 {
		return records, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		index[col] = i
	}
	get := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for _, row := range rows[1:] {
		rec := domain.Record{
			ID:           get(row, "id"),
			Phone:        get(row, "phone"),
			State:        domain.State(get(row, "state")),
			FirstName:    get(row, "first_name"),
			LastName:     get(row, "last_name"),
			HonoreeName:  get(row, "honoree_name"),
			Relationship: get(row, "relationship"),
			TShirtSize:   get(row, "tshirt_size"),
			ImageURL:     get(row, "image_url"),
		}
		if secs, err := strconv.ParseFloat(get(row, "last_update"), 64); err == nil && secs > 0 {
			rec.LastUpdate = time.Unix(0, int64(secs*float64(time.Second))).UTC()
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Sink) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat workbook: %w", err)
		}
		f := excelize.NewFile()
		if first := f.GetSheetName(0); first != s.sheet {
			if err := f.SetSheetName(first, s.sheet); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
		return f, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if idx, err := f.GetSheetIndex(s.sheet); err != nil || idx < 0 {
		if _, err := f.NewSheet(s.sheet); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", s.sheet, err)
		}
	}
	return f, nil
}

// save writes to a sibling temp file and renames it over the workbook.
func (s *Sink) save(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure workbook directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := f.Write(tmp); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace workbook: %w", err)
	}
	return nil
}

// mergeHeader appends any missing columns to an existing header.
func mergeHeader(existing, want []string) ([]string, bool) {
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}
	out := append([]string(nil), existing...)
	changed := false
	for _, c := range want {
		if !have[c] {
			out = append(out, c)
			changed = true
		}
	}
	return out, changed
}
