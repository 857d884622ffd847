package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// CSVStore keeps each table in <dir>/<table>.csv with a header line.
type CSVStore struct {
	mu  sync.RWMutex
	dir string
}

// NewCSVStore creates a CSV store rooted at dir. The directory is created on
// the first append.
func NewCSVStore(dir string) (*CSVStore, error) {
	if dir == "" {
		return nil, errors.New("csv store needs a directory")
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) path(table Table) string {
	return filepath.Join(s.dir, string(table)+".csv")
}

// Append writes one row and syncs the file before returning.
func (s *CSVStore) Append(ctx context.Context, table Table, row []string) error {
	if err := checkRow(table, row); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(s.path(table), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", table, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat %s: %w", table, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(table.Columns()); err != nil {
			f.Close()
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		f.Close()
		return fmt.Errorf("failed to write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", table, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync %s: %w", table, err)
	}
	return f.Close()
}

// ReadAll returns the rows of the table in file order.
func (s *CSVStore) ReadAll(ctx context.Context, table Table) ([][]string, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return [][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", table, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	if len(records) == 0 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

// Close is a no-op; files are opened per call.
func (s *CSVStore) Close() error {
	return nil
}
