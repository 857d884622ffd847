package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"wedding-site/internal/models"
)

// Table names one of the append-only record tables.
type Table string

const (
	TableRSVP    Table = "rsvps"
	TablePledges Table = "pledges"
)

// Tables lists every table in a stable order.
var Tables = []Table{TableRSVP, TablePledges}

// Columns returns the header of the table.
func (t Table) Columns() []string {
	switch t {
	case TableRSVP:
		return models.RSVPColumns
	case TablePledges:
		return models.PledgeColumns
	}
	return nil
}

// Valid reports whether t is a known table.
func (t Table) Valid() bool {
	return t.Columns() != nil
}

// Store is append-only persistence for record rows. Rows are written in the
// column order of their table and read back in insertion order.
type Store interface {
	// Append durably adds one row, creating the table if needed.
	Append(ctx context.Context, table Table, row []string) error
	// ReadAll returns every row of the table without the header. A table that
	// was never written yields an empty slice.
	ReadAll(ctx context.Context, table Table) ([][]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Open creates the store selected by backend inside dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendCSV, "":
		return NewCSVStore(dataDir)
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, "records.db"))
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}

func checkRow(table Table, row []string) error {
	cols := table.Columns()
	if cols == nil {
		return fmt.Errorf("unknown table %q", table)
	}
	if len(row) != len(cols) {
		return fmt.Errorf("%s row has %d values, want %d", table, len(row), len(cols))
	}
	return nil
}
