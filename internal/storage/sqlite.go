package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps each table in a SQLite table of TEXT columns. The rowid
// preserves insertion order.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures both
// tables exist.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=FULL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, table := range Tables {
		cols := make([]string, 0, len(table.Columns())+1)
		cols = append(cols, "id INTEGER PRIMARY KEY AUTOINCREMENT")
		for _, c := range table.Columns() {
			cols = append(cols, c+" TEXT NOT NULL DEFAULT ''")
		}
		stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", "))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// Append inserts one row in its own implicit transaction.
func (s *SQLiteStore) Append(ctx context.Context, table Table, row []string) error {
	if err := checkRow(table, row); err != nil {
		return err
	}

	cols := table.Columns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)

	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// ReadAll returns the rows of the table ordered by insertion.
func (s *SQLiteStore) ReadAll(ctx context.Context, table Table) ([][]string, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	cols := table.Columns()
	stmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(cols, ", "), table)
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	out := [][]string{}
	for rows.Next() {
		values := make([]string, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
