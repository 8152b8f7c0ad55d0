package store

import (
	"context"
	"fmt"
)

// Read executes a parameterized SELECT inside a transaction and returns the
// result set as a Table.
//
// Column names come from the result set. Zero rows yield an empty Table that
// still carries the column names, never nil.
func (s *Store) Read(ctx context.Context, query string, params []any) (*Table, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("read: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	rows, err := tx.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("read: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read: columns: %w", err)
	}

	table := &Table{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read: scan: %w", err)
		}
		table.Rows = append(table.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read: iterate: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("read: close rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("read: commit: %w", err)
	}

	return table, nil
}

// ReadOrRecreate runs Read and, if the table is missing, bootstraps schema
// once and retries exactly once. A second failure is returned as is.
func (s *Store) ReadOrRecreate(ctx context.Context, schema Schema, query string, params []any) (*Table, error) {
	table, err := s.Read(ctx, query, params)
	if err == nil {
		return table, nil
	}
	if !IsSchemaMissing(err) {
		return nil, err
	}

	if err := s.Bootstrap(ctx, schema); err != nil {
		return nil, err
	}
	return s.Read(ctx, query, params)
}
