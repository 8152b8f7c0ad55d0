package store

import (
	"context"
	"fmt"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Insert executes insertSQL once per row inside a single transaction.
// An empty batch is a no-op.
//
// insertSQL is expected to be an INSERT OR IGNORE statement, so rows whose
// primary key already exists are silently skipped. Any other failure rolls
// back the whole batch. Returns the number of rows actually inserted.
func (s *Store) Insert(ctx context.Context, insertSQL string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("insert: prepare: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for i, row := range rows {
		result, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return 0, fmt.Errorf("insert: row %d: %w", i, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("insert: rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert: commit: %w", err)
	}

	return inserted, nil
}

// Exec runs a mutating statement inside a transaction and returns the number
// of rows affected.
func (s *Store) Exec(ctx context.Context, query string, params []any) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("exec: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("exec: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("exec: commit: %w", err)
	}
	return n, nil
}

// DropTable drops the named table. The name must be a plain identifier.
func (s *Store) DropTable(ctx context.Context, name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("drop table %q: %w", name, ErrInvalidIdentifier)
	}
	if _, err := s.Exec(ctx, "DROP TABLE "+name, nil); err != nil {
		return fmt.Errorf("drop table %s: %w", name, err)
	}
	return nil
}

// ValidIdentifier reports whether name can be spliced into SQL as a table or
// column name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
