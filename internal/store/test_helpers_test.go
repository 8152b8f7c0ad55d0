package store

import (
	"path/filepath"
	"testing"
)

var widgetSchema = Schema{
	Name: "widgets",
	Create: `CREATE TABLE IF NOT EXISTS widgets (
		id TEXT NOT NULL,
		name TEXT,
		weight REAL,
		active BOOLEAN,
		PRIMARY KEY (id))`,
	Index: `CREATE INDEX IF NOT EXISTS idx_widgets_name_id ON widgets (name, id)`,
}

const insertWidgetSQL = `INSERT OR IGNORE INTO widgets (id, name, weight, active) VALUES (?, ?, ?, ?)`

// createTestStore creates a new file-backed store with the widgets table.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithSchemas(widgetSchema))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
