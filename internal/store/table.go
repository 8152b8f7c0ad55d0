package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is a tabular read result. Columns is always populated, even when
// Rows is empty.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Index returns the position of column name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Row returns an accessor for row i.
func (t *Table) Row(i int) Row {
	return Row{table: t, values: t.Rows[i]}
}

// Row reads typed values from one table row by column name.
// Missing columns and NULLs read as the zero value.
type Row struct {
	table  *Table
	values []any
}

// Value returns the raw driver value for column name.
func (r Row) Value(name string) any {
	i := r.table.Index(name)
	if i < 0 || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// String returns column name as text.
func (r Row) String(name string) string {
	switch v := r.Value(name).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns column name as a float64. Unparseable text reads as 0.
func (r Row) Float(name string) float64 {
	switch v := r.Value(name).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string, []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.String(name)), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool returns column name as a bool. SQLite stores booleans as integers,
// but rows written by other tools may carry "true"/"1" text.
func (r Row) Bool(name string) bool {
	switch v := r.Value(name).(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string, []byte:
		b, err := strconv.ParseBool(strings.TrimSpace(r.String(name)))
		return err == nil && b
	default:
		return false
	}
}
