package querysql

import (
	"fmt"
	"strings"
)

// Column maps one logical Arg to the physical column it filters.
type Column struct {
	Arg  Arg
	Name string
}

// ColumnMap is the ordered set of filters a domain read recognises.
// Order matters: conditions and parameters are emitted in this order.
type ColumnMap []Column

// Equals is a single "column = ?" condition.
type Equals struct {
	Field string
	Value any
}

// Build appends a WHERE clause to base for every mapped arg that carries a
// non-empty value, joined with AND.
// Returns (sql, params); the two correspond 1:1 in order.
//
// Args the map does not name are ignored. With no applicable filters the
// base query comes back unchanged with empty params: no filters means
// "return everything".
// CRITICAL: Values are NEVER interpolated - always parameterized.
func Build(base string, cols ColumnMap, args Args) (string, []any) {
	var preds []Equals
	for _, col := range cols {
		if v := args.Get(col.Arg); v != "" {
			preds = append(preds, Equals{Field: col.Name, Value: v})
		}
	}
	return compile(base, preds)
}

// First is the mutually exclusive form of Build: only the first mapped arg
// with a value is used. Tags use it so that id wins over name.
func First(base string, cols ColumnMap, args Args) (string, []any) {
	for _, col := range cols {
		if v := args.Get(col.Arg); v != "" {
			return compile(base, []Equals{{Field: col.Name, Value: v}})
		}
	}
	return compile(base, nil)
}

// compile joins predicates into base.
func compile(base string, preds []Equals) (string, []any) {
	params := make([]any, 0, len(preds))
	if len(preds) == 0 {
		return base, params
	}

	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		parts = append(parts, fmt.Sprintf("%s = ?", p.Field))
		params = append(params, p.Value)
	}

	return base + " WHERE " + strings.Join(parts, " AND "), params
}
