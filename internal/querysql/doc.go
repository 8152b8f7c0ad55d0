// Package querysql turns a bag of logical filter arguments into a
// parameterized SQLite WHERE clause.
//
// Each domain store declares a ColumnMap naming the args it recognises and
// the column each one filters. Absent or empty args are skipped; unknown
// args are ignored. All values are bound as positional parameters.
package querysql
