package normalize

import (
	"time"

	"go.uber.org/zap"
)

// DateColumn selects which end date drives dtr and the Unknown filter.
type DateColumn string

const (
	ColumnEventEnd    DateColumn = "event_end"
	ColumnContractEnd DateColumn = "contract_end"
)

// Valid reports whether c names a known date column.
func (c DateColumn) Valid() bool {
	return c == ColumnEventEnd || c == ColumnContractEnd
}

// Dated is implemented by rows that carry both end-date columns.
type Dated interface {
	EndDate(col DateColumn) string
}

// WithDTR pairs a row with its computed days-to-resolution.
type WithDTR[T any] struct {
	Row T
	DTR int
}

// ComputeDTR drops rows whose col value is Unknown, parses the rest and
// attaches dtr relative to now.
// A row with an unparseable date is logged and skipped; it never fails the
// batch.
func ComputeDTR[T Dated](rows []T, col DateColumn, now time.Time, logger *zap.Logger) []WithDTR[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := make([]WithDTR[T], 0, len(rows))
	for _, row := range rows {
		raw := row.EndDate(col)
		if raw == Unknown {
			continue
		}
		end, err := ParseTimestamp(raw)
		if err != nil {
			logger.Warn("skipping row with malformed end date",
				zap.String("column", string(col)),
				zap.String("value", raw),
				zap.Error(err))
			continue
		}
		out = append(out, WithDTR[T]{Row: row, DTR: DaysToResolution(end, now)})
	}
	return out
}

// WithinDTR keeps rows with 0 <= dtr <= threshold.
func WithinDTR[T any](rows []WithDTR[T], threshold int) []WithDTR[T] {
	out := make([]WithDTR[T], 0, len(rows))
	for _, r := range rows {
		if r.DTR >= 0 && r.DTR <= threshold {
			out = append(out, r)
		}
	}
	return out
}

// DropUnknown removes rows whose col value is Unknown. Used when the filter
// column differs from the dtr column.
func DropUnknown[T Dated](rows []WithDTR[T], col DateColumn) []WithDTR[T] {
	out := make([]WithDTR[T], 0, len(rows))
	for _, r := range rows {
		if r.Row.EndDate(col) != Unknown {
			out = append(out, r)
		}
	}
	return out
}
