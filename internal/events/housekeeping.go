package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/normalize"
)

// LookupEventID returns the id of the event whose slug is name.
func (s *Store) LookupEventID(ctx context.Context, name string) (string, bool, error) {
	return s.lookup(ctx, "SELECT id FROM events WHERE name = ? LIMIT 1", name)
}

// LookupEventName returns the slug of the event with the given id.
func (s *Store) LookupEventName(ctx context.Context, id string) (string, bool, error) {
	return s.lookup(ctx, "SELECT name FROM events WHERE id = ? LIMIT 1", id)
}

func (s *Store) lookup(ctx context.Context, query, value string) (string, bool, error) {
	table, err := s.db.ReadOrRecreate(ctx, EventsSchema, query, []any{value})
	if err != nil {
		return "", false, fmt.Errorf("lookup event: %w", err)
	}
	if table.Empty() {
		return "", false, nil
	}
	return table.Row(0).String(table.Columns[0]), true, nil
}

// ExpireEvents marks every active event whose contract_end is before now as
// inactive and closed. Rows with an unknown or malformed contract_end are
// left alone. Returns the number of events flipped.
func (s *Store) ExpireEvents(ctx context.Context, now time.Time) (int64, error) {
	table, err := s.db.ReadOrRecreate(ctx, EventsSchema,
		"SELECT id, contract_end FROM events WHERE active = 1", nil)
	if err != nil {
		return 0, fmt.Errorf("expire events: %w", err)
	}

	var expired []any
	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		raw := row.String("contract_end")
		if raw == "" || raw == normalize.Unknown {
			continue
		}
		end, err := normalize.ParseTimestamp(raw)
		if err != nil {
			s.logger.Warn("skipping event with malformed contract_end",
				zap.String("event_id", row.String("id")),
				zap.String("value", raw),
				zap.Error(err))
			continue
		}
		if now.After(end) {
			expired = append(expired, row.String("id"))
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(expired)), ", ")
	n, err := s.db.Exec(ctx,
		"UPDATE events SET active = 0, closed = 1 WHERE id IN ("+placeholders+")", expired)
	if err != nil {
		return 0, fmt.Errorf("expire events: %w", err)
	}
	s.logger.Info("expired events", zap.Int64("count", n))
	return n, nil
}

// Status flags an event carries.
const (
	FlagResearched = "researched"
	FlagActive     = "active"
	FlagClosed     = "closed"
)

// SetResearched records whether an event has been researched.
func (s *Store) SetResearched(ctx context.Context, id string, v bool) (int64, error) {
	return s.setFlag(ctx, FlagResearched, id, v)
}

// SetActive overrides the active flag of an event.
func (s *Store) SetActive(ctx context.Context, id string, v bool) (int64, error) {
	return s.setFlag(ctx, FlagActive, id, v)
}

// SetClosed overrides the closed flag of an event.
func (s *Store) SetClosed(ctx context.Context, id string, v bool) (int64, error) {
	return s.setFlag(ctx, FlagClosed, id, v)
}

// SetFlag sets one of the status flags by name.
func (s *Store) SetFlag(ctx context.Context, flag, id string, v bool) (int64, error) {
	return s.setFlag(ctx, flag, id, v)
}

func (s *Store) setFlag(ctx context.Context, flag, id string, v bool) (int64, error) {
	switch flag {
	case FlagResearched, FlagActive, FlagClosed:
	default:
		return 0, fmt.Errorf("set %q: unknown status flag", flag)
	}
	n, err := s.db.Exec(ctx, "UPDATE events SET "+flag+" = ? WHERE id = ?", []any{v, id})
	if err != nil {
		return 0, fmt.Errorf("set %s on %s: %w", flag, id, err)
	}
	return n, nil
}
