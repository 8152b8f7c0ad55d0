package events

import (
	"github.com/roach88/polycache/internal/normalize"
)

// Event is one row of the events table.
type Event struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Volume      float64 `json:"volume" yaml:"volume"`
	Created     string  `json:"created" yaml:"created"`
	Updated     string  `json:"updated" yaml:"updated"`
	EventEnd    string  `json:"event_end" yaml:"event_end"`
	ContractEnd string  `json:"contract_end" yaml:"contract_end"`
	Active      bool    `json:"active" yaml:"active"`
	Closed      bool    `json:"closed" yaml:"closed"`
	Researched  bool    `json:"researched" yaml:"researched"`
}

// EndDate implements normalize.Dated.
func (e Event) EndDate(col normalize.DateColumn) string {
	if col == normalize.ColumnEventEnd {
		return e.EventEnd
	}
	return e.ContractEnd
}

// Market is one row of the markets table. Outcomes and ClobTokenIDs are
// parallel: ClobTokenIDs[i] trades Outcomes[i].
type Market struct {
	EventID      string   `json:"event_id" yaml:"event_id"`
	MarketID     string   `json:"market_id" yaml:"market_id"`
	Name         string   `json:"name" yaml:"name"`
	Title        string   `json:"title" yaml:"title"`
	ConditionID  string   `json:"condition_id" yaml:"condition_id"`
	Description  string   `json:"description" yaml:"description"`
	Outcomes     []string `json:"outcomes" yaml:"outcomes"`
	Volume       float64  `json:"volume" yaml:"volume"`
	ClobTokenIDs []string `json:"clob_token_ids" yaml:"clob_token_ids"`
	Created      string   `json:"created" yaml:"created"`
	Updated      string   `json:"updated" yaml:"updated"`
	EventEnd     string   `json:"event_end" yaml:"event_end"`
	ContractEnd  string   `json:"contract_end" yaml:"contract_end"`
}

// EndDate implements normalize.Dated.
func (m Market) EndDate(col normalize.DateColumn) string {
	if col == normalize.ColumnEventEnd {
		return m.EventEnd
	}
	return m.ContractEnd
}

// Payload is what one catalog fetch yields, in write order.
type Payload struct {
	Events  []Event
	Markets []Market
}

// EventView is an Event with its days-to-resolution attached.
type EventView struct {
	Event `yaml:",inline"`
	DTR   int `json:"dtr" yaml:"dtr"`
}

// MarketView is a Market with its days-to-resolution attached.
type MarketView struct {
	Market `yaml:",inline"`
	DTR    int `json:"dtr" yaml:"dtr"`
}

// orUnknown replaces an empty value with the sentinel so end-date columns
// are never blank.
func orUnknown(s string) string {
	if s == "" {
		return normalize.Unknown
	}
	return s
}
