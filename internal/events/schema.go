package events

import (
	"github.com/roach88/polycache/internal/querysql"
	"github.com/roach88/polycache/internal/store"
)

const (
	TableEvents  = "events"
	TableMarkets = "markets"
)

var EventsSchema = store.Schema{
	Name: TableEvents,
	Create: `CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL,
		name TEXT,
		title TEXT,
		description TEXT,
		volume REAL,
		created TEXT,
		updated TEXT,
		event_end TEXT,
		contract_end TEXT,
		active BOOLEAN,
		closed BOOLEAN,
		researched BOOLEAN,
		PRIMARY KEY (id))`,
}

var MarketsSchema = store.Schema{
	Name: TableMarkets,
	Create: `CREATE TABLE IF NOT EXISTS markets (
		event_id TEXT NOT NULL,
		market_id TEXT NOT NULL,
		name TEXT,
		title TEXT,
		condition_id TEXT,
		description TEXT,
		outcomes TEXT,
		volume REAL,
		clob_token_ids TEXT,
		created TEXT,
		updated TEXT,
		event_end TEXT,
		contract_end TEXT,
		PRIMARY KEY (event_id, market_id))`,
}

// Schemas returns both catalog tables in bootstrap order.
func Schemas() []store.Schema {
	return []store.Schema{EventsSchema, MarketsSchema}
}

const insertEventSQL = `INSERT OR IGNORE INTO events
	(id, name, title, description, volume, created, updated, event_end, contract_end, active, closed, researched)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertMarketSQL = `INSERT OR IGNORE INTO markets
	(event_id, market_id, name, title, condition_id, description, outcomes, volume, clob_token_ids, created, updated, event_end, contract_end)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectEventsSQL = `SELECT id, name, title, description, volume, created, updated,
	event_end, contract_end, active, closed, researched FROM events`

const selectMarketsSQL = `SELECT event_id, market_id, name, title, condition_id, description,
	outcomes, volume, clob_token_ids, created, updated, event_end, contract_end FROM markets`

var eventColumns = querysql.ColumnMap{
	{Arg: querysql.ArgEventID, Name: "id"},
	{Arg: querysql.ArgEventName, Name: "name"},
}

var marketColumns = querysql.ColumnMap{
	{Arg: querysql.ArgEventID, Name: "event_id"},
	{Arg: querysql.ArgMarketID, Name: "market_id"},
	{Arg: querysql.ArgMarketName, Name: "name"},
}

// EventReadArgs and MarketReadArgs are the filters each read understands.
var (
	EventReadArgs  = []querysql.Arg{querysql.ArgEventID, querysql.ArgEventName}
	MarketReadArgs = []querysql.Arg{querysql.ArgEventID, querysql.ArgMarketID, querysql.ArgMarketName}
)
