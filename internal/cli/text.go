package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roach88/polycache/internal/contract"
	"github.com/roach88/polycache/internal/events"
	"github.com/roach88/polycache/internal/prices"
	"github.com/roach88/polycache/internal/tags"
)

const noResults = "(no results)"

// renderText writes data as an aligned table when it is one of the row
// types, and with fmt otherwise.
func renderText(w io.Writer, data any) error {
	var header []string
	var rows [][]string

	switch v := data.(type) {
	case []events.EventView:
		header = []string{"ID", "NAME", "DTR", "VOLUME", "CONTRACT_END", "ACTIVE"}
		for _, e := range v {
			rows = append(rows, []string{e.ID, e.Name, strconv.Itoa(e.DTR), volume(e.Volume), e.ContractEnd, strconv.FormatBool(e.Active)})
		}
	case []events.MarketView:
		header = []string{"EVENT_ID", "MARKET_ID", "NAME", "DTR", "VOLUME", "OUTCOMES"}
		for _, m := range v {
			rows = append(rows, []string{m.EventID, m.MarketID, m.Name, strconv.Itoa(m.DTR), volume(m.Volume), strings.Join(m.Outcomes, "/")})
		}
	case []prices.PricePoint:
		header = []string{"CLOB_TOKEN_ID", "DATE", "PRICE"}
		for _, p := range v {
			rows = append(rows, []string{p.ClobTokenID, p.Date, p.Price.String()})
		}
	case []tags.Tag:
		header = []string{"ID", "NAME"}
		for _, t := range v {
			rows = append(rows, []string{t.ID, t.Name})
		}
	case []contract.TokenOutcome:
		header = []string{"MARKET_ID", "CLOB_TOKEN_ID", "OUTCOME"}
		for _, t := range v {
			rows = append(rows, []string{t.MarketID, t.ClobTokenID, t.Outcome})
		}
	case []contract.OutcomePrice:
		header = []string{"CLOB_TOKEN_ID", "OUTCOME", "DATE", "PRICE"}
		for _, p := range v {
			rows = append(rows, []string{p.ClobTokenID, p.Outcome, p.Date, p.Price.String()})
		}
	default:
		_, err := fmt.Fprintln(w, data)
		return err
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, noResults)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func volume(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
