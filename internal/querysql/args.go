package querysql

// Arg is a logical filter name accepted by domain reads and fetches.
// Each domain maps the args it understands onto physical columns; see
// ColumnMap.
type Arg string

const (
	ArgEventID     Arg = "event_id"
	ArgEventName   Arg = "event_name"
	ArgMarketID    Arg = "market_id"
	ArgMarketName  Arg = "market_name"
	ArgClobTokenID Arg = "clob_token_id"
	ArgDate        Arg = "date"
	ArgTagID       Arg = "tag_id"
	ArgTagName     Arg = "tag_name"
)

// Args is a bag of filter values keyed by logical name.
// An empty string means "not given", the same as an absent key.
type Args map[Arg]string

// Get returns the value for a, or "" when absent.
func (a Args) Get(arg Arg) string {
	if a == nil {
		return ""
	}
	return a[arg]
}

// Has reports whether a carries a non-empty value for arg.
func (a Args) Has(arg Arg) bool {
	return a.Get(arg) != ""
}

// With returns a copy of a with arg set to value.
func (a Args) With(arg Arg, value string) Args {
	out := make(Args, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[arg] = value
	return out
}

// Only returns a copy of a restricted to the accepted names.
// This lets one broad bag drive a read, a fetch and an insert without any of
// them having to tolerate keys they don't know.
func (a Args) Only(accepted ...Arg) Args {
	out := make(Args, len(accepted))
	for _, arg := range accepted {
		if v, ok := a[arg]; ok {
			out[arg] = v
		}
	}
	return out
}
