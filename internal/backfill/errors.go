package backfill

import "errors"

// ErrNoData is returned by fetch collaborators when the remote source has
// nothing for the request or could not be reached. Run treats it, and any
// other fetch error, as "no data available".
var ErrNoData = errors.New("no data available")

// IsNoData returns true if err wraps ErrNoData.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}
