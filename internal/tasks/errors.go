package tasks

import "errors"

// Error kinds returned by the resolver and fetcher. Callers match them with
// errors.Is; the concrete errors wrap the underlying cause.
var (
	// ErrResolution means a legacy link could not be turned into a task ID.
	ErrResolution = errors.New("reference resolution failed")

	// ErrNotFound means the task ID is well formed but no such task exists.
	ErrNotFound = errors.New("task not found")

	// ErrFetch means the metadata source could not be reached in time.
	ErrFetch = errors.New("task fetch failed")

	// ErrParse means the metadata response was malformed or referenced an
	// organization or category this bot does not know.
	ErrParse = errors.New("task response invalid")
)

// Kind returns a short name for the error kind of err, for logging.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "unknown"
	}
}
