package analysis

import "errors"

// ErrNoProvider indicates that no reasoning provider is configured. Callers
// treat it as "go straight to the heuristic fallback", never as a request
// failure.
var ErrNoProvider = errors.New("no reasoning provider available")
