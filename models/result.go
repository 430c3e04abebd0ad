package models

import "strings"

// Outcome tags the result of a remote fetch so call sites can handle
// each case explicitly instead of matching on sentinel values.
type Outcome int

const (
	// OutcomeOK means rows were returned.
	OutcomeOK Outcome = iota
	// OutcomePermissionDenied means the account lacks access to the
	// property. Permission is property-level, so callers stop all
	// remaining windows for that property.
	OutcomePermissionDenied
	// OutcomeEmpty means the window has no data, either genuinely or
	// because the fetch failed after retries and was downgraded.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomePermissionDenied:
		return "permission-denied"
	default:
		return "empty"
	}
}

// FetchResult is the tagged result of a paginated row fetch.
type FetchResult struct {
	Outcome Outcome
	Rows    []PerformanceRow
}

// CountResult is the tagged result of a unique-row count. Count may be
// non-zero alongside Truncated when pagination stopped early, making
// it a lower bound rather than an exact cardinality.
type CountResult struct {
	Outcome   Outcome
	Count     int
	Truncated bool
}

// CacheKey identifies one cached fetch: a property, an exact window
// and the dimension set queried. Two logically distinct queries never
// share a key.
type CacheKey struct {
	Property   Property
	Window     DateWindow
	Dimensions []string
	Stage      string // "rows" or "summary"
}

// FileName derives the flat cache file name for this key. The property
// part comes from CacheSlug rather than FileSlug: report files may
// merge a host's properties into one directory, but cache entries for
// sc-domain:example.com and https://www.example.com/ hold different
// data and must not share a file.
func (k CacheKey) FileName() string {
	dims := "totals"
	if len(k.Dimensions) > 0 {
		dims = strings.Join(k.Dimensions, "-")
	}
	parts := []string{k.Stage, k.Property.CacheSlug(), k.Window.FileSlug(), dims}
	return strings.Join(parts, "_") + ".csv"
}
