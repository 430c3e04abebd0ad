package models

import "time"

// DateLayout is the wire format the Search Console API expects for dates.
const DateLayout = "2006-01-02"

// DateWindow is an inclusive date range over which metrics are aggregated.
type DateWindow struct {
	Start time.Time
	End   time.Time
	Label string // "2006-01" for calendar months, "start to end" otherwise
}

// StartString returns the window start formatted for the API.
func (w DateWindow) StartString() string {
	return w.Start.Format(DateLayout)
}

// EndString returns the window end formatted for the API.
func (w DateWindow) EndString() string {
	return w.End.Format(DateLayout)
}

// FileSlug returns a filename-safe "start-to-end" form of the window.
func (w DateWindow) FileSlug() string {
	return w.StartString() + "-to-" + w.EndString()
}
