package ui

import (
	"time"

	"github.com/abelbrown/rreader/internal/feed"
)

// tickMsg drives the continuous-redraw loop (marquee, pending
// translation drain, auto-refresh check).
type tickMsg time.Time

// entriesLoadedMsg carries the result of one aggregation run.
type entriesLoadedMsg struct {
	Category string
	Entries  []feed.Entry
	Auto     bool // background refresh, preserve selection
}

// summaryMsg carries the result of a blocking summarization.
type summaryMsg struct {
	Text string
	URL  string
	Err  error
}
