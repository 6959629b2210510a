// Package feed fetches RSS/Atom sources and aggregates them into the
// canonical entry set one category displays.
package feed

import "time"

// Entry is a single feed item normalized from RSS or Atom.
//
// ID equals Timestamp: items publishing within the same second collide
// and the merge keeps the last one written. Title and TitleOriginal are
// the only fields mutated after creation (by translation draining).
type Entry struct {
	ID            int64  `json:"id"`
	SourceName    string `json:"sourceName"`
	PubDate       string `json:"pubDate"`
	Timestamp     int64  `json:"timestamp"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	TitleOriginal string `json:"-"`
}

// CachedFeed is the on-disk shape of one category's cache file.
type CachedFeed struct {
	Entries   []Entry `json:"entries"`
	CreatedAt int64   `json:"created_at"`
}

// displayDate formats a publish time for the list: clock time for
// today's items, month and day otherwise.
func displayDate(t, now time.Time) string {
	t = t.Local()
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Local().Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("15:04")
	}
	return t.Format("Jan 02, 15:04")
}
