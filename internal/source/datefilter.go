// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import "time"

// Date layouts used by the upstream APIs.
const (
	layoutISODate  = "2006-01-02"
	layoutLongDate = "January 2, 2006"
)

// IsRecent reports whether date, parsed with layout, falls at or after cutoff.
// An empty or unparseable date counts as recent: a formatting quirk must
// never drop a record, the summarizer sees it instead.
func IsRecent(date string, cutoff time.Time, layout string) bool {
	if date == "" {
		return true
	}
	t, err := time.Parse(layout, date)
	if err != nil {
		return true
	}
	return !t.UTC().Before(cutoff.UTC())
}
