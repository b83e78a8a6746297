// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-digest pipeline:
// the canonical record every source adapter produces, the lookback window, and
// the configuration structs assembled by the CLI.
package types

import (
	"fmt"
	"time"
)

// Source identifies the upstream API a record came from.
type Source string

const (
	SourcePubMed         Source = "PubMed"
	SourceClinicalTrials Source = "ClinicalTrials.gov"
)

// Record is the canonical shape all source adapters produce. Records live in
// memory for a single run and are never persisted.
type Record struct {
	// Source identifies the origin API.
	Source Source `json:"source" yaml:"source"`

	// ID is "<tag>:<native identifier>" (e.g. "PMID:38000001", "NCT:NCT05000001")
	// and is the dedup key.
	ID string `json:"id" yaml:"id"`

	// Title is never empty; adapters substitute a placeholder for blank titles.
	Title string `json:"title" yaml:"title"`

	// Meta is display-only descriptive text (journal and date, or trial status).
	Meta string `json:"meta" yaml:"meta"`

	// URL links to the item, or to the source homepage when no native ID exists.
	URL string `json:"url" yaml:"url"`

	// Snippet is optional abstract or summary text.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// PlaceholderTitle returns the synthetic title used when upstream sends a blank one.
func PlaceholderTitle(src Source, nativeID string) string {
	return fmt.Sprintf("%s record %s", src, nativeID)
}

// Window is a closed range of calendar dates in UTC. From and To are both
// midnight-aligned.
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow returns the window [date(now - lookbackDays), date(now)].
func NewWindow(now time.Time, lookbackDays int) Window {
	now = now.UTC()
	return Window{
		From: midnight(now.AddDate(0, 0, -lookbackDays)),
		To:   midnight(now),
	}
}

// Cutoff is the earliest instant a dated record may carry and still count as recent.
func (w Window) Cutoff() time.Time { return w.From }

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
