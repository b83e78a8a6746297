// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-digest/pkg/types"
)

// FormatTable writes records as a human-readable table to w.
func FormatTable(records []types.Record, removed int, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-18s  %-16s  %-56s  %s\n", "#", "Source", "ID", "Title", "Meta")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range records {
		fmt.Fprintf(w, "%-4d  %-18s  %-16s  %-56s  %s\n",
			i+1, r.Source, truncate(r.ID, 16), truncate(r.Title, 56), truncate(r.Meta, 40))
	}

	fmt.Fprintf(w, "\n%d records", len(records))
	if removed > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", removed)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.Record, w io.Writer) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
