// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source queries the biomedical search APIs a digest draws from and
// normalizes their responses into canonical records. Each upstream API has one
// Adapter; records from all adapters are merged with Dedupe.
package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/pdiddy/research-digest/pkg/types"
)

// defaultMaxResults applies when a caller passes a non-positive limit.
const defaultMaxResults = 20

// Adapter searches a single upstream API. Implementations return records
// whose dated field falls inside the lookback window (or could not be dated),
// ordered as the upstream ranked them. Upstream failures are returned, not
// swallowed.
type Adapter interface {
	Name() types.Source
	Search(ctx context.Context, topic string, lookbackDays, maxResults int) ([]types.Record, error)
}

// Dedupe merges records that share an ID. A later record replaces an earlier
// one with the same ID; the output keeps the position of the first occurrence.
// It also returns how many records were dropped.
func Dedupe(records []types.Record) ([]types.Record, int) {
	index := make(map[string]int, len(records))
	out := make([]types.Record, 0, len(records))

	for _, r := range records {
		if i, ok := index[r.ID]; ok {
			out[i] = r
			continue
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

// fallbackID derives a stable identifier for items that arrive without a
// native one. It hashes the source tag and title, so it is stable across runs
// but two untitled items from the same source collide.
func fallbackID(src types.Source, title string) string {
	h := sha256.New()
	h.Write([]byte(src))
	h.Write([]byte{0})
	h.Write([]byte(title))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

func limitOr(n int) int {
	if n <= 0 {
		return defaultMaxResults
	}
	return n
}
