// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// clinicalTrialsURL is the registry's study search endpoint. Declared as a
// var so tests can substitute an httptest server.
var clinicalTrialsURL = "https://clinicaltrials.gov/api/v2/studies"

const (
	clinicalTrialsHome      = "https://clinicaltrials.gov/"
	clinicalTrialsStudyBase = "https://clinicaltrials.gov/study/"
	clinicalTrialsSort      = "LastUpdatePostDate:desc"
)

// ClinicalTrialsAdapter searches the ClinicalTrials.gov registry.
//
// The registry has changed its query syntax and response schema more than
// once. Search asks for the most recently updated studies first; if that
// request is rejected with a 4xx it retries exactly once with the lookback
// window expressed as an AREA[...]RANGE[...] clause inside the search term.
// Responses are decoded by shape (see detectVariant) and always filtered
// against the window here as well.
type ClinicalTrialsAdapter struct {
	Client    *http.Client
	UserAgent string
	Logger    *zap.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Name returns the source tag.
func (a *ClinicalTrialsAdapter) Name() types.Source { return types.SourceClinicalTrials }

// Search returns studies updated within the lookback window, plus any whose
// update date could not be parsed.
func (a *ClinicalTrialsAdapter) Search(ctx context.Context, topic string, lookbackDays, pageSize int) ([]types.Record, error) {
	window := types.NewWindow(nowOr(a.Now), lookbackDays)
	pageSize = limitOr(pageSize)

	body, err := httputil.Get(ctx, a.Client, clinicalTrialsURL, primaryTrialParams(topic, pageSize), a.UserAgent)
	if err != nil {
		if !httputil.IsClientError(err) {
			return nil, fmt.Errorf("ClinicalTrials.gov request: %w", err)
		}
		a.logger().Warn("clinicaltrials primary query rejected, retrying with date-range term",
			zap.String("topic", topic), zap.Error(err))

		body, err = httputil.Get(ctx, a.Client, clinicalTrialsURL, fallbackTrialParams(topic, pageSize, window), a.UserAgent)
		if err != nil {
			return nil, fmt.Errorf("ClinicalTrials.gov fallback request: %w", err)
		}
	}

	rows, layout, err := decodeTrials(body)
	if err != nil {
		return nil, err
	}

	cutoff := window.Cutoff()
	var records []types.Record
	for _, row := range rows {
		if !IsRecent(row.LastUpdate, cutoff, layout) {
			continue
		}
		records = append(records, row.record())
	}
	a.logger().Debug("clinicaltrials studies decoded",
		zap.Int("studies", len(rows)), zap.Int("recent", len(records)))
	return records, nil
}

func (a *ClinicalTrialsAdapter) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func primaryTrialParams(topic string, pageSize int) url.Values {
	return url.Values{
		"query.term": {topic},
		"pageSize":   {fmt.Sprintf("%d", pageSize)},
		"sort":       {clinicalTrialsSort},
	}
}

// fallbackTrialParams drops the sort parameter and embeds the window in the
// search term itself.
func fallbackTrialParams(topic string, pageSize int, w types.Window) url.Values {
	return url.Values{
		"query.term": {fallbackTrialTerm(topic, w)},
		"pageSize":   {fmt.Sprintf("%d", pageSize)},
	}
}

func fallbackTrialTerm(topic string, w types.Window) string {
	area := fmt.Sprintf("AREA[LastUpdatePostDate]RANGE[%s,%s]",
		w.From.Format(layoutISODate), w.To.Format(layoutISODate))
	if strings.TrimSpace(topic) == "" {
		return area
	}
	return fmt.Sprintf("(%s) AND %s", topic, area)
}

// trialRow is the schema-neutral view of one study. Every field may be empty.
type trialRow struct {
	NCTID      string
	Title      string
	Status     string
	LastUpdate string
	Summary    string
}

func (r trialRow) record() types.Record {
	title := strings.TrimSpace(r.Title)
	rec := types.Record{
		Source:  types.SourceClinicalTrials,
		Meta:    fmt.Sprintf("%s | last update: %s", r.Status, r.LastUpdate),
		Snippet: strings.TrimSpace(r.Summary),
	}

	native := r.NCTID
	if native != "" {
		rec.ID = "NCT:" + native
		rec.URL = clinicalTrialsStudyBase + native
	} else {
		native = fallbackID(types.SourceClinicalTrials, title)
		rec.ID = "CT:" + native
		rec.URL = clinicalTrialsHome
	}

	if title == "" {
		title = types.PlaceholderTitle(types.SourceClinicalTrials, native)
	}
	rec.Title = title
	return rec
}
