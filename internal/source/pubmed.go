// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// NCBI E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedESearchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedESummaryURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

const (
	pubmedArticleBase = "https://pubmed.ncbi.nlm.nih.gov/"
	pubmedDateFmt     = "2006/01/02"
)

// PubMedAdapter searches PubMed through NCBI E-utilities: ESearch for PMIDs
// restricted to a publication-date range, then one ESummary call for their
// metadata.
type PubMedAdapter struct {
	Client    *http.Client
	UserAgent string

	// APIKey, Email and Tool are optional NCBI identification parameters.
	APIKey string
	Email  string
	Tool   string

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Name returns the source tag.
func (a *PubMedAdapter) Name() types.Source { return types.SourcePubMed }

// Search returns one record per PMID, in ESearch relevance order. An empty
// PMID list is a normal outcome and skips the ESummary call.
func (a *PubMedAdapter) Search(ctx context.Context, topic string, lookbackDays, maxResults int) ([]types.Record, error) {
	window := types.NewWindow(nowOr(a.Now), lookbackDays)

	pmids, err := a.esearch(ctx, topic, window, limitOr(maxResults))
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		return nil, nil
	}

	docs, err := a.esummary(ctx, pmids)
	if err != nil {
		return nil, err
	}

	records := make([]types.Record, 0, len(pmids))
	for _, pmid := range pmids {
		records = append(records, pubmedRecord(pmid, docs[pmid]))
	}
	return records, nil
}

func (a *PubMedAdapter) esearch(ctx context.Context, topic string, w types.Window, retmax int) ([]string, error) {
	params := a.baseParams()
	params.Set("term", topic)
	params.Set("retmax", fmt.Sprintf("%d", retmax))
	params.Set("datetype", "pdat")
	params.Set("mindate", w.From.Format(pubmedDateFmt))
	params.Set("maxdate", w.To.Format(pubmedDateFmt))

	body, err := httputil.Get(ctx, a.Client, pubmedESearchURL, params, a.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}
	return resp.Result.IDList, nil
}

// esummary fetches metadata for all PMIDs in one call. Entries that are
// missing or malformed are left out of the map; pubmedRecord copes with that.
func (a *PubMedAdapter) esummary(ctx context.Context, pmids []string) (map[string]esummaryDoc, error) {
	params := a.baseParams()
	params.Set("id", strings.Join(pmids, ","))

	body, err := httputil.Get(ctx, a.Client, pubmedESummaryURL, params, a.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("PubMed esummary: %w", err)
	}

	var resp esummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing PubMed esummary response: %w", err)
	}

	docs := make(map[string]esummaryDoc, len(pmids))
	for _, pmid := range pmids {
		raw, ok := resp.Result[pmid]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs[pmid] = doc
	}
	return docs, nil
}

func (a *PubMedAdapter) baseParams() url.Values {
	params := url.Values{
		"db":      {"pubmed"},
		"retmode": {"json"},
	}
	if a.APIKey != "" {
		params.Set("api_key", a.APIKey)
	}
	if a.Email != "" {
		params.Set("email", a.Email)
	}
	if a.Tool != "" {
		params.Set("tool", a.Tool)
	}
	return params
}

func pubmedRecord(pmid string, doc esummaryDoc) types.Record {
	title := cleanTitle(doc.Title)
	if title == "" {
		title = types.PlaceholderTitle(types.SourcePubMed, pmid)
	}
	return types.Record{
		Source: types.SourcePubMed,
		ID:     "PMID:" + pmid,
		Title:  title,
		Meta:   fmt.Sprintf("%s | %s", doc.FullJournalName, doc.PubDate),
		URL:    pubmedArticleBase + pmid + "/",
	}
}

// cleanTitle trims whitespace and one trailing period.
func cleanTitle(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
}

// E-utilities JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// esummaryResponse keeps entries raw: the result object mixes a "uids" array
// with one document object per PMID.
type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryDoc struct {
	UID             string `json:"uid"`
	Title           string `json:"title"`
	FullJournalName string `json:"fulljournalname"`
	Source          string `json:"source"`
	PubDate         string `json:"pubdate"`
}
