// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/internal/httputil"
	"github.com/pdiddy/research-digest/pkg/types"
)

// pubmedServer fakes ESearch and ESummary and counts calls to each.
type pubmedServer struct {
	esearchBody    string
	esummaryBody   string
	esearchStatus  int
	esummaryStatus int

	esearchCalls  int32
	esummaryCalls int32
	esearchQuery  url.Values
	esummaryQuery url.Values
}

func (p *pubmedServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&p.esearchCalls, 1)
		p.esearchQuery = r.URL.Query()
		if p.esearchStatus != 0 {
			w.WriteHeader(p.esearchStatus)
			return
		}
		fmt.Fprint(w, p.esearchBody)
	})
	mux.HandleFunc("/esummary.fcgi", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&p.esummaryCalls, 1)
		p.esummaryQuery = r.URL.Query()
		if p.esummaryStatus != 0 {
			w.WriteHeader(p.esummaryStatus)
			return
		}
		fmt.Fprint(w, p.esummaryBody)
	})
	ts := httptest.NewServer(mux)

	oldSearch, oldSummary := pubmedESearchURL, pubmedESummaryURL
	pubmedESearchURL = ts.URL + "/esearch.fcgi"
	pubmedESummaryURL = ts.URL + "/esummary.fcgi"
	t.Cleanup(func() {
		pubmedESearchURL, pubmedESummaryURL = oldSearch, oldSummary
		ts.Close()
	})
	return ts
}

func esearchJSON(pmids ...string) string {
	quoted := make([]string, len(pmids))
	for i, p := range pmids {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	return fmt.Sprintf(`{"header":{"type":"esearch"},"esearchresult":{"count":"%d","idlist":[%s]}}`,
		len(pmids), strings.Join(quoted, ","))
}

const esummaryTwo = `{
  "header": {"type": "esummary"},
  "result": {
    "uids": ["111", "222"],
    "111": {"uid": "111", "title": "  Teclistamab in relapsed myeloma.  ", "fulljournalname": "The New England journal of medicine", "pubdate": "2026 Oct 10"},
    "222": {"uid": "222", "title": "CAR-T outcomes", "fulljournalname": "Blood", "pubdate": "2026 Oct"}
  }
}`

func TestPubMedSearchRequestParams(t *testing.T) {
	srv := &pubmedServer{esearchBody: esearchJSON("111", "222"), esummaryBody: esummaryTwo}
	ts := srv.start(t)

	a := &PubMedAdapter{Client: ts.Client(), UserAgent: "test/0.1", APIKey: "k", Email: "me@example.org", Tool: "research-digest", Now: clock}
	_, err := a.Search(context.Background(), "multiple myeloma OR plasma cell myeloma", 7, 15)
	require.NoError(t, err)

	q := srv.esearchQuery
	assert.Equal(t, "pubmed", q.Get("db"))
	assert.Equal(t, "multiple myeloma OR plasma cell myeloma", q.Get("term"))
	assert.Equal(t, "json", q.Get("retmode"))
	assert.Equal(t, "15", q.Get("retmax"))
	assert.Equal(t, "pdat", q.Get("datetype"))
	assert.Equal(t, "2026/10/09", q.Get("mindate"))
	assert.Equal(t, "2026/10/16", q.Get("maxdate"))
	assert.Equal(t, "k", q.Get("api_key"))
	assert.Equal(t, "me@example.org", q.Get("email"))
	assert.Equal(t, "research-digest", q.Get("tool"))

	s := srv.esummaryQuery
	assert.Equal(t, "pubmed", s.Get("db"))
	assert.Equal(t, "111,222", s.Get("id"))
	assert.Equal(t, "json", s.Get("retmode"))
}

func TestPubMedSearchOmitsUnsetIdentification(t *testing.T) {
	srv := &pubmedServer{esearchBody: esearchJSON()}
	ts := srv.start(t)

	a := &PubMedAdapter{Client: ts.Client(), Now: clock}
	_, err := a.Search(context.Background(), "myeloma", 7, 0)
	require.NoError(t, err)

	assert.False(t, srv.esearchQuery.Has("api_key"))
	assert.False(t, srv.esearchQuery.Has("email"))
	assert.False(t, srv.esearchQuery.Has("tool"))
	assert.Equal(t, "20", srv.esearchQuery.Get("retmax"))
}

func TestPubMedSearchEmptyIDListSkipsSummary(t *testing.T) {
	srv := &pubmedServer{esearchBody: esearchJSON()}
	ts := srv.start(t)

	a := &PubMedAdapter{Client: ts.Client(), Now: clock}
	records, err := a.Search(context.Background(), "nothing matches", 7, 20)
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.esearchCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&srv.esummaryCalls))
}

func TestPubMedSearchMissingResultObject(t *testing.T) {
	srv := &pubmedServer{esearchBody: `{"header":{}}`}
	ts := srv.start(t)

	a := &PubMedAdapter{Client: ts.Client(), Now: clock}
	records, err := a.Search(context.Background(), "x", 7, 20)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(0), atomic.LoadInt32(&srv.esummaryCalls))
}

func TestPubMedSearchBuildsRecords(t *testing.T) {
	srv := &pubmedServer{esearchBody: esearchJSON("222", "111"), esummaryBody: esummaryTwo}
	ts := srv.start(t)

	a := &PubMedAdapter{Client: ts.Client(), Now: clock}
	records, err := a.Search(context.Background(), "myeloma", 7, 20)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// ESearch order is preserved, not ESummary's.
	assert.Equal(t, "PMID:222", records[0].ID)
	assert.Equal(t, "PMID:111", records[1].ID)

	r := records[1]
	assert.Equal(t, types.SourcePubMed, r.Source)
	assert.Equal(t, "Teclistamab in relapsed myeloma", r.Title)
	assert.Equal(t, "The New England journal of medicine | 2026 Oct 10", r.Meta)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/111/", r.URL)
	assert.Empty(t, r.Snippet)
}

func TestPubMedSearchPlaceholders(t *testing.T) {
	summary := `{"result":{
	  "uids":["999","555","777"],
	  "999":{"uid":"999","title":"   ","fulljournalname":"Leukemia","pubdate":"2026"},
	  "777":{"uid":"777","title":["unexpected"]}
	}}`
	srv := &pubmedServer{esearchBody: esearchJSON("999", "555", "777"), esummaryBody: summary}
	ts := srv.start(t)

	a := &PubMedAdapter{Client: ts.Client(), Now: clock}
	records, err := a.Search(context.Background(), "myeloma", 7, 20)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "PubMed record 999", records[0].Title)
	assert.Equal(t, "Leukemia | 2026", records[0].Meta)

	// PMID absent from the summary map.
	assert.Equal(t, "PMID:555", records[1].ID)
	assert.Equal(t, "PubMed record 555", records[1].Title)
	assert.Equal(t, " | ", records[1].Meta)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/555/", records[1].URL)

	// Malformed summary entry.
	assert.Equal(t, "PubMed record 777", records[2].Title)
}

func TestPubMedSearchHTTPErrors(t *testing.T) {
	tests := []struct {
		name           string
		esearchStatus  int
		esummaryStatus int
		wantStatus     int
		wantSummary    int32
	}{
		{"esearch server error", http.StatusInternalServerError, 0, 500, 0},
		{"esearch bad request", http.StatusBadRequest, 0, 400, 0},
		{"esummary server error", 0, http.StatusBadGateway, 502, 1},
		{"esummary too many requests", 0, http.StatusTooManyRequests, 429, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &pubmedServer{
				esearchBody:    esearchJSON("111"),
				esummaryBody:   esummaryTwo,
				esearchStatus:  tt.esearchStatus,
				esummaryStatus: tt.esummaryStatus,
			}
			ts := srv.start(t)

			a := &PubMedAdapter{Client: ts.Client(), Now: clock}
			records, err := a.Search(context.Background(), "myeloma", 7, 20)
			require.Error(t, err)
			assert.Nil(t, records)

			var se *httputil.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantStatus, se.StatusCode)
			assert.Equal(t, tt.wantSummary, atomic.LoadInt32(&srv.esummaryCalls))
		})
	}
}

func TestPubMedSearchMalformedJSON(t *testing.T) {
	tests := []struct {
		name     string
		esearch  string
		esummary string
	}{
		{"esearch", `{not json`, esummaryTwo},
		{"esummary", esearchJSON("111"), `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &pubmedServer{esearchBody: tt.esearch, esummaryBody: tt.esummary}
			ts := srv.start(t)

			a := &PubMedAdapter{Client: ts.Client(), Now: clock}
			_, err := a.Search(context.Background(), "myeloma", 7, 20)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parsing PubMed")
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Plain title", "Plain title"},
		{"  Padded title.  ", "Padded title"},
		{"Ellipsis...", "Ellipsis.."},
		{"", ""},
		{" . ", ""},
		{"Title .", "Title"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanTitle(tt.in), tt.in)
	}
}
