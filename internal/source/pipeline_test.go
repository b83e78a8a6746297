// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/research-digest/pkg/types"
)

// TestAdaptersThroughDedupe runs both adapters against fake upstreams and
// merges their output the way a digest run does.
func TestAdaptersThroughDedupe(t *testing.T) {
	pm := &pubmedServer{
		esearchBody: esearchJSON("111", "999"),
		esummaryBody: `{"result":{"uids":["111","999"],
		  "111":{"uid":"111","title":"Teclistamab in relapsed myeloma.","fulljournalname":"NEJM","pubdate":"2026 Oct 10"},
		  "999":{"uid":"999","title":"","fulljournalname":"Blood","pubdate":"2026 Oct"}}}`,
	}
	pmTS := pm.start(t)

	trials := &trialsServer{handle: respond(studies(
		modernStudy("NCT06000001", "Elranatamab in NDMM", "RECRUITING", "2026-10-14"),
		modernStudy("NCT06000002", "Undated study", "NOT_YET_RECRUITING", "pending"),
	))}
	ctTS := trials.start(t)

	adapters := []Adapter{
		&PubMedAdapter{Client: pmTS.Client(), Now: clock},
		&ClinicalTrialsAdapter{Client: ctTS.Client(), Logger: zaptest.NewLogger(t), Now: clock},
	}

	var all []types.Record
	for _, a := range adapters {
		records, err := a.Search(context.Background(), "multiple myeloma", 7, 20)
		require.NoError(t, err, a.Name())
		all = append(all, records...)
	}

	out, removed := Dedupe(all)
	assert.Zero(t, removed)
	require.Len(t, out, 4)

	assert.Equal(t, []string{"PMID:111", "PMID:999", "NCT:NCT06000001", "NCT:NCT06000002"}, ids(out))
	assert.Equal(t, "PubMed record 999", out[1].Title)
	assert.Equal(t, "NOT_YET_RECRUITING | last update: pending", out[3].Meta)

	// A second pass over the same upstreams yields duplicates only.
	again, removed := Dedupe(append(all, all...))
	assert.Equal(t, out, again)
	assert.Equal(t, 4, removed)
}
