package source

import (
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-digest/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format, so collected records can be dropped into Pandoc or a reference
// manager.
type CSLItem struct {
	ID       string `yaml:"id"`
	Type     string `yaml:"type"`
	Title    string `yaml:"title"`
	URL      string `yaml:"URL,omitempty"`
	PMID     string `yaml:"PMID,omitempty"`
	Number   string `yaml:"number,omitempty"`
	Abstract string `yaml:"abstract,omitempty"`
	Note     string `yaml:"note,omitempty"`
}

// FormatCSL writes records as a CSL-YAML list to w.
func FormatCSL(records []types.Record, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a Record to a CSLItem. Meta is carried as a note since
// it is free text.
func toCSLItem(r types.Record) CSLItem {
	item := CSLItem{
		ID:       r.ID,
		Title:    r.Title,
		URL:      r.URL,
		Abstract: r.Snippet,
		Note:     r.Meta,
	}

	switch r.Source {
	case types.SourcePubMed:
		item.Type = "article-journal"
		item.PMID = strings.TrimPrefix(r.ID, "PMID:")
	case types.SourceClinicalTrials:
		item.Type = "report"
		if strings.HasPrefix(r.ID, "NCT:") {
			item.Number = strings.TrimPrefix(r.ID, "NCT:")
		}
	default:
		item.Type = "document"
	}
	return item
}
