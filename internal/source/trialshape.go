// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// trialVariant names a known ClinicalTrials.gov response schema.
type trialVariant int

const (
	variantUnknown trialVariant = iota
	// variantModern is the API v2 shape: {"studies":[{"protocolSection":{...}}]}.
	variantModern
	// variantLegacy is the classic study_fields shape:
	// {"StudyFieldsResponse":{"StudyFields":[{"NCTId":["..."]}]}}.
	variantLegacy
)

func (v trialVariant) String() string {
	switch v {
	case variantModern:
		return "modern"
	case variantLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// trialShape pairs a mapping function with the date layout its schema uses.
// A schema migration adds or edits one entry here.
type trialShape struct {
	mapRows    func(doc gjson.Result) []trialRow
	dateLayout string
}

var trialShapes = map[trialVariant]trialShape{
	variantModern: {mapRows: mapModern, dateLayout: layoutISODate},
	variantLegacy: {mapRows: mapLegacy, dateLayout: layoutLongDate},
}

// detectVariant is the only place that decides which schema a response uses.
func detectVariant(doc gjson.Result) trialVariant {
	switch {
	case doc.Get("studies").Exists():
		return variantModern
	case doc.Get("StudyFieldsResponse").Exists():
		return variantLegacy
	default:
		return variantUnknown
	}
}

// decodeTrials detects the response schema and maps it to rows. It returns
// the date layout the rows' LastUpdate values are expected to follow.
func decodeTrials(body []byte) ([]trialRow, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", fmt.Errorf("parsing ClinicalTrials.gov response: invalid JSON")
	}
	doc := gjson.ParseBytes(body)

	v := detectVariant(doc)
	shape, ok := trialShapes[v]
	if !ok {
		return nil, "", fmt.Errorf("parsing ClinicalTrials.gov response: unrecognized schema")
	}
	return shape.mapRows(doc), shape.dateLayout, nil
}

// mapModern reads API v2 studies. Any section may be absent; missing paths
// read as empty strings.
func mapModern(doc gjson.Result) []trialRow {
	studies := doc.Get("studies")
	if !studies.IsArray() {
		return nil
	}

	var rows []trialRow
	for _, s := range studies.Array() {
		prot := s.Get("protocolSection")
		rows = append(rows, trialRow{
			NCTID:  strings.TrimSpace(prot.Get("identificationModule.nctId").String()),
			Title:  prot.Get("identificationModule.briefTitle").String(),
			Status: prot.Get("statusModule.overallStatus").String(),
			LastUpdate: firstNonEmpty(
				prot.Get("statusModule.lastUpdatePostDateStruct.date").String(),
				prot.Get("statusModule.lastUpdatePostDate").String(),
			),
			Summary: prot.Get("descriptionModule.briefSummary").String(),
		})
	}
	return rows
}

// mapLegacy reads the flat study_fields shape, where each field is a list
// holding (at most) one value.
func mapLegacy(doc gjson.Result) []trialRow {
	fields := doc.Get("StudyFieldsResponse.StudyFields")
	if !fields.IsArray() {
		return nil
	}

	var rows []trialRow
	for _, f := range fields.Array() {
		rows = append(rows, trialRow{
			NCTID:      strings.TrimSpace(firstValue(f.Get("NCTId"))),
			Title:      firstValue(f.Get("BriefTitle")),
			Status:     firstValue(f.Get("OverallStatus")),
			LastUpdate: firstValue(f.Get("LastUpdatePostDate")),
			Summary:    firstValue(f.Get("BriefSummary")),
		})
	}
	return rows
}

// firstValue returns the first element of an array field, or the field
// itself when the API sent a scalar.
func firstValue(r gjson.Result) string {
	if r.IsArray() {
		return r.Get("0").String()
	}
	return r.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
