// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-digest/pkg/types"
)

// Defaults for the report the assistant is asked to write.
const (
	DefaultLanguage = "Simplified Chinese"
	DefaultDomain   = "hematologic oncology (multiple myeloma)"
)

// DefaultThemes are the headings research progress is grouped under.
var DefaultThemes = []string{
	"CAR-T",
	"bispecific antibodies",
	"other novel agents",
	"MRD and diagnostics",
	"real-world evidence and safety",
}

// PromptOptions parameterizes the instructions that precede the item list.
type PromptOptions struct {
	Language string
	Domain   string
	Themes   []string
}

func (o PromptOptions) withDefaults() PromptOptions {
	if strings.TrimSpace(o.Language) == "" {
		o.Language = DefaultLanguage
	}
	if strings.TrimSpace(o.Domain) == "" {
		o.Domain = DefaultDomain
	}
	if len(o.Themes) == 0 {
		o.Themes = DefaultThemes
	}
	return o
}

// reportPromptTmpl is the instruction block sent to the model followed by one
// bullet per record, bullets separated by a blank line.
var reportPromptTmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`You are a research assistant in {{.Domain}}. Using the list of items below, write a weekly report in {{.Language}}. This is not medical advice.

Requirements:
1) Use only the information given in the items. Do not invent efficacy figures, sample sizes, or strength of conclusions. When information is missing, say plainly that the item does not provide it and the full text must be read to confirm.
2) Every conclusion must cite the link of the item it comes from.
3) Use this fixed structure:
   - TL;DR (at most three points)
   - Research progress (grouped by theme: {{join .Themes " / "}}; omit empty themes)
   - Clinical trial updates (list the NCT number, status, and last update date)
   - To watch next week (2-5 keywords)
4) Style: concise and traceable, like an internal lab group weekly report.

Items:
{{range $i, $r := .Records}}{{if $i}}
{{end}}- [{{$r.Source}}] {{$r.Title}}
  Meta: {{$r.Meta}}
  Link: {{$r.URL}}
{{end}}`))

// BuildPrompt renders the report instructions followed by the records in the
// order given. The result is trimmed of surrounding whitespace.
func BuildPrompt(records []types.Record, opts PromptOptions) (string, error) {
	data := struct {
		PromptOptions
		Records []types.Record
	}{opts.withDefaults(), records}

	var buf bytes.Buffer
	if err := reportPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
