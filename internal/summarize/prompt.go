// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// noneLine stands in for an empty result list in the context block.
const noneLine = "- None"

// systemPrompt is the fixed instruction sent with every query.
const systemPrompt = `You are a precise academic research assistant.
Write a concise, structured summary of the topic in two sections:
1. Findings from arXiv Papers
2. Findings from Web Sources

Guidelines:
- Use bullet points.
- Cite each statement with the corresponding source ID (e.g., (A1), (W3)).
- If a paper includes a publication date, mention it in parentheses after the title.
- Do NOT invent IDs or include sources not in the list.
- Always include information from both arXiv and Web sources.
`

// contextTmpl is the user message carrying the query and both source lists.
var contextTmpl = template.Must(template.New("context").Parse(`Query: {{.Query}}

arXiv Papers:
{{.Papers}}

Web Sources:
{{.Web}}
`))

// renderContext builds the user message from the query and the two lists.
func renderContext(query string, papers, web []types.SearchResult) (string, error) {
	var buf bytes.Buffer
	err := contextTmpl.Execute(&buf, struct {
		Query  string
		Papers string
		Web    string
	}{
		Query:  query,
		Papers: joinOrNone(papers),
		Web:    joinOrNone(web),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func joinOrNone(results []types.SearchResult) string {
	if len(results) == 0 {
		return noneLine
	}
	return strings.Join(search.FormatLines(results), "\n")
}
