package tool

import (
	"regexp"
	"strings"

	"github.com/juricore/juricore/core"
)

// EntityExtractionToolName identifies the entity extraction tool.
const EntityExtractionToolName = "extract_entities"

// Entity extraction runs on shallow lexical patterns. It exists to narrow
// retrieval scope cheaply, not to be a full NER system; misses are harmless
// because retrieval still runs on the raw query text.
var (
	// Multi-word capitalized spans ("Acme Holdings", "Van der Berg").
	properNounPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s+(?:van|der|de|von|of|the)\s+)?(?:\s?[A-Z][a-zA-Z]+)+\b`)
	// Statute / case style citations ("Art. 12", "Section 4.2", "§ 823").
	citationPattern = regexp.MustCompile(`(?i)\b(?:art(?:icle|\.)?|section|sec\.|§)\s*\d+(?:\.\d+)*[a-z]?\b`)
	// Docket / file numbers ("C-131/12", "1 BvR 370/07").
	docketPattern = regexp.MustCompile(`\b(?:\d+\s+)?[A-Z][a-zA-Z]{0,3}[-/ ]?\d+/\d+\b`)
)

// Words that match the proper-noun pattern but carry no retrieval value.
var entityStopwords = map[string]struct{}{
	"What Is":     {},
	"How Do":      {},
	"Can You":     {},
	"Please Tell": {},
}

// NewEntityExtractionTool builds a tool that extracts named entities,
// citations and docket numbers from text and stages them on the tool context
// as retrieval scope refinements.
func NewEntityExtractionTool() *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to extract entities from (defaults to the current query)",
			},
		},
	}

	return NewFunctionTool(
		EntityExtractionToolName,
		"Extract named entities, citations and case numbers from text to narrow subsequent document searches.",
		params,
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			text, _ := args["text"].(string)
			if text == "" {
				text = tc.Query().Text
			}

			entities := ExtractEntities(text)
			if len(entities) > 0 {
				tc.AddEntities(entities...)
			}

			return map[string]any{"entities": entities}, nil
		},
	)
}

// ExtractEntities returns the distinct entities found in text, in order of
// first appearance.
func ExtractEntities(text string) []string {
	var out []string
	seen := map[string]struct{}{}

	add := func(matches []string) {
		for _, m := range matches {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			if _, skip := entityStopwords[m]; skip {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}

	add(citationPattern.FindAllString(text, -1))
	add(docketPattern.FindAllString(text, -1))
	add(properNounPattern.FindAllString(text, -1))

	return out
}
