package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/poiesic/jobtrail/core"
)

// NoMatchAnswer is returned when retrieval finds nothing.
const NoMatchAnswer = "I couldn't find any matching job application emails for this question."

const promptTemplate = `You are an assistant specializing in understanding job application emails.

Use ONLY the context given. Do NOT guess or hallucinate.

QUESTION:
%s

CONTEXT FROM EMAILS:
%s

Provide a concise, accurate status update:`

// BuildPrompt fills the answer prompt with the question and retrieved entries.
func BuildPrompt(question string, results []*core.SearchResult) string {
	return fmt.Sprintf(promptTemplate, question, buildContext(results))
}

func buildContext(results []*core.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || r.Entry == nil {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("EMAIL:\n%s\nMETADATA: %s", r.Entry.Text, formatMetadata(r.Entry.Metadata)))
	}
	return strings.Join(blocks, "\n\n")
}

// formatMetadata renders metadata as space separated key=value pairs in key order.
func formatMetadata(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + m[k]
	}
	return strings.Join(pairs, " ")
}
