package query

import "strings"

// Stop words to filter out when checking for verbatim matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "did": true, "i": true, "my": true, "what": true,
	"which": true, "any": true, "me": true, "about": true,
}

// tokenizeAndFilter splits text into lowercased words without punctuation or stop words.
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}<>"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}
	return filtered
}

// containsAllQuestionWords reports whether every content word of the
// question appears in the document.
func containsAllQuestionWords(document, question string) bool {
	questionWords := tokenizeAndFilter(question)
	if len(questionWords) == 0 {
		return false
	}

	docWords := make(map[string]bool)
	for _, word := range tokenizeAndFilter(document) {
		docWords[word] = true
	}
	for _, w := range questionWords {
		if !docWords[w] {
			return false
		}
	}
	return true
}
