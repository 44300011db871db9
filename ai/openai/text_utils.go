package openai

import (
	"strings"
	"unicode/utf8"
)

// maxPromptRunes bounds the message text sent to the model per request.
const maxPromptRunes = 6000

// truncateRunes shortens s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// prepareText trims and bounds text before it is placed in a prompt.
func prepareText(s string) string {
	return truncateRunes(strings.TrimSpace(s), maxPromptRunes)
}

func clampProbability(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
