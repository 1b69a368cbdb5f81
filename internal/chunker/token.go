package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// charsPerToken is the length-to-cost ratio behind EstimateTokens.
const charsPerToken = 4

var reSentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// EstimateTokens approximates transformation cost as ceil(chars / 4).
func EstimateTokens(text string) int {
	return tokensForRunes(utf8.RuneCountInString(text))
}

func tokensForRunes(n int) int {
	return (n + charsPerToken - 1) / charsPerToken
}

// SplitSentences cuts text after sentence-ending punctuation that is
// followed by whitespace. Empty segments are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range reSentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
