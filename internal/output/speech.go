package output

import (
	"regexp"
	"strings"
)

var reSentenceBreak = regexp.MustCompile(`([.!?])[ \t]+`)

// AddSSML marks paragraph breaks with a one second break and sentence ends
// inside a paragraph with a half second break.
func AddSSML(text string) string {
	text = reSentenceBreak.ReplaceAllString(text, `${1}<break time="500ms"/> `)
	return strings.ReplaceAll(text, "\n\n", "<break time=\"1s\"/>\n\n")
}

// InsertPauses adds ellipses where a reader should pause.
func InsertPauses(text string) string {
	text = reSentenceBreak.ReplaceAllString(text, "$1 ... ")
	return strings.ReplaceAll(text, "\n\n", " ...\n\n")
}

// Speech applies SSML or pause markup. SSML wins when both are set.
func Speech(text string, ssml, pauses bool) string {
	switch {
	case ssml:
		return AddSSML(text)
	case pauses:
		return InsertPauses(text)
	default:
		return text
	}
}
