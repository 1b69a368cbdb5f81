package extract

import (
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/chunkflow/internal/chunker"
)

var (
	reHeading = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)
	reList    = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)
	reFence   = regexp.MustCompile("^(```|~~~)")
)

// ParseMarkdown splits markdown into typed elements: headings, fenced code,
// tables, lists and paragraphs. Heading markers are dropped; other blocks
// keep their source text.
func ParseMarkdown(text string) []chunker.Element {
	var (
		elements []chunker.Element
		block    []string
		kind     chunker.ElementType
	)

	flush := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		if content != "" {
			elements = append(elements, chunker.Element{Type: kind, Content: content})
		}
		block, kind = nil, ""
	}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if m := reFence.FindString(trimmed); m != "" {
			flush()
			block = append(block, line)
			for i++; i < len(lines); i++ {
				block = append(block, lines[i])
				if strings.HasPrefix(strings.TrimSpace(lines[i]), m) {
					break
				}
			}
			kind = chunker.ElementCode
			flush()
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			flush()
			elements = append(elements, chunker.Element{Type: chunker.ElementHeading, Content: m[1]})
			continue
		}

		lineKind := chunker.ElementParagraph
		switch {
		case strings.HasPrefix(trimmed, "|"):
			lineKind = chunker.ElementTable
		case reList.MatchString(line):
			lineKind = chunker.ElementList
		case kind == chunker.ElementList && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")):
			// continuation of a list item
			lineKind = chunker.ElementList
		}

		if kind != "" && kind != lineKind {
			flush()
		}
		kind = lineKind
		block = append(block, line)
	}
	flush()

	return elements
}

// paragraphs splits plain text on blank lines.
func paragraphs(text string) []chunker.Element {
	var elements []chunker.Element
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			elements = append(elements, chunker.Element{Type: chunker.ElementParagraph, Content: p})
		}
	}
	return elements
}
