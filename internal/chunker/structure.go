package chunker

import (
	"strings"
	"unicode/utf8"
)

const elementSep = "\n\n"

// SplitElements keeps elements whole and joins them with blank lines. A
// heading starts a new chunk once the current one holds more than half the
// batch. An element that alone exceeds the batch is split with Split and each
// piece becomes its own chunk; only those pieces carry sentence overlap.
func (c *implChunker) SplitElements(elements []Element) []Chunk {
	var (
		chunks   []Chunk
		current  []Element
		curRunes int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = c.appendElements(chunks, current)
		current, curRunes = nil, 0
	}

	for _, el := range elements {
		elRunes := utf8.RuneCountInString(el.Content)

		if el.Type == ElementHeading && 2*tokensForRunes(curRunes) > c.batchSize {
			flush()
		}

		if tokensForRunes(elRunes) > c.batchSize {
			flush()
			for _, piece := range c.Split(el.Content) {
				chunks = c.appendElements(chunks, []Element{{Type: el.Type, Content: piece.Text}})
			}
			continue
		}

		next := elRunes
		if len(current) > 0 {
			next += curRunes + utf8.RuneCountInString(elementSep)
		}
		if len(current) > 0 && tokensForRunes(next) > c.batchSize {
			flush()
			next = elRunes
		}

		current = append(current, el)
		curRunes = next
	}
	flush()

	return chunks
}

func (c *implChunker) appendElements(chunks []Chunk, elements []Element) []Chunk {
	parts := make([]string, len(elements))
	for i, el := range elements {
		parts[i] = el.Content
	}
	text := strings.Join(parts, elementSep)
	idx := len(chunks)
	return append(chunks, Chunk{
		Index:         idx,
		Text:          text,
		TokenEstimate: EstimateTokens(text),
		HasOverlap:    idx > 0,
		Elements:      elements,
	})
}
