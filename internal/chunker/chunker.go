package chunker

import (
	"strings"
	"unicode/utf8"
)

const sentenceSep = " "

// unit is a sentence (or word) with its cached length in characters.
type unit struct {
	text  string
	runes int
}

func newUnits(parts []string) []unit {
	units := make([]unit, len(parts))
	for i, p := range parts {
		units[i] = unit{text: p, runes: utf8.RuneCountInString(p)}
	}
	return units
}

// joinedRunes is the character length of units joined by a single space.
func joinedRunes(units []unit) int {
	if len(units) == 0 {
		return 0
	}
	n := len(units) - 1
	for _, u := range units {
		n += u.runes
	}
	return n
}

func joinUnits(units []unit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = u.text
	}
	return strings.Join(parts, sentenceSep)
}

// Split packs sentences greedily. The size check is made against the joined
// chunk text so every emitted chunk satisfies TokenEstimate <= batch size,
// except word sub-chunks of a single word longer than the batch.
func (c *implChunker) Split(text string) []Chunk {
	sentences := newUnits(SplitSentences(text))

	var (
		chunks  []Chunk
		current []unit
		carried int
	)

	for _, s := range sentences {
		if tokensForRunes(s.runes) > c.batchSize {
			// Oversized sentence: flush, then split by words with no carry.
			if len(current) > 0 {
				chunks = c.appendChunk(chunks, current, carried)
				current, carried = nil, 0
			}
			for _, sub := range c.splitWords(s.text) {
				chunks = c.appendChunk(chunks, sub, 0)
			}
			continue
		}

		if len(current) > 0 && tokensForRunes(joinedRunes(current)+1+s.runes) > c.batchSize {
			chunks = c.appendChunk(chunks, current, carried)

			carry := c.overlapCarry(current)
			for len(carry) > 0 && tokensForRunes(joinedRunes(carry)+1+s.runes) > c.batchSize {
				carry = carry[1:]
			}
			current = append([]unit(nil), carry...)
			carried = len(carry)
		}

		current = append(current, s)
	}

	if len(current) > 0 {
		chunks = c.appendChunk(chunks, current, carried)
	}

	return chunks
}

// overlapCarry walks the closed chunk backwards collecting sentences while the
// cumulative estimate stays within the overlap size. Order is preserved.
func (c *implChunker) overlapCarry(closed []unit) []unit {
	if c.overlapSize <= 0 {
		return nil
	}

	tokens := 0
	start := len(closed)
	for i := len(closed) - 1; i >= 0; i-- {
		t := tokensForRunes(closed[i].runes)
		if tokens+t > c.overlapSize {
			break
		}
		tokens += t
		start = i
	}
	return closed[start:]
}

// splitWords packs the whitespace-delimited words of an oversized sentence.
func (c *implChunker) splitWords(sentence string) [][]unit {
	words := newUnits(strings.Fields(sentence))

	var (
		groups  [][]unit
		current []unit
	)
	for _, w := range words {
		if len(current) > 0 && tokensForRunes(joinedRunes(current)+1+w.runes) > c.batchSize {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func (c *implChunker) appendChunk(chunks []Chunk, units []unit, carried int) []Chunk {
	text := joinUnits(units)
	idx := len(chunks)
	return append(chunks, Chunk{
		Index:         idx,
		Text:          text,
		TokenEstimate: EstimateTokens(text),
		HasOverlap:    idx > 0,
		Overlap:       joinUnits(units[:carried]),
	})
}
