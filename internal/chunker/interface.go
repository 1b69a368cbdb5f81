package chunker

// Chunker partitions document text into ordered, size-bounded chunks.
type Chunker interface {
	// Split segments raw text into sentences and packs them into chunks,
	// carrying trailing sentences of each closed chunk into the next one.
	Split(text string) []Chunk

	// SplitElements packs typed structural elements into chunks, preferring
	// to break before headings once a chunk is more than half full.
	SplitElements(elements []Element) []Chunk
}
