package chunker

// Chunk is one unit of work handed to the transformation backend.
// Indices are contiguous starting at 0.
type Chunk struct {
	Index         int
	Text          string
	TokenEstimate int
	HasOverlap    bool

	// Overlap is the leading text of Text that was carried over from the
	// previous chunk. Empty when nothing was carried.
	Overlap string

	// Elements holds the source elements of a structure-aware chunk.
	Elements []Element
}

// ElementType tags a structural element of a document.
type ElementType string

const (
	ElementHeading   ElementType = "heading"
	ElementParagraph ElementType = "paragraph"
	ElementList      ElementType = "list"
	ElementCode      ElementType = "code"
	ElementTable     ElementType = "table"
)

// Element is a typed block of document content.
type Element struct {
	Type    ElementType
	Content string
}

// Options sizes the produced chunks, in estimated tokens.
type Options struct {
	BatchSize   int
	OverlapSize int
}
