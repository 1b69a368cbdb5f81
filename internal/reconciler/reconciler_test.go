package reconciler

import (
	"strings"
	"testing"

	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
	"github.com/stretchr/testify/assert"
)

const boundary = "this is a long repeated boundary segment of more than fifty characters exactly here"

func ok(index int, text string) scheduler.ChunkResult {
	return scheduler.ChunkResult{Index: index, OutputText: text, Success: true}
}

func failed(index int) scheduler.ChunkResult {
	return scheduler.ChunkResult{Index: index, ErrorMessage: "boom"}
}

func TestReconcileEmpty(t *testing.T) {
	assert.Equal(t, "", New(Options{}).Reconcile(nil))
	assert.Equal(t, "", New(Options{}).Reconcile([]scheduler.ChunkResult{failed(0)}))
}

func TestReconcileIdentity(t *testing.T) {
	text := "  Some text with trailing space and\nnewlines.\n\n  "
	assert.Equal(t, text, New(Options{}).Reconcile([]scheduler.ChunkResult{ok(0, text)}))
}

func TestReconcileStripsOverlap(t *testing.T) {
	prev := "Opening paragraph, then ..." + boundary
	cur := boundary + " additional new content"

	got := New(Options{}).Reconcile([]scheduler.ChunkResult{ok(0, prev), ok(1, cur)})

	assert.Equal(t, prev+Separator+"additional new content", got)
	assert.Equal(t, 1, strings.Count(got, boundary))
}

func TestReconcileBelowThreshold(t *testing.T) {
	shared := strings.Repeat("z", 49)
	prev := "first piece " + shared
	cur := shared + " second piece"

	got := New(Options{}).Reconcile([]scheduler.ChunkResult{ok(0, prev), ok(1, cur)})

	assert.Equal(t, prev+Separator+cur, got)
}

func TestReconcilePrefersLongestMatch(t *testing.T) {
	prev := "lead " + boundary
	cur := boundary + " tail"

	got := New(Options{MinOverlap: 10}).Reconcile([]scheduler.ChunkResult{ok(0, prev), ok(1, cur)})

	assert.Equal(t, prev+Separator+"tail", got)
}

func TestReconcileOrdersByIndex(t *testing.T) {
	results := []scheduler.ChunkResult{ok(2, "third"), ok(0, "first"), ok(1, "second")}

	got := New(Options{}).Reconcile(results)

	assert.Equal(t, "first\n\nsecond\n\nthird", got)
}

func TestReconcileSilentGap(t *testing.T) {
	results := []scheduler.ChunkResult{ok(0, "first"), failed(1), ok(2, "third")}

	assert.Equal(t, "first\n\nthird", New(Options{}).Reconcile(results))
}

func TestReconcileGapMarker(t *testing.T) {
	results := []scheduler.ChunkResult{failed(0), ok(1, "second"), failed(2), failed(3), ok(4, "fifth")}

	got := New(Options{GapMarker: "[missing]"}).Reconcile(results)

	assert.Equal(t, "[missing]\n\nsecond\n\n[missing]\n\nfifth", got)
}

func TestReconcileLeadingGapKeepsFirstOutputVerbatim(t *testing.T) {
	first := boundary + " and then the rest"
	results := []scheduler.ChunkResult{failed(0), ok(1, first)}

	got := New(Options{GapMarker: boundary}).Reconcile(results)

	assert.Equal(t, boundary+Separator+first, got)
}

func TestReconcileDropsFullyDuplicatedPiece(t *testing.T) {
	prev := "intro " + boundary
	got := New(Options{}).Reconcile([]scheduler.ChunkResult{ok(0, prev), ok(1, boundary), ok(2, "next")})

	assert.Equal(t, prev+Separator+"next", got)
}

func TestReconcileMultibyte(t *testing.T) {
	shared := strings.Repeat("đường ", 12)
	prev := "Mở đầu " + shared
	cur := shared + "kết thúc"

	got := New(Options{}).Reconcile([]scheduler.ChunkResult{ok(0, prev), ok(1, cur)})

	assert.Equal(t, prev+Separator+"kết thúc", got)
}
