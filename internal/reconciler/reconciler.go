// Package reconciler merges ordered chunk outputs into one text, removing
// the text duplicated by chunk overlap.
package reconciler

import (
	"sort"
	"strings"

	"github.com/nguyentantai21042004/chunkflow/internal/scheduler"
)

const (
	// DefaultWindow is how many characters of each side are compared.
	DefaultWindow = 500
	// DefaultMinOverlap is the shortest match treated as duplicated overlap.
	DefaultMinOverlap = 50
	// Separator joins reconciled pieces.
	Separator = "\n\n"
)

// Options tunes overlap detection and failed-chunk handling.
type Options struct {
	Window     int
	MinOverlap int
	// GapMarker, when non-empty, is inserted once for every run of failed
	// chunks. Empty leaves a silent gap.
	GapMarker string
}

// Reconciler merges chunk results.
type Reconciler interface {
	Reconcile(results []scheduler.ChunkResult) string
}

type implReconciler struct {
	window     int
	minOverlap int
	gapMarker  string
}

// New creates a Reconciler, applying defaults for non-positive sizes.
func New(opts Options) Reconciler {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.MinOverlap <= 0 {
		opts.MinOverlap = DefaultMinOverlap
	}
	return &implReconciler{
		window:     opts.Window,
		minOverlap: opts.MinOverlap,
		gapMarker:  opts.GapMarker,
	}
}

// Reconcile consumes successful results in ascending index order. The first
// output is kept verbatim; each later one loses the longest prefix that
// repeats the tail of the text reconciled so far.
func (r *implReconciler) Reconcile(results []scheduler.ChunkResult) string {
	ordered := make([]scheduler.ChunkResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	var (
		pieces  []string
		inGap   bool
		emitted bool
	)
	for _, res := range ordered {
		if !res.Success {
			if r.gapMarker != "" && !inGap {
				pieces = append(pieces, r.gapMarker)
			}
			inGap = true
			continue
		}
		inGap = false

		piece := res.OutputText
		if emitted {
			piece = r.stripOverlap(r.tail(pieces), piece)
			if piece == "" {
				continue
			}
		}
		pieces = append(pieces, piece)
		emitted = true
	}

	return strings.Join(pieces, Separator)
}

// stripOverlap removes the duplicated prefix of cur and trims the remainder.
// cur is returned untouched when no match reaches the minimum length.
func (r *implReconciler) stripOverlap(tail []rune, cur string) string {
	n := r.overlapBytes(tail, cur)
	if n == 0 {
		return cur
	}
	return strings.TrimSpace(cur[n:])
}

// overlapBytes finds the longest suffix of tail that equals a prefix of cur's
// window, at least minOverlap characters long. It returns the match length
// in bytes of cur, or 0.
func (r *implReconciler) overlapBytes(tail []rune, cur string) int {
	head := firstRunes(cur, r.window)

	for n := min(len(tail), len(head)); n >= r.minOverlap; n-- {
		if equalRunes(tail[len(tail)-n:], head[:n]) {
			return len(string(head[:n]))
		}
	}
	return 0
}

// tail returns the last window characters of the pieces joined so far.
func (r *implReconciler) tail(pieces []string) []rune {
	var out []rune
	for i := len(pieces) - 1; i >= 0 && len(out) < r.window; i-- {
		seg := pieces[i]
		if i < len(pieces)-1 {
			seg += Separator
		}
		out = append(lastRunes(seg, r.window-len(out)), out...)
	}
	return out
}

func lastRunes(s string, n int) []rune {
	rs := []rune(s)
	if len(rs) > n {
		rs = rs[len(rs)-n:]
	}
	return rs
}

func firstRunes(s string, n int) []rune {
	rs := make([]rune, 0, n)
	for _, r := range s {
		if len(rs) == n {
			break
		}
		rs = append(rs, r)
	}
	return rs
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
