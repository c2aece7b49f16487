package position

import (
	"fmt"
	"strings"
)

// Range tracks one variable-length region anchored under a fixed parent.
//
// ParentPath is the virtual path of the slot the range occupies (captured at
// entry and never advanced while the range is active). Start/End bound the
// range's virtual item indices; Current is the item index the walk is at.
// Base is the real ordinal slot where the range content begins under its
// real parent.
type Range struct {
	ParentPath []int
	Start      int
	End        int
	Current    int
	Base       int
}

// Exhausted reports whether every item of the range has been consumed.
// An exhausted range is in the End+1 state and auto-pops on the next exit.
func (r Range) Exhausted() bool {
	return r.Current > r.End
}

// level returns the virtual path level occupied by the range's item index.
func (r Range) level() int {
	return len(r.ParentPath)
}

// Position is an immutable coordinate into an ordinal markup tree.
//
// The zero value is not meaningful; use Start or At.
type Position struct {
	path   []int   // virtual path, one component per element or range level
	real   []int   // real path, one component per element level
	ranges []Range // active ranges, outermost first
}

// Start returns the coordinate of the anchor's first child slot.
func Start() Position {
	return At(0)
}

// At returns a coordinate pointing at the anchor's index-th ordinal child
// slot. Used to anchor a walk at a single-node island that is not its
// parent's first child.
func At(index int) Position {
	return Position{path: []int{index}, real: []int{index}}
}

// Depth returns the coordinate's depth, which always equals the virtual
// path length.
func (p Position) Depth() int {
	return len(p.path)
}

// Path returns a copy of the virtual path.
func (p Position) Path() []int {
	out := make([]int, len(p.path))
	copy(out, p.path)
	return out
}

// Index returns the last virtual path component, the sibling slot the
// coordinate points at.
func (p Position) Index() int {
	return p.path[len(p.path)-1]
}

// RealIndex returns the ordinal (marker-transparent) child slot under the
// current real parent. This is the only component resolution needs.
func (p Position) RealIndex() int {
	return p.real[len(p.real)-1]
}

// RangeCount returns the number of active ranges.
func (p Position) RangeCount() int {
	return len(p.ranges)
}

// ActiveRange returns the innermost range and whether the coordinate is
// currently at that range's item level.
func (p Position) ActiveRange() (Range, bool) {
	if len(p.ranges) == 0 {
		return Range{}, false
	}
	top := p.ranges[len(p.ranges)-1]
	return top, top.level() == len(p.path)-1
}

// EnterElement descends into the first child slot of the node at the
// current coordinate.
func (p Position) EnterElement() Position {
	return Position{
		path:   appendCopy(p.path, 0),
		real:   appendCopy(p.real, 0),
		ranges: p.ranges,
	}
}

// AdvanceToSibling moves the coordinate to the next sibling slot. If a
// range is active at this depth its Current advances in lockstep.
func (p Position) AdvanceToSibling() Position {
	np := incLast(p.path)
	nr := incLast(p.real)
	return Position{path: np, real: nr, ranges: p.bumpActiveRange(len(np) - 1)}
}

// AdvanceOver moves the coordinate to the next sibling slot while stepping
// the real slot past realSpan ordinal nodes. Supports skipping an entire
// fragment region that occupies one virtual slot but realSpan real slots.
func (p Position) AdvanceOver(realSpan int) Position {
	np := incLast(p.path)
	nr := make([]int, len(p.real))
	copy(nr, p.real)
	nr[len(nr)-1] += realSpan
	return Position{path: np, real: nr, ranges: p.bumpActiveRange(len(np) - 1)}
}

// ExitToParent drops the deepest level of the coordinate.
//
// If the dropped level is the item level of the innermost active range and
// that range is exhausted, the range is popped and the coordinate advances
// at the next shallower level instead (auto-exit). The real slot is left
// where the range content ended, which is exactly the next real sibling
// slot past the range. If the dropped level belongs to a non-exhausted
// range the range is popped without the advance; deferred regions that end
// early are repositioned through skip/seek, never through exit.
func (p Position) ExitToParent() Position {
	last := len(p.path) - 1
	if n := len(p.ranges); n > 0 && p.ranges[n-1].level() == last {
		top := p.ranges[n-1]
		rest := p.ranges[:n-1]
		if top.Exhausted() {
			out := Position{path: p.path[:last], real: p.real, ranges: rest}
			// Advance without touching the real slot: in-range advances
			// already walked it past the content.
			np := incLast(out.path)
			return Position{path: np, real: out.real, ranges: out.bumpActiveRange(len(np) - 1)}
		}
		return Position{path: p.path[:last], real: p.real, ranges: rest}
	}
	return Position{
		path:   p.path[:last],
		real:   p.real[:len(p.real)-1],
		ranges: p.ranges,
	}
}

// EnterFragmentRange pushes a range of the given content length (0 for an
// empty region) anchored at the current slot and descends into its first
// item slot. A zero-size range starts already exhausted.
func (p Position) EnterFragmentRange(size int) Position {
	r := Range{
		ParentPath: appendCopy(p.path[:len(p.path)-1], p.Index()),
		Start:      0,
		End:        size - 1,
		Current:    0,
		Base:       p.RealIndex(),
	}
	nr := make([]Range, len(p.ranges), len(p.ranges)+1)
	copy(nr, p.ranges)
	nr = append(nr, r)
	return Position{
		path: appendCopy(p.path, 0),
		// Range items live at the same real level: the real slot already
		// points at the first content node (markers are transparent).
		real:   p.real,
		ranges: nr,
	}
}

// SeekTo repositions the deepest level at the given virtual slot and real
// ordinal slot, keeping an active range's Current in lockstep. Supports
// relocating the walk onto a previously skipped region; ordinary forward
// movement never uses it.
func (p Position) SeekTo(index, real int) Position {
	np := make([]int, len(p.path))
	copy(np, p.path)
	np[len(np)-1] = index
	nr := make([]int, len(p.real))
	copy(nr, p.real)
	nr[len(nr)-1] = real
	ranges := p.ranges
	if n := len(ranges); n > 0 && ranges[n-1].level() == len(np)-1 {
		ranges = make([]Range, n)
		copy(ranges, p.ranges)
		ranges[n-1].Current = index
	}
	return Position{path: np, real: nr, ranges: ranges}
}

// Equal reports whether two coordinates are identical, including their
// range stacks.
func (p Position) Equal(q Position) bool {
	if !intsEqual(p.path, q.path) || !intsEqual(p.real, q.real) {
		return false
	}
	if len(p.ranges) != len(q.ranges) {
		return false
	}
	for i := range p.ranges {
		a, b := p.ranges[i], q.ranges[i]
		if !intsEqual(a.ParentPath, b.ParentPath) ||
			a.Start != b.Start || a.End != b.End ||
			a.Current != b.Current || a.Base != b.Base {
			return false
		}
	}
	return true
}

// String renders the virtual path for diagnostics, e.g. "[0.2.1]" or
// "[0.1 r1:2/3]" when a range is active.
func (p Position) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range p.path {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprintf(&b, "%d", c)
	}
	if n := len(p.ranges); n > 0 {
		top := p.ranges[n-1]
		fmt.Fprintf(&b, " r%d:%d/%d", n, top.Current, top.End+1)
	}
	b.WriteByte(']')
	return b.String()
}

// bumpActiveRange returns the range stack with the innermost range's
// Current incremented, when that range is active at the given level.
func (p Position) bumpActiveRange(level int) []Range {
	n := len(p.ranges)
	if n == 0 || p.ranges[n-1].level() != level {
		return p.ranges
	}
	out := make([]Range, n)
	copy(out, p.ranges)
	out[n-1].Current++
	return out
}

func appendCopy(s []int, v int) []int {
	out := make([]int, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

func incLast(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	out[len(out)-1]++
	return out
}

func intsEqual(a, b []int) bool {
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
