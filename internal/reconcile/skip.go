package reconcile

import (
	"golang.org/x/net/html"

	"github.com/atollkit/atoll/internal/dom"
)

// SkipFragment moves the walk past a deferred region without resolving its
// contents, so siblings further along the parent can be matched first.
//
// When the region rendered no markers at all (a conditional that was false
// on the server) this is a no-op and reports false. When an unconsumed
// range-start marker sits at the current slot, the coordinate advances past
// the measured content and the region's extent is recorded so a later seek
// can translate the marker back into a coordinate.
func (e *Engine) SkipFragment() (bool, error) {
	_, rs := e.resolve(e.pos.RealIndex())
	if rs == nil {
		return false, nil
	}
	span, err := dom.MeasureRange(rs)
	if err != nil {
		return false, newMismatch(CodeUnterminatedRange, e.pos.String(), "matching range-end marker", "end of parent")
	}
	// The marker stays unconsumed: seek finds regions by scanning for the
	// nearest unconsumed range-start.
	e.recordSpan(e.Current(), rs, e.pos.RealIndex(), span.RealSpan)
	e.pos = e.pos.AdvanceOver(span.RealSpan)
	return true, nil
}

// SeekFragment relocates the walk to a previously skipped region and
// descends into it, scanning backward from nextSibling (or from the
// parent's last child when the caller has no known next sibling) for the
// nearest unconsumed range-start under the current parent.
//
// Reports false without moving when no marker is found: the region was
// empty or absent on the server and there is nothing to hydrate. This also
// covers a deferred region nested under an ancestor region that was itself
// absent — the seek degrades to a no-op rather than guessing a coordinate.
func (e *Engine) SeekFragment(nextSibling *html.Node) (bool, error) {
	rs := e.findUnconsumedStart(nextSibling)
	if rs == nil {
		return false, nil
	}
	base := dom.RealIndexOf(rs)
	lower := 0
	if r, ok := e.pos.ActiveRange(); ok {
		lower = r.Base
	}
	e.pos = e.pos.SeekTo(e.virtualSlot(e.Current(), lower, base), base)
	return true, e.enterRangeAt(rs)
}

// findUnconsumedStart scans the current parent's children backward for the
// range-start of the nearest complete region. Depth counting keeps the scan
// from stopping at a nested region's own marker, and consumed markers are
// passed over, which is what disambiguates two adjacent deferred regions.
func (e *Engine) findUnconsumedStart(nextSibling *html.Node) *html.Node {
	var n *html.Node
	if nextSibling != nil {
		n = nextSibling.PrevSibling
	} else {
		n = e.Current().LastChild
	}
	depth := 0
	for ; n != nil; n = n.PrevSibling {
		switch {
		case dom.IsRangeEnd(n):
			depth++
		case dom.IsRangeStart(n):
			if depth > 0 {
				depth--
			}
			if depth == 0 && !e.consumed[n] {
				return n
			}
		}
	}
	return nil
}
