package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// RangeSpan describes a measured marker-bounded region.
type RangeSpan struct {
	Start *html.Node // the range-start comment
	End   *html.Node // the matching range-end comment

	// Size is the region's content length in ordinal slots. A nested
	// range counts as a single slot, exactly as it occupies a single
	// coordinate slot during the walk.
	Size int

	// RealSpan is the number of ordinal (marker-transparent) nodes the
	// region's content occupies under the parent, nested range content
	// included. RealSpan >= Size.
	RealSpan int
}

// MeasureRange scans forward from a range-start marker to its matching
// range-end, computing the region's size. Nested ranges are balanced by
// depth counting. An unterminated range returns an error; hydration treats
// it as a structural mismatch.
func MeasureRange(start *html.Node) (RangeSpan, error) {
	if !IsRangeStart(start) {
		return RangeSpan{}, fmt.Errorf("measure range: node is not a range-start marker")
	}
	span := RangeSpan{Start: start}
	n := start.NextSibling
	for n != nil {
		switch {
		case IsRangeStart(n):
			inner, err := MeasureRange(n)
			if err != nil {
				return RangeSpan{}, err
			}
			span.Size++
			span.RealSpan += inner.RealSpan
			n = inner.End.NextSibling
		case IsRangeEnd(n):
			span.End = n
			return span, nil
		case IsTransparent(n):
			n = n.NextSibling
		default:
			span.Size++
			span.RealSpan++
			n = n.NextSibling
		}
	}
	return RangeSpan{}, fmt.Errorf("measure range: no matching range-end marker")
}

// RealIndexOf returns the ordinal slot a range's first content node
// occupies under the parent: the number of ordinal nodes preceding the
// range-start marker.
func RealIndexOf(start *html.Node) int {
	i := 0
	for c := start.Parent.FirstChild; c != nil && c != start; c = c.NextSibling {
		if !IsTransparent(c) {
			i++
		}
	}
	return i
}
