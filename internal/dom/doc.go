// Package dom is the markup-tree façade the renderer and the hydrator share.
//
// Trees are golang.org/x/net/html node trees. On top of them this package
// defines the marker vocabulary: range-start/range-end comments bounding
// variable-length regions, script[data-island] island markers, and the
// bootstrap payload script. All markers are transparent — ordinal child
// counting skips them, so the construction sequence never sees them.
//
// Marker discovery uses XPath queries via github.com/antchfx/htmlquery.
package dom
