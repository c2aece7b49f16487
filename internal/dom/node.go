package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Comment payloads for range markers. The colon prefix keeps them from
// colliding with ordinary authored comments.
const (
	RangeStartData = "atoll:range-start"
	RangeEndData   = "atoll:range-end"
)

// IslandAttr is the attribute carrying an island marker's id on its script
// node.
const IslandAttr = "data-island"

// BootstrapAttr marks the script node carrying the hydration bootstrap
// payload.
const BootstrapAttr = "data-atoll-bootstrap"

// WrapperTag is the synthetic element the server inserts around a
// multi-node (fragment) island so the client has a single container to
// anchor at. It is unwrapped after successful hydration.
const WrapperTag = "atoll-island"

// NewElement returns a detached element node with the given tag.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewText returns a detached text node.
func NewText(value string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: value}
}

// NewRangeStart returns a detached range-start marker comment.
func NewRangeStart() *html.Node {
	return &html.Node{Type: html.CommentNode, Data: RangeStartData}
}

// NewRangeEnd returns a detached range-end marker comment.
func NewRangeEnd() *html.Node {
	return &html.Node{Type: html.CommentNode, Data: RangeEndData}
}

// IsRangeStart reports whether n is a range-start marker comment.
func IsRangeStart(n *html.Node) bool {
	return n != nil && n.Type == html.CommentNode && n.Data == RangeStartData
}

// IsRangeEnd reports whether n is a range-end marker comment.
func IsRangeEnd(n *html.Node) bool {
	return n != nil && n.Type == html.CommentNode && n.Data == RangeEndData
}

// IsIslandMarker reports whether n is a script node carrying island
// metadata.
func IsIslandMarker(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || !strings.EqualFold(n.Data, "script") {
		return false
	}
	return GetAttr(n, IslandAttr) != ""
}

// IsBootstrap reports whether n is the bootstrap payload script.
func IsBootstrap(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || !strings.EqualFold(n.Data, "script") {
		return false
	}
	_, ok := LookupAttr(n, BootstrapAttr)
	return ok
}

// IsTransparent reports whether n is skipped when counting ordinal
// children: every comment (range markers included) plus the island and
// bootstrap scripts.
func IsTransparent(n *html.Node) bool {
	if n == nil {
		return false
	}
	if n.Type == html.CommentNode {
		return true
	}
	return IsIslandMarker(n) || IsBootstrap(n)
}

// GetAttr returns the value of the named attribute, or "".
func GetAttr(n *html.Node, name string) string {
	v, _ := LookupAttr(n, name)
	return v
}

// LookupAttr returns the value of the named attribute and whether it is
// present.
func LookupAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// OrdinalChild returns the index-th marker-transparent child of parent, or
// nil when parent has fewer ordinal children.
func OrdinalChild(parent *html.Node, index int) *html.Node {
	i := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if IsTransparent(c) {
			continue
		}
		if i == index {
			return c
		}
		i++
	}
	return nil
}

// OrdinalIndex returns the marker-transparent index of child under parent,
// or -1 when child is not an ordinal child of parent.
func OrdinalIndex(parent, child *html.Node) int {
	i := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if IsTransparent(c) {
			continue
		}
		if c == child {
			return i
		}
		i++
	}
	return -1
}

// OrdinalCount returns the number of marker-transparent children of parent.
func OrdinalCount(parent *html.Node) int {
	i := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if !IsTransparent(c) {
			i++
		}
	}
	return i
}

// Remove detaches n from its parent. No-op for detached nodes.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ClearChildren detaches every child of n.
func ClearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Unwrap replaces wrapper with its own children, splicing them into
// wrapper's former position. Used to dissolve the synthetic fragment-island
// container after hydration.
func Unwrap(wrapper *html.Node) {
	parent := wrapper.Parent
	if parent == nil {
		return
	}
	next := wrapper.NextSibling
	for c := wrapper.FirstChild; c != nil; {
		nc := c.NextSibling
		wrapper.RemoveChild(c)
		parent.InsertBefore(c, next)
		c = nc
	}
	parent.RemoveChild(wrapper)
}
