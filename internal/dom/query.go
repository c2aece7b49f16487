package dom

import (
	"fmt"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// FindIslandMarkers returns every island marker script under root in
// document order.
func FindIslandMarkers(root *html.Node) []*html.Node {
	return htmlquery.Find(root, "//script[@"+IslandAttr+"]")
}

// FindIslandMarker returns the island marker script with the given id, or
// nil when the delivered markup carries no such marker.
func FindIslandMarker(root *html.Node, id string) *html.Node {
	expr := fmt.Sprintf("//script[@%s=%q]", IslandAttr, id)
	return htmlquery.FindOne(root, expr)
}

// FindBootstrap returns the bootstrap payload script under root, or nil.
func FindBootstrap(root *html.Node) *html.Node {
	return htmlquery.FindOne(root, "//script[@"+BootstrapAttr+"]")
}

// InnerText returns the concatenated text content of n. Used to read the
// JSON payload out of marker scripts.
func InnerText(n *html.Node) string {
	return htmlquery.InnerText(n)
}
