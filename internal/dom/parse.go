package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseDocument parses a full HTML document.
func ParseDocument(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseFragment parses a markup fragment in body context and returns a
// detached container element holding the parsed nodes. Hydration anchors
// engines at containers, so tests and the CLI use this to turn delivered
// markup into a walkable tree.
func ParseFragment(markup string) (*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}
	container := NewElement("div")
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// Render serializes n to w using the standard HTML serializer.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// RenderChildren serializes every child of n in order, leaving n itself
// out. The server uses this to emit a rendered page container.
func RenderChildren(w io.Writer, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// RenderString serializes n's children to a string.
func RenderString(n *html.Node) (string, error) {
	var b strings.Builder
	if err := RenderChildren(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
