package render

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/atollkit/atoll/internal/dom"
	"github.com/atollkit/atoll/internal/view"
)

// Builder is the creating construction back end: every call appends new
// nodes under the container. It never consults a coordinate — there is
// nothing to reconcile against.
type Builder struct {
	container *html.Node
	stack     []*html.Node
	frags     []*html.Node // parents of open fragment regions
	bindings  map[*html.Node][]view.Binding
	session   *Session
}

var _ view.Builder = (*Builder)(nil)

// NewBuilder returns a creating builder appending under container. A nil
// session builds markup that cannot register islands; the hydration
// fallback path uses that mode.
func NewBuilder(container *html.Node, session *Session) *Builder {
	return &Builder{
		container: container,
		bindings:  make(map[*html.Node][]view.Binding),
		session:   session,
	}
}

// Bindings returns the listener bindings collected during construction.
func (b *Builder) Bindings() map[*html.Node][]view.Binding {
	return b.bindings
}

func (b *Builder) parent() *html.Node {
	if len(b.stack) == 0 {
		return b.container
	}
	return b.stack[len(b.stack)-1]
}

// EnterElement creates an element, appends it to the current scope, and
// descends into it.
func (b *Builder) EnterElement(tag string) (*html.Node, error) {
	n := dom.NewElement(tag)
	b.parent().AppendChild(n)
	b.stack = append(b.stack, n)
	return n, nil
}

// Attr sets an attribute on the current element.
func (b *Builder) Attr(name, value string) error {
	if len(b.stack) == 0 {
		return fmt.Errorf("attr %q: no open element", name)
	}
	dom.SetAttr(b.stack[len(b.stack)-1], name, value)
	return nil
}

// Listen records an event binding on the current element.
func (b *Builder) Listen(event string, h view.Listener) error {
	if len(b.stack) == 0 {
		return fmt.Errorf("listen %q: no open element", event)
	}
	n := b.stack[len(b.stack)-1]
	b.bindings[n] = append(b.bindings[n], view.Binding{Event: event, Handler: h})
	return nil
}

// Text appends a text node in the current scope.
func (b *Builder) Text(value string) error {
	b.parent().AppendChild(dom.NewText(value))
	return nil
}

// ExitElement closes the current element scope.
func (b *Builder) ExitElement() error {
	if len(b.stack) == 0 {
		return fmt.Errorf("exit element: no open element")
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// EnterFragment opens a variable-length region, bounding it with a
// range-start marker so the client can measure it without knowing its size
// in advance.
func (b *Builder) EnterFragment() error {
	p := b.parent()
	p.AppendChild(dom.NewRangeStart())
	b.frags = append(b.frags, p)
	return nil
}

// ExitFragment closes the innermost region with a range-end marker.
func (b *Builder) ExitFragment() error {
	if len(b.frags) == 0 {
		return fmt.Errorf("exit fragment: no open fragment")
	}
	p := b.frags[len(b.frags)-1]
	if p != b.parent() {
		return fmt.Errorf("exit fragment: fragment closed in a different element scope")
	}
	b.frags = b.frags[:len(b.frags)-1]
	p.AppendChild(dom.NewRangeEnd())
	return nil
}

// Defer materializes the region immediately: the server renders everything
// it ships, so there is nothing to postpone.
func (b *Builder) Defer(r view.Region) error {
	if err := b.EnterFragment(); err != nil {
		return err
	}
	if err := r(b); err != nil {
		return err
	}
	return b.ExitFragment()
}

// FlushDeferred is a no-op for the creating builder.
func (b *Builder) FlushDeferred() error { return nil }

// Island renders content as an independently hydratable region and tags it
// with pending metadata. The stable id is allocated later, at decoration
// time, and only when the tagged node actually made it into the outgoing
// tree.
//
// KindElement content must render exactly one root element, which becomes
// the hydration target. KindFragment content is wrapped in a synthetic
// container element.
func (b *Builder) Island(typeName string, kind view.IslandKind, props view.Props, content view.Render) error {
	if b.session == nil {
		return &RegistrationError{Type: typeName, Reason: "no active render session"}
	}
	if !b.session.active {
		return &RegistrationError{Type: typeName, Reason: "render session already finalized"}
	}
	if !kind.Valid() {
		return &RegistrationError{Type: typeName, Reason: fmt.Sprintf("unknown island kind %q", kind)}
	}

	switch kind {
	case view.KindElement:
		p := b.parent()
		before := p.LastChild
		if err := content(b, props); err != nil {
			return err
		}
		target := firstAfter(p, before)
		if target == nil || target.Type != html.ElementNode || target.NextSibling != nil {
			return &RegistrationError{Type: typeName, Reason: "element island must render exactly one root element"}
		}
		b.session.tag(target, typeName, kind, props)
	case view.KindFragment:
		wrapper := dom.NewElement(dom.WrapperTag)
		b.parent().AppendChild(wrapper)
		b.stack = append(b.stack, wrapper)
		if err := b.EnterFragment(); err != nil {
			return err
		}
		if err := content(b, props); err != nil {
			return err
		}
		if err := b.ExitFragment(); err != nil {
			return err
		}
		b.stack = b.stack[:len(b.stack)-1]
		b.session.tag(wrapper, typeName, kind, props)
	}
	return nil
}

// firstAfter returns the first child of p following the given node, or p's
// first child when after is nil.
func firstAfter(p, after *html.Node) *html.Node {
	if after == nil {
		return p.FirstChild
	}
	return after.NextSibling
}
