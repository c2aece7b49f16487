package view

import "golang.org/x/net/html"

// Props carries an island's serializable inputs. Values are restricted to
// JSON-representable kinds; floats are rejected by the canonical encoder
// because they cannot round-trip deterministically.
type Props map[string]any

// Listener is an event handler bound to a node via Builder.Listen.
type Listener func(payload any)

// Binding pairs an event name with its handler on a resolved node.
type Binding struct {
	Event   string
	Handler Listener
}

// IslandKind distinguishes how an island's markup is shaped. It is a closed
// set: single-node islands are marked on the node itself, fragment islands
// are wrapped in a synthetic container.
type IslandKind string

const (
	KindElement  IslandKind = "element"
	KindFragment IslandKind = "fragment"
)

// Valid reports whether k is one of the defined kinds.
func (k IslandKind) Valid() bool {
	return k == KindElement || k == KindFragment
}

// Marker is the per-island metadata the server embeds in the markup and the
// client consumes exactly once: enough to reconstruct and re-run exactly
// the component that produced the island.
type Marker struct {
	ID    string     `json:"id"`
	Type  string     `json:"type"`
	Props Props      `json:"props,omitempty"`
	Kind  IslandKind `json:"kind"`
}

// Render emits one component's construction sequence against a builder.
type Render func(b Builder, props Props) error

// Factory builds a component's render function against a signal service.
// The orchestrator calls factories with the same service shape the server
// used, so island code is ordinary view code.
type Factory func(svc *Service) Render

// Region is deferred content: declared during the forward walk, attached
// during the unwind pass at a resumed coordinate.
type Region func(b Builder) error

// Builder is the construction-call stream. The creating implementation
// appends new nodes; the reconciling implementation resolves each call
// against existing markup.
type Builder interface {
	// EnterElement opens an element with the given tag and makes it the
	// current scope. Pairs with ExitElement.
	EnterElement(tag string) (*html.Node, error)

	// Attr sets an attribute on the current element.
	Attr(name, value string) error

	// Listen binds an event handler to the current element.
	Listen(event string, h Listener) error

	// Text emits a text child in the current scope.
	Text(value string) error

	// ExitElement closes the current element scope.
	ExitElement() error

	// EnterFragment opens a variable-length region. Pairs with
	// ExitFragment. The creating builder bounds the region with
	// range markers; the reconciling builder enters the delivered
	// range at the current coordinate.
	EnterFragment() error

	// ExitFragment closes the innermost open region.
	ExitFragment() error

	// Defer declares a region whose content is attached out of order:
	// the forward walk passes over it, and FlushDeferred attaches it at
	// a resumed coordinate. The creating builder materializes deferred
	// regions immediately, since the server renders everything it ships.
	Defer(r Region) error

	// FlushDeferred attaches every pending deferred region. Called once
	// after the component's render function returns.
	FlushDeferred() error
}

// List renders n fragment items inside a marker-bounded region.
func List(b Builder, n int, item func(i int) error) error {
	if err := b.EnterFragment(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := item(i); err != nil {
			return err
		}
	}
	return b.ExitFragment()
}

// If renders then as a marker-bounded region when cond holds, and nothing
// at all otherwise. A false conditional leaves no markers in the markup,
// which is why skipping an absent region is a no-op.
func If(b Builder, cond bool, then func() error) error {
	if !cond {
		return nil
	}
	if err := b.EnterFragment(); err != nil {
		return err
	}
	if err := then(); err != nil {
		return err
	}
	return b.ExitFragment()
}

// Element renders a leaf element with optional text content.
func Element(b Builder, tag, text string) error {
	if _, err := b.EnterElement(tag); err != nil {
		return err
	}
	if text != "" {
		if err := b.Text(text); err != nil {
			return err
		}
	}
	return b.ExitElement()
}
