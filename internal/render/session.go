package render

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/atollkit/atoll/internal/dom"
	"github.com/atollkit/atoll/internal/view"
)

// TokenGenerator produces render session tokens.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string. Panics if UUID
// generation fails, which does not happen in practice.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns a predetermined token, for deterministic tests and
// golden comparison.
type FixedGenerator struct{ Token string }

// Generate returns the fixed token.
func (g FixedGenerator) Generate() string { return g.Token }

type pendingIsland struct {
	typeName string
	kind     view.IslandKind
	props    view.Props
}

// Session is one render request's registry state. It tracks nodes tagged as
// islands and, at decoration time, allocates their stable ids and emits
// their markers. Sessions are single-use and never shared across requests.
type Session struct {
	token    string
	active   bool
	pending  map[*html.Node]pendingIsland
	counters map[string]int
	entries  []view.Marker
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithTokenGenerator overrides the session token source.
func WithTokenGenerator(g TokenGenerator) SessionOption {
	return func(s *Session) {
		s.token = g.Generate()
	}
}

// NewSession starts a render session with a fresh token.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		token:    UUIDv7Generator{}.Generate(),
		active:   true,
		pending:  make(map[*html.Node]pendingIsland),
		counters: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the session's render token.
func (s *Session) Token() string { return s.token }

// Builder returns a creating builder bound to this session, appending under
// container.
func (s *Session) Builder(container *html.Node) *Builder {
	return NewBuilder(container, s)
}

// Markers returns the registry entries allocated during Finalize, in
// document order. Empty before Finalize.
func (s *Session) Markers() []view.Marker {
	out := make([]view.Marker, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Session) tag(n *html.Node, typeName string, kind view.IslandKind, props view.Props) {
	s.pending[n] = pendingIsland{typeName: typeName, kind: kind, props: props}
}

// Finalize walks the finished tree in document order, allocating a stable
// id for every tagged node it finds, inserting its marker script, and
// appending the bootstrap payload script to the container. Tagged nodes
// that never made it into the tree are ignored: no id, no marker, no
// payload entry. The session rejects further island registration
// afterwards.
func (s *Session) Finalize(container *html.Node) error {
	if !s.active {
		return &RegistrationError{Reason: "render session already finalized"}
	}
	s.active = false

	if err := s.decorate(container); err != nil {
		return err
	}
	if len(s.entries) == 0 {
		return nil
	}

	payload, err := s.payloadJSON()
	if err != nil {
		return err
	}
	boot := dom.NewElement("script")
	dom.SetAttr(boot, "type", "application/json")
	dom.SetAttr(boot, dom.BootstrapAttr, s.token)
	boot.AppendChild(dom.NewText(string(payload)))
	container.AppendChild(boot)
	return nil
}

func (s *Session) decorate(n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if p, ok := s.pending[c]; ok {
			if err := s.emitMarker(c, p); err != nil {
				return err
			}
			delete(s.pending, c)
		}
		if err := s.decorate(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) emitMarker(n *html.Node, p pendingIsland) error {
	id := fmt.Sprintf("%s-%d", p.typeName, s.counters[p.typeName])
	s.counters[p.typeName]++

	m := view.Marker{ID: id, Type: p.typeName, Props: p.props, Kind: p.kind}
	s.entries = append(s.entries, m)

	propsJSON, err := MarshalProps(p.props)
	if err != nil {
		return fmt.Errorf("island %s: %w", id, err)
	}
	script := dom.NewElement("script")
	dom.SetAttr(script, "type", "application/json")
	dom.SetAttr(script, dom.IslandAttr, id)
	dom.SetAttr(script, "data-island-type", p.typeName)
	dom.SetAttr(script, "data-island-kind", string(p.kind))
	script.AppendChild(dom.NewText(string(propsJSON)))

	switch p.kind {
	case view.KindElement:
		// Marker goes immediately after the marked node.
		n.Parent.InsertBefore(script, n.NextSibling)
	case view.KindFragment:
		// Marker goes inside the wrapper, after the range-end marker.
		n.AppendChild(script)
	}
	return nil
}

// payloadJSON serializes the ordered marker list as canonical JSON.
func (s *Session) payloadJSON() ([]byte, error) {
	list := make([]any, 0, len(s.entries))
	for _, m := range s.entries {
		entry := map[string]any{
			"id":   m.ID,
			"type": m.Type,
			"kind": string(m.Kind),
		}
		if m.Props != nil {
			entry["props"] = map[string]any(m.Props)
		}
		list = append(list, entry)
	}
	return marshalCanonical(list)
}
