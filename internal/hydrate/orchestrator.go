package hydrate

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/atollkit/atoll/internal/dom"
	"github.com/atollkit/atoll/internal/reconcile"
	"github.com/atollkit/atoll/internal/render"
	"github.com/atollkit/atoll/internal/view"
)

// Outcome says what happened to one island.
type Outcome string

const (
	// OutcomeHydrated: the walk completed and the island is live.
	OutcomeHydrated Outcome = "hydrated"

	// OutcomeFallback: the walk mismatched and the island was cleared and
	// re-rendered through ordinary creation.
	OutcomeFallback Outcome = "fallback"

	// OutcomeRecovered: the walk mismatched and a supplied recovery
	// strategy handled it.
	OutcomeRecovered Outcome = "recovered"

	// OutcomeUnregistered: the marker references a type with no registered
	// component. The island stays static.
	OutcomeUnregistered Outcome = "unregistered"

	// OutcomeMissing: the marker id has no corresponding node in the
	// delivered markup. The entry is skipped.
	OutcomeMissing Outcome = "missing-marker"
)

// IslandResult is one island's hydration record.
type IslandResult struct {
	ID      string
	Type    string
	Outcome Outcome
	Detail  string

	// Instance is set for hydrated and fallback outcomes.
	Instance *Instance
}

// Report collects per-island results for one page, in bootstrap order.
type Report struct {
	Islands []IslandResult
}

// Failed returns the number of islands that did not hydrate cleanly.
func (r *Report) Failed() int {
	n := 0
	for _, i := range r.Islands {
		if i.Outcome != OutcomeHydrated {
			n++
		}
	}
	return n
}

// Instance is a live island: its container, collected bindings, and the
// service whose effects were released when the walk completed.
type Instance struct {
	ID        string
	Type      string
	Container *html.Node
	Service   *view.Service
	Bindings  map[*html.Node][]view.Binding

	live bool
}

// Live reports whether the island finished hydrating and subsequent
// updates use ordinary creation rather than reconciliation.
func (i *Instance) Live() bool { return i.live }

// Fire invokes every handler bound to node for the named event.
func (i *Instance) Fire(node *html.Node, event string, payload any) {
	for _, b := range i.Bindings[node] {
		if b.Event == event {
			b.Handler(payload)
		}
	}
}

// Orchestrator replays the bootstrap payload, hydrating each island in
// delivery order.
type Orchestrator struct {
	reg *Registry
	log *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// New returns an orchestrator over the given component registry.
func New(reg *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{reg: reg, log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HydrateAll reads the bootstrap payload under root and hydrates every
// island it lists, in order. One island's failure never aborts the rest.
// The consumed bootstrap script is removed from the tree.
func (o *Orchestrator) HydrateAll(root *html.Node) (*Report, error) {
	boot := dom.FindBootstrap(root)
	if boot == nil {
		return &Report{}, nil
	}
	markers, err := parsePayload(dom.InnerText(boot))
	if err != nil {
		return nil, fmt.Errorf("hydrate: malformed bootstrap payload: %w", err)
	}
	report := &Report{}
	for _, m := range markers {
		report.Islands = append(report.Islands, o.hydrateIsland(root, m))
	}
	dom.Remove(boot)
	return report, nil
}

// HydrateIsland hydrates a single delivered marker.
func (o *Orchestrator) HydrateIsland(root *html.Node, m view.Marker) IslandResult {
	return o.hydrateIsland(root, m)
}

func (o *Orchestrator) hydrateIsland(root *html.Node, m view.Marker) IslandResult {
	res := IslandResult{ID: m.ID, Type: m.Type}

	script := dom.FindIslandMarker(root, m.ID)
	if script == nil {
		o.log.Warn("island marker not found in delivered markup",
			"island", m.ID, "type", m.Type)
		res.Outcome = OutcomeMissing
		res.Detail = "no marker node for id"
		return res
	}

	reg, ok := o.reg.lookup(m.Type)
	if !ok {
		o.log.Warn("no registered component for island type; leaving island static",
			"island", m.ID, "type", m.Type)
		res.Outcome = OutcomeUnregistered
		res.Detail = "type not in registry"
		return res
	}

	container, start, err := deriveContainer(script, m.Kind)
	if err != nil {
		o.log.Warn("island container could not be derived",
			"island", m.ID, "type", m.Type, "err", err)
		res.Outcome = OutcomeMissing
		res.Detail = err.Error()
		return res
	}

	svc := view.NewHydrating()
	eng := reconcile.New(container, reconcile.WithStartIndex(start))
	b := newBuilder(eng)
	renderFn := reg.factory(svc)

	walkErr := renderFn(b, m.Props)
	if walkErr == nil {
		walkErr = b.FlushDeferred()
	}
	if walkErr == nil {
		walkErr = eng.Finish()
	}

	if walkErr == nil {
		svc.Release()
		eng.SetLive()
		dom.Remove(script)
		if m.Kind == view.KindFragment {
			dom.Unwrap(container)
		}
		res.Outcome = OutcomeHydrated
		res.Instance = &Instance{
			ID:        m.ID,
			Type:      m.Type,
			Container: container,
			Service:   svc,
			Bindings:  b.bindings,
			live:      true,
		}
		return res
	}

	// The walk failed: discard queued effects so nothing fires twice, then
	// recover within this island's boundary.
	svc.Discard()
	mm := reconcile.AsMismatch(walkErr)
	if mm != nil {
		o.log.Warn("hydration mismatch; falling back to client render",
			"island", m.ID, "type", m.Type,
			"code", string(mm.Code), "path", mm.Path,
			"expected", mm.Expected, "actual", mm.Actual)
	} else {
		o.log.Warn("island render failed during hydration; falling back",
			"island", m.ID, "type", m.Type, "err", walkErr)
	}

	// Discard switched svc to live behavior, so the fallback render runs
	// its effects exactly once.
	fallback := func() error {
		return o.rerenderIsland(script, container, m, renderFn, svc, &res)
	}
	if mm != nil && reg.recovery != nil {
		if reg.recovery(mm, container, m.Props, renderFn, fallback) {
			res.Outcome = OutcomeRecovered
			res.Detail = mm.Error()
			return res
		}
	}
	if err := fallback(); err != nil {
		o.log.Error("island fallback render failed",
			"island", m.ID, "type", m.Type, "err", err)
		res.Outcome = OutcomeFallback
		res.Detail = err.Error()
		return res
	}
	res.Outcome = OutcomeFallback
	res.Detail = walkErr.Error()
	return res
}

// rerenderIsland clears the island's delivered markup and constructs it
// fresh through ordinary creation, in the same position. This is the only
// place a hydration failure is swallowed.
func (o *Orchestrator) rerenderIsland(script, container *html.Node, m view.Marker, renderFn view.Render, svc *view.Service, res *IslandResult) error {
	var bindings map[*html.Node][]view.Binding
	switch m.Kind {
	case view.KindElement:
		// Remove the stale target node, render the replacement detached,
		// and splice it in where the marker sits.
		if target := precedingOrdinal(script); target != nil {
			dom.Remove(target)
		}
		holder := dom.NewElement("div")
		b := render.NewBuilder(holder, nil)
		if err := renderFn(b, m.Props); err != nil {
			return err
		}
		for c := holder.FirstChild; c != nil; {
			next := c.NextSibling
			holder.RemoveChild(c)
			script.Parent.InsertBefore(c, script)
			c = next
		}
		dom.Remove(script)
		bindings = b.Bindings()
	case view.KindFragment:
		dom.ClearChildren(container)
		b := render.NewBuilder(container, nil)
		if err := renderFn(b, m.Props); err != nil {
			return err
		}
		dom.Unwrap(container)
		bindings = b.Bindings()
	default:
		return fmt.Errorf("unknown island kind %q", m.Kind)
	}

	res.Instance = &Instance{
		ID:        m.ID,
		Type:      m.Type,
		Container: container,
		Service:   svc,
		Bindings:  bindings,
		live:      true,
	}
	return nil
}

// deriveContainer maps a marker script to the engine anchor. A single-node
// island's container is the marked node's parent, anchored at the marked
// node's ordinal slot; a fragment island's container is the synthetic
// wrapper the marker sits in.
func deriveContainer(script *html.Node, kind view.IslandKind) (*html.Node, int, error) {
	switch kind {
	case view.KindElement:
		target := precedingOrdinal(script)
		if target == nil || script.Parent == nil {
			return nil, 0, fmt.Errorf("element island marker has no preceding node")
		}
		return script.Parent, dom.OrdinalIndex(script.Parent, target), nil
	case view.KindFragment:
		wrapper := script.Parent
		if wrapper == nil || wrapper.Type != html.ElementNode || wrapper.Data != dom.WrapperTag {
			return nil, 0, fmt.Errorf("fragment island marker is not inside a %s wrapper", dom.WrapperTag)
		}
		return wrapper, 0, nil
	default:
		return nil, 0, fmt.Errorf("unknown island kind %q", kind)
	}
}

// precedingOrdinal returns the nearest marker-transparent-exclusive sibling
// before n: the island node an element marker points at.
func precedingOrdinal(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if !dom.IsTransparent(s) {
			return s
		}
	}
	return nil
}

// parsePayload decodes the bootstrap JSON into ordered markers.
func parsePayload(raw string) ([]view.Marker, error) {
	var markers []view.Marker
	if err := json.Unmarshal([]byte(raw), &markers); err != nil {
		return nil, err
	}
	for i, m := range markers {
		if m.ID == "" || m.Type == "" {
			return nil, fmt.Errorf("entry %d: missing id or type", i)
		}
		if !m.Kind.Valid() {
			return nil, fmt.Errorf("entry %d (%s): unknown kind %q", i, m.ID, m.Kind)
		}
	}
	return markers, nil
}
