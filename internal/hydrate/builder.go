package hydrate

import (
	"golang.org/x/net/html"

	"github.com/atollkit/atoll/internal/reconcile"
	"github.com/atollkit/atoll/internal/view"
)

// builder is the reconciling construction back end: each call resolves an
// existing node through the engine instead of creating one.
type builder struct {
	eng      *reconcile.Engine
	bindings map[*html.Node][]view.Binding
	deferred []pendingRegion
}

type pendingRegion struct {
	region view.Region
	snap   reconcile.Snapshot
}

var _ view.Builder = (*builder)(nil)

func newBuilder(eng *reconcile.Engine) *builder {
	return &builder{
		eng:      eng,
		bindings: make(map[*html.Node][]view.Binding),
	}
}

func (b *builder) EnterElement(tag string) (*html.Node, error) {
	return b.eng.MatchElement(tag)
}

func (b *builder) Attr(name, value string) error {
	b.eng.SetAttribute(name, value)
	return nil
}

func (b *builder) Listen(event string, h view.Listener) error {
	n := b.eng.Current()
	b.bindings[n] = append(b.bindings[n], view.Binding{Event: event, Handler: h})
	return nil
}

func (b *builder) Text(value string) error {
	_, err := b.eng.MatchText(value)
	return err
}

// ExitElement returns to the matched element's slot and advances to its
// next sibling, so the following construction call targets the right slot.
func (b *builder) ExitElement() error {
	b.eng.ExitElement()
	b.eng.Advance()
	return nil
}

func (b *builder) EnterFragment() error {
	_, err := b.eng.EnterFragment()
	return err
}

func (b *builder) ExitFragment() error {
	return b.eng.ExitFragment()
}

// Defer captures the walk state, skips past the region's delivered content,
// and queues the region for the unwind pass.
func (b *builder) Defer(r view.Region) error {
	snap := b.eng.Snapshot()
	if _, err := b.eng.SkipFragment(); err != nil {
		return err
	}
	b.deferred = append(b.deferred, pendingRegion{region: r, snap: snap})
	return nil
}

// FlushDeferred attaches pending regions last-registered first, so each
// backward seek finds its own region's marker. Regions deferred while
// attaching are processed in the same pass.
func (b *builder) FlushDeferred() error {
	final := b.eng.Snapshot()
	for len(b.deferred) > 0 {
		p := b.deferred[len(b.deferred)-1]
		b.deferred = b.deferred[:len(b.deferred)-1]

		b.eng.Restore(p.snap)
		ok, err := b.eng.SeekFragment(nil)
		if err != nil {
			return err
		}
		if !ok {
			// Empty or absent on the server: nothing to hydrate.
			continue
		}
		if err := p.region(b); err != nil {
			return err
		}
		if err := b.eng.ExitFragment(); err != nil {
			return err
		}
	}
	b.eng.Restore(final)
	return nil
}
