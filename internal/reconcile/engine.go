package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/atollkit/atoll/internal/dom"
	"github.com/atollkit/atoll/internal/position"
)

// Engine resolves construction calls against an existing markup tree.
//
// The engine is not safe for concurrent use; one hydration pass is one
// uninterrupted synchronous walk.
type Engine struct {
	root  *html.Node
	pos   position.Position
	elems []*html.Node

	// consumed holds range-start markers whose region has been entered.
	// Detection treats consumed markers as transparent, which is what
	// disambiguates adjacent regions.
	consumed map[*html.Node]bool

	// frames mirrors the position's range stack with engine-side context.
	frames []rangeFrame

	// spans records, per real parent, the real extent of regions already
	// consumed or skipped under it. Seek uses them to translate a marker's
	// real slot back into a virtual slot.
	spans map[*html.Node]map[*html.Node]spanRec

	live bool
}

type rangeFrame struct {
	rs       *html.Node
	parent   *html.Node
	size     int
	realBase int
	realSpan int
	// nested marks a range entered while another range was active under
	// the same real parent; its span is covered by the outer record.
	nested bool
	// recorded marks frames whose span was already recorded by an earlier
	// skip of the same region.
	recorded bool
}

type spanRec struct {
	base     int
	realSpan int
}

func (s spanRec) end() int { return s.base + s.realSpan }

// Option configures an Engine.
type Option func(*Engine)

// WithStartIndex anchors the walk at the container's index-th ordinal child
// slot instead of the first. Single-node islands that are not their
// parent's first child start here.
func WithStartIndex(index int) Option {
	return func(e *Engine) {
		e.pos = position.At(index)
	}
}

// New returns an Engine anchored at root, positioned at its first ordinal
// child slot.
func New(root *html.Node, opts ...Option) *Engine {
	e := &Engine{
		root:     root,
		pos:      position.Start(),
		consumed: make(map[*html.Node]bool),
		spans:    make(map[*html.Node]map[*html.Node]spanRec),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot captures the walk's coordinate and element scope so a deferred
// region can resume there later. Consumed markers and recorded spans are
// engine-wide and deliberately not captured.
type Snapshot struct {
	pos    position.Position
	elems  []*html.Node
	frames []rangeFrame
}

// Snapshot returns a resumable copy of the walk state.
func (e *Engine) Snapshot() Snapshot {
	elems := make([]*html.Node, len(e.elems))
	copy(elems, e.elems)
	frames := make([]rangeFrame, len(e.frames))
	copy(frames, e.frames)
	return Snapshot{pos: e.pos, elems: elems, frames: frames}
}

// Restore rewinds the walk to a previously captured snapshot.
func (e *Engine) Restore(s Snapshot) {
	e.pos = s.pos
	e.elems = make([]*html.Node, len(s.elems))
	copy(e.elems, s.elems)
	e.frames = make([]rangeFrame, len(s.frames))
	copy(e.frames, s.frames)
}

// Position returns the engine's current coordinate.
func (e *Engine) Position() position.Position {
	return e.pos
}

// Current returns the innermost matched element, or the anchor root when
// the walk is at the top level.
func (e *Engine) Current() *html.Node {
	if len(e.elems) == 0 {
		return e.root
	}
	return e.elems[len(e.elems)-1]
}

// Live reports whether the engine has been switched out of reconciling
// behavior.
func (e *Engine) Live() bool { return e.live }

// SetLive switches the engine to live behavior. Called by the orchestrator
// once an island's walk completes; subsequent updates create nodes through
// ordinary construction instead of reconciling.
func (e *Engine) SetLive() { e.live = true }

// Complete reports whether the walk has returned to the anchor level with
// no active ranges.
func (e *Engine) Complete() bool {
	return len(e.elems) == 0 && e.pos.Depth() == 1 && e.pos.RangeCount() == 0
}

// MatchElement resolves the node at the current coordinate, entering any
// marker-bounded region found there, and verifies its tag
// case-insensitively. On success the walk descends into the element.
func (e *Engine) MatchElement(tag string) (*html.Node, error) {
	node, err := e.resolveContent("<" + tag + ">")
	if err != nil {
		return nil, err
	}
	if node.Type != html.ElementNode {
		return nil, newMismatch(CodeWrongKind, e.pos.String(), "<"+tag+">", describeNode(node))
	}
	if !strings.EqualFold(node.Data, tag) {
		return nil, newMismatch(CodeTagMismatch, e.pos.String(), "<"+tag+">", "<"+node.Data+">")
	}
	e.pos = e.pos.EnterElement()
	e.elems = append(e.elems, node)
	return node, nil
}

// MatchText resolves the node at the current coordinate, requires it to be
// a text node, and overwrites its value when it differs from the expected
// one. Value drift between render and hydrate (a clock tick, a counter) is
// benign; only a wrong node kind is a mismatch. Advances to the next
// sibling slot.
func (e *Engine) MatchText(value string) (*html.Node, error) {
	node, err := e.resolveContent(fmt.Sprintf("text %q", value))
	if err != nil {
		return nil, err
	}
	if node.Type != html.TextNode {
		return nil, newMismatch(CodeWrongKind, e.pos.String(), fmt.Sprintf("text %q", value), describeNode(node))
	}
	if node.Data != value {
		node.Data = value
	}
	e.pos = e.pos.AdvanceToSibling()
	return node, nil
}

// ExitElement returns the walk to the matched element's own slot. The
// subtree already exists, so this is pure coordinate bookkeeping.
func (e *Engine) ExitElement() {
	e.pos = e.pos.ExitToParent()
	e.elems = e.elems[:len(e.elems)-1]
}

// Advance moves the walk to the next sibling slot.
func (e *Engine) Advance() {
	e.pos = e.pos.AdvanceToSibling()
}

// SetAttribute applies an attribute to the innermost matched element.
// Attributes never consult position.
func (e *Engine) SetAttribute(name, value string) {
	dom.SetAttr(e.Current(), name, value)
}

// EnterFragment requires a marker-bounded region at the current coordinate,
// measures its content length, and descends into its first item slot.
// Returns the measured size.
func (e *Engine) EnterFragment() (int, error) {
	node, rs := e.resolve(e.pos.RealIndex())
	if rs == nil {
		actual := "no range markers"
		if node != nil {
			actual = describeNode(node)
		}
		return 0, newMismatch(CodeMissingRange, e.pos.String(), "fragment region", actual)
	}
	if err := e.enterRangeAt(rs); err != nil {
		return 0, err
	}
	return e.frames[len(e.frames)-1].size, nil
}

// ExitFragment leaves the innermost fragment region. The region must be
// exhausted: producing fewer items than the delivered region holds is a
// disagreement, exactly as producing more is.
func (e *Engine) ExitFragment() error {
	r, ok := e.pos.ActiveRange()
	if !ok || len(e.frames) == 0 {
		return fmt.Errorf("exit fragment: no active fragment region at %s", e.pos)
	}
	if !r.Exhausted() {
		return newMismatch(CodeCountMismatch, e.pos.String(),
			fmt.Sprintf("%d items", r.End+1), fmt.Sprintf("%d items", r.Current))
	}
	f := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	e.pos = e.pos.ExitToParent()
	if !f.nested && !f.recorded {
		e.recordSpan(f.parent, f.rs, f.realBase, f.realSpan)
	}
	return nil
}

// Finish closes out the walk. Regions entered implicitly (the walk arrived
// at a range-start marker mid-match) have no explicit exit call in the
// construction stream; Finish pops them once exhausted. A region still
// holding unconsumed items means the client produced fewer children than
// the server delivered, which is a count mismatch like any other.
func (e *Engine) Finish() error {
	for {
		r, ok := e.pos.ActiveRange()
		if !ok || len(e.frames) == 0 {
			break
		}
		if !r.Exhausted() {
			return newMismatch(CodeCountMismatch, e.pos.String(),
				fmt.Sprintf("%d items", r.End+1), fmt.Sprintf("%d items", r.Current))
		}
		f := e.frames[len(e.frames)-1]
		e.frames = e.frames[:len(e.frames)-1]
		e.pos = e.pos.ExitToParent()
		if !f.nested && !f.recorded {
			e.recordSpan(f.parent, f.rs, f.realBase, f.realSpan)
		}
	}
	if len(e.elems) != 0 || e.pos.RangeCount() != 0 {
		return fmt.Errorf("walk ended mid-tree at %s", e.pos)
	}
	return nil
}

// enterRangeAt measures the region starting at rs, consumes the marker,
// and pushes the range both on the coordinate and the engine frame stack.
func (e *Engine) enterRangeAt(rs *html.Node) error {
	span, err := dom.MeasureRange(rs)
	if err != nil {
		return newMismatch(CodeUnterminatedRange, e.pos.String(), "matching range-end marker", "end of parent")
	}
	parent := e.Current()
	nested := len(e.frames) > 0 && e.frames[len(e.frames)-1].parent == parent
	recorded := false
	if recs := e.spans[parent]; recs != nil {
		_, recorded = recs[rs]
	}
	e.consumed[rs] = true
	e.frames = append(e.frames, rangeFrame{
		rs:       rs,
		parent:   parent,
		size:     span.Size,
		realBase: e.pos.RealIndex(),
		realSpan: span.RealSpan,
		nested:   nested,
		recorded: recorded,
	})
	e.pos = e.pos.EnterFragmentRange(span.Size)
	return nil
}

// resolveContent resolves the node at the current coordinate, implicitly
// entering marker-bounded regions encountered there. expected describes
// what the stream wanted, for mismatch diagnostics.
func (e *Engine) resolveContent(expected string) (*html.Node, error) {
	for {
		node, rs := e.resolve(e.pos.RealIndex())
		if rs != nil {
			if err := e.enterRangeAt(rs); err != nil {
				return nil, err
			}
			continue
		}
		if node == nil {
			return nil, newMismatch(CodeMissingChild, e.pos.String(), expected, "no node")
		}
		if r, ok := e.pos.ActiveRange(); ok && r.Exhausted() {
			return nil, newMismatch(CodeMissingChild, e.pos.String(), expected, "exhausted fragment region")
		}
		return node, nil
	}
}

// resolve walks the current parent's raw children looking for the ordinal
// slot target. It returns either the node occupying the slot, or the
// unconsumed range-start marker sitting at it. Consumed range-start
// markers, range-end markers, island scripts, and ordinary comments are
// transparent.
func (e *Engine) resolve(target int) (node, rs *html.Node) {
	count := 0
	for c := e.Current().FirstChild; c != nil; c = c.NextSibling {
		switch {
		case dom.IsRangeStart(c):
			if count == target && !e.consumed[c] {
				return nil, c
			}
		case dom.IsTransparent(c):
			// skip
		default:
			if count == target {
				return c, nil
			}
			count++
		}
	}
	return nil, nil
}

// recordSpan stores the real extent of a consumed or skipped region under
// parent, dropping records the new span covers (a popped outer range
// subsumes the nested ranges recorded while it was active).
func (e *Engine) recordSpan(parent, rs *html.Node, base, realSpan int) {
	recs := e.spans[parent]
	if recs == nil {
		recs = make(map[*html.Node]spanRec)
		e.spans[parent] = recs
	}
	nr := spanRec{base: base, realSpan: realSpan}
	for k, s := range recs {
		if k != rs && s.base >= nr.base && s.end() <= nr.end() {
			delete(recs, k)
		}
	}
	recs[rs] = nr
}

// virtualSlot translates a real ordinal slot under parent into the virtual
// slot the coordinate model uses, collapsing each recorded region before it
// into the single slot it occupies. lower bounds the translation to the
// current range's content when the walk is inside one.
func (e *Engine) virtualSlot(parent *html.Node, lower, real int) int {
	v := real - lower
	for _, s := range e.spans[parent] {
		if s.base >= lower && s.base < real && s.end() <= real {
			v -= s.realSpan - 1
		}
	}
	return v
}

func describeNode(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		return "<" + n.Data + ">"
	case html.TextNode:
		return fmt.Sprintf("text %q", n.Data)
	case html.CommentNode:
		return "comment"
	default:
		return "node"
	}
}
