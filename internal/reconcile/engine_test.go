package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atollkit/atoll/internal/dom"
)

func parse(t *testing.T, markup string) *Engine {
	t.Helper()
	container, err := dom.ParseFragment(markup)
	require.NoError(t, err)
	return New(container)
}

func TestMatchElementWalk(t *testing.T) {
	e := parse(t, `<div class="x"><span>hi</span></div>`)

	div, err := e.MatchElement("div")
	require.NoError(t, err)
	assert.Equal(t, "div", div.Data)
	assert.Same(t, div, e.Current())

	span, err := e.MatchElement("span")
	require.NoError(t, err)
	assert.Equal(t, "span", span.Data)

	_, err = e.MatchText("hi")
	require.NoError(t, err)

	e.ExitElement()
	e.Advance()
	e.ExitElement()
	e.Advance()

	require.NoError(t, e.Finish())
	assert.True(t, e.Complete())
}

func TestMatchElementTagCaseInsensitive(t *testing.T) {
	e := parse(t, `<DIV></DIV>`)
	_, err := e.MatchElement("div")
	assert.NoError(t, err)
}

func TestTagMismatchAtTopLevel(t *testing.T) {
	e := parse(t, `<p>x</p>`)

	_, err := e.MatchElement("div")
	require.Error(t, err)
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeTagMismatch, m.Code)
	assert.Equal(t, "[0]", m.Path)
	assert.Equal(t, "<div>", m.Expected)
	assert.Equal(t, "<p>", m.Actual)
}

func TestWrongKindMismatch(t *testing.T) {
	e := parse(t, `plain text`)

	_, err := e.MatchElement("div")
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeWrongKind, m.Code)

	e = parse(t, `<div></div>`)
	_, err = e.MatchText("x")
	m = AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeWrongKind, m.Code)
}

func TestMissingChildMismatch(t *testing.T) {
	e := parse(t, `<div></div>`)
	_, err := e.MatchElement("div")
	require.NoError(t, err)

	_, err = e.MatchElement("span")
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeMissingChild, m.Code)
	assert.Equal(t, "[0.0]", m.Path)
}

func TestMatchTextOverwritesDrift(t *testing.T) {
	e := parse(t, `<div>old value</div>`)
	_, err := e.MatchElement("div")
	require.NoError(t, err)

	node, err := e.MatchText("new value")
	require.NoError(t, err)
	assert.Equal(t, "new value", node.Data, "text drift is adopted, not a mismatch")
}

func TestSetAttributeOnCurrent(t *testing.T) {
	e := parse(t, `<button></button>`)
	btn, err := e.MatchElement("button")
	require.NoError(t, err)

	e.SetAttribute("class", "primary")
	assert.Equal(t, "primary", dom.GetAttr(btn, "class"))
}

func TestWithStartIndexAnchorsMidParent(t *testing.T) {
	e := parse(t, `<p>a</p><div>b</div>`)
	eng := New(e.root, WithStartIndex(1))

	div, err := eng.MatchElement("div")
	require.NoError(t, err)
	assert.Equal(t, "div", div.Data)
}

func TestExplicitFragmentWalk(t *testing.T) {
	e := parse(t, `<ul><!--atoll:range-start--><li>a</li><li>b</li><!--atoll:range-end--></ul>`)

	_, err := e.MatchElement("ul")
	require.NoError(t, err)

	size, err := e.EnterFragment()
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	for _, want := range []string{"a", "b"} {
		_, err = e.MatchElement("li")
		require.NoError(t, err)
		_, err = e.MatchText(want)
		require.NoError(t, err)
		e.ExitElement()
		e.Advance()
	}

	require.NoError(t, e.ExitFragment())
	e.ExitElement()
	e.Advance()
	require.NoError(t, e.Finish())
	assert.True(t, e.Complete())
}

func TestExitFragmentCountMismatch(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><li>a</li><li>b</li><li>c</li><!--atoll:range-end-->`)

	_, err := e.EnterFragment()
	require.NoError(t, err)
	_, err = e.MatchElement("li")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()

	err = e.ExitFragment()
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeCountMismatch, m.Code)
	assert.Equal(t, "3 items", m.Expected)
	assert.Equal(t, "1 items", m.Actual)
}

func TestFragmentTooManyItems(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><li>a</li><!--atoll:range-end-->`)

	_, err := e.EnterFragment()
	require.NoError(t, err)
	_, err = e.MatchElement("li")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()

	_, err = e.MatchElement("li")
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeMissingChild, m.Code)
}

func TestEnterFragmentMissingRange(t *testing.T) {
	e := parse(t, `<li>a</li>`)
	_, err := e.EnterFragment()
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeMissingRange, m.Code)
	assert.Equal(t, "<li>", m.Actual)
}

func TestUnterminatedRange(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><li>a</li>`)
	_, err := e.EnterFragment()
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeUnterminatedRange, m.Code)
}

func TestImplicitRangeEntryAndFinish(t *testing.T) {
	// A fragment-wrapped region at the anchor level: the stream matches
	// elements directly and never calls EnterFragment.
	e := parse(t, `<!--atoll:range-start--><h2>t</h2><p>b</p><!--atoll:range-end-->`)

	_, err := e.MatchElement("h2")
	require.NoError(t, err)
	_, err = e.MatchText("t")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()

	_, err = e.MatchElement("p")
	require.NoError(t, err)
	_, err = e.MatchText("b")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()

	require.NoError(t, e.Finish())
	assert.True(t, e.Complete())
}

func TestFinishReportsShortWalk(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><h2>t</h2><p>b</p><!--atoll:range-end-->`)

	_, err := e.MatchElement("h2")
	require.NoError(t, err)
	_, err = e.MatchText("t")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()

	err = e.Finish()
	m := AsMismatch(err)
	require.NotNil(t, m)
	assert.Equal(t, CodeCountMismatch, m.Code)
}

func TestNestedFragments(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><li>a</li>`+
		`<!--atoll:range-start--><li>b</li><li>c</li><!--atoll:range-end-->`+
		`<li>d</li><!--atoll:range-end-->`)

	size, err := e.EnterFragment()
	require.NoError(t, err)
	assert.Equal(t, 3, size, "the nested region occupies one outer slot")

	matchLi := func(text string) {
		t.Helper()
		_, err := e.MatchElement("li")
		require.NoError(t, err)
		_, err = e.MatchText(text)
		require.NoError(t, err)
		e.ExitElement()
		e.Advance()
	}

	matchLi("a")

	innerSize, err := e.EnterFragment()
	require.NoError(t, err)
	assert.Equal(t, 2, innerSize)
	matchLi("b")
	matchLi("c")
	require.NoError(t, e.ExitFragment())

	matchLi("d")
	require.NoError(t, e.ExitFragment())
	require.NoError(t, e.Finish())
	assert.True(t, e.Complete())
}

func TestSnapshotRestore(t *testing.T) {
	e := parse(t, `<div></div><p></p>`)

	snap := e.Snapshot()
	_, err := e.MatchElement("div")
	require.NoError(t, err)
	assert.False(t, e.Position().Equal(snap.pos))

	e.Restore(snap)
	assert.True(t, e.Position().Equal(snap.pos))
	_, err = e.MatchElement("div")
	require.NoError(t, err)
}

func TestSetLive(t *testing.T) {
	e := parse(t, `<div></div>`)
	assert.False(t, e.Live())
	e.SetLive()
	assert.True(t, e.Live())
}
