package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipFragmentNoMarkersIsNoOp(t *testing.T) {
	e := parse(t, `<span>sig</span>`)

	before := e.Position()
	skipped, err := e.SkipFragment()
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.True(t, e.Position().Equal(before), "an absent region must not move the walk")
}

func TestSkipThenSeekRoundTrip(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><p>note</p><!--atoll:range-end--><span>sig</span>`)

	snap := e.Snapshot()
	skipped, err := e.SkipFragment()
	require.NoError(t, err)
	require.True(t, skipped)

	// The sibling past the skipped region resolves normally.
	_, err = e.MatchElement("span")
	require.NoError(t, err)
	_, err = e.MatchText("sig")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()
	final := e.Snapshot()

	// Return to the deferred region and hydrate it.
	e.Restore(snap)
	found, err := e.SeekFragment(nil)
	require.NoError(t, err)
	require.True(t, found)

	_, err = e.MatchElement("p")
	require.NoError(t, err)
	_, err = e.MatchText("note")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()
	require.NoError(t, e.ExitFragment())

	e.Restore(final)
	require.NoError(t, e.Finish())
	assert.True(t, e.Complete())
}

func TestSkipFragmentSpansMultipleRealSlots(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><p>a</p><p>b</p><p>c</p><!--atoll:range-end--><span>after</span>`)

	skipped, err := e.SkipFragment()
	require.NoError(t, err)
	require.True(t, skipped)
	assert.Equal(t, 1, e.Position().Index(), "a skipped region occupies one virtual slot")
	assert.Equal(t, 3, e.Position().RealIndex())

	_, err = e.MatchElement("span")
	require.NoError(t, err)
}

func TestSeekFragmentAbsentRegionIsNoOp(t *testing.T) {
	e := parse(t, `<span>sig</span>`)

	before := e.Position()
	found, err := e.SeekFragment(nil)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, e.Position().Equal(before))
}

func TestAdjacentSkippedRegionsSeekInLIFOOrder(t *testing.T) {
	e := parse(t, `<!--atoll:range-start--><p>first</p><!--atoll:range-end-->`+
		`<!--atoll:range-start--><em>second</em><!--atoll:range-end-->`)

	snapA := e.Snapshot()
	skipped, err := e.SkipFragment()
	require.NoError(t, err)
	require.True(t, skipped)

	snapB := e.Snapshot()
	skipped, err = e.SkipFragment()
	require.NoError(t, err)
	require.True(t, skipped)
	final := e.Snapshot()

	// Deferred regions flush LIFO: the later region hydrates first. The
	// backward scan must land on the second region's marker, not the first.
	e.Restore(snapB)
	found, err := e.SeekFragment(nil)
	require.NoError(t, err)
	require.True(t, found)
	_, err = e.MatchElement("em")
	require.NoError(t, err)
	_, err = e.MatchText("second")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()
	require.NoError(t, e.ExitFragment())

	// The second region's marker is consumed now; the scan passes over it
	// and finds the first region.
	e.Restore(snapA)
	found, err = e.SeekFragment(nil)
	require.NoError(t, err)
	require.True(t, found)
	_, err = e.MatchElement("p")
	require.NoError(t, err)
	_, err = e.MatchText("first")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()
	require.NoError(t, e.ExitFragment())

	e.Restore(final)
	require.NoError(t, e.Finish())
}

func TestSeekSkipsNestedMarkersByDepth(t *testing.T) {
	// The deferred region itself contains a nested region; the backward
	// scan must not stop at the nested range-start.
	e := parse(t, `<!--atoll:range-start--><p>a</p>`+
		`<!--atoll:range-start--><em>b</em><!--atoll:range-end-->`+
		`<!--atoll:range-end--><span>sig</span>`)

	snap := e.Snapshot()
	skipped, err := e.SkipFragment()
	require.NoError(t, err)
	require.True(t, skipped)

	_, err = e.MatchElement("span")
	require.NoError(t, err)
	_, err = e.MatchText("sig")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()
	final := e.Snapshot()

	e.Restore(snap)
	found, err := e.SeekFragment(nil)
	require.NoError(t, err)
	require.True(t, found)

	require.NotEmpty(t, e.frames)
	assert.Equal(t, 2, e.frames[len(e.frames)-1].size)

	e.Restore(final)
	require.NoError(t, e.Finish())
}

func TestSkipInsideElement(t *testing.T) {
	e := parse(t, `<div><!--atoll:range-start--><p>note</p><!--atoll:range-end--><span>sig</span></div>`)

	_, err := e.MatchElement("div")
	require.NoError(t, err)

	snap := e.Snapshot()
	skipped, err := e.SkipFragment()
	require.NoError(t, err)
	require.True(t, skipped)

	_, err = e.MatchElement("span")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()
	final := e.Snapshot()

	e.Restore(snap)
	found, err := e.SeekFragment(nil)
	require.NoError(t, err)
	require.True(t, found)
	_, err = e.MatchElement("p")
	require.NoError(t, err)
	_, err = e.MatchText("note")
	require.NoError(t, err)
	e.ExitElement()
	e.Advance()
	require.NoError(t, e.ExitFragment())

	e.Restore(final)
	e.ExitElement()
	e.Advance()
	require.NoError(t, e.Finish())
	assert.True(t, e.Complete())
}
