// Package position implements the coordinate model used to track "where we
// are" in delivered markup while a view-construction sequence is replayed.
//
// A Position is a path of sibling indices from an anchor root to the current
// slot, plus a stack of active fragment ranges. Positions are immutable:
// every transition returns a new value. Immutability matters because
// deferred regions capture a Position mid-walk and resume it later; a
// mutated coordinate would corrupt every captured copy.
//
// COORDINATE SPACES:
//
// The model distinguishes the virtual path from the real path. Each active
// or consumed fragment range occupies exactly one virtual slot under its
// parent, regardless of how many real sibling nodes its content spans.
// The virtual path gains a level per entered range; the real path gains a
// level only per entered element, and its last component always names the
// ordinal (marker-transparent) child slot under the current parent.
//
// INVARIANTS:
//   - Depth() == len(virtual path); every Enter* increases depth by exactly
//     1 and every exit decreases it by exactly 1 (point moves)
//   - for every Range: Start <= Current <= End+1 (End+1 means "just
//     exhausted, about to auto-pop")
//   - popping an inner range restores the outer range's Current advanced
//     by exactly one
//   - transitions never mutate; shared backing arrays are copied on write
package position
