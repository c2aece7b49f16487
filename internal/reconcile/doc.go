// Package reconcile matches a replayed view-construction sequence against
// markup that already exists, instead of creating nodes.
//
// An Engine is anchored at a container node and holds a position.Position.
// Each construction call resolves to the existing node at the current
// coordinate: elements are verified by tag, text nodes by kind (their value
// is overwritten on benign drift), and marker-bounded variable-length
// regions are entered implicitly when the walk arrives at a range-start
// comment. Any disagreement surfaces as a *MismatchError carrying the
// coordinate and an expected/actual description.
//
// A walk is a single synchronous pass: it either completes, leaving the
// position back at the anchor level, or stops at the first mismatch. There
// is no partial recovery inside a walk; recovery is the orchestrator's job.
package reconcile
