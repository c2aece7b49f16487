// Package hydrate is the client side: it reads the bootstrap payload out of
// delivered markup, and for each island marker builds a reconciliation
// engine scoped to that island's container, replays the component's
// construction sequence against it, and switches the island live on
// success.
//
// Failure is contained at island granularity. A structural mismatch inside
// one island triggers that island's recovery — a supplied strategy or the
// default clear-and-rerender — and never aborts hydration of its siblings.
// Diagnostics go to the structured logger, never to end-user output.
package hydrate
