// Package store provides the SQLite-backed render cache.
//
// Rendered island fragments are keyed by (component type, canonical props
// hash): identical props always canonicalize to identical bytes, so a hit
// returns byte-identical markup without re-running the component. Entries
// carry provenance — the render session token that produced them and a
// creation timestamp — for operator diagnostics.
//
// The cache is strictly an optimization for the serving path. Hydration
// correctness never depends on it.
package store
