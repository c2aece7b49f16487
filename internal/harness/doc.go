// Package harness runs conformance scenarios end to end: render a page of
// fixture components on the server side, serialize it, re-parse the markup
// the way a client would receive it, hydrate every island, and compare the
// resulting trace against golden files.
//
// Scenarios are YAML files. A scenario can install a divergent client-side
// variant of a component to force a structural mismatch and exercise the
// fallback path; everything else must hydrate cleanly.
package harness
