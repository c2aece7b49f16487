// Package render is the server side: it builds markup trees through
// ordinary node creation, tags islands as it goes, and decorates the
// finished tree with the markers and the bootstrap payload the client
// orchestrator consumes.
//
// Registration is lazy and atomic. A node is tagged with pending island
// metadata when its Island call runs, but the registry entry — and its
// stable id — is allocated only when the node is decorated into the
// outgoing markup. An island that a conditional dropped from the tree is
// never walked during decoration, so it never gets an id, never appears in
// the bootstrap payload, and never causes a client-side lookup failure.
//
// Every render request gets its own Session; no registry or counter state
// crosses requests.
package render
