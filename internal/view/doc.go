// Package view defines the contract between declarative component code and
// the two construction back ends: the creating builder the server renders
// with, and the reconciling builder hydration replays with.
//
// Component code sees only the Builder interface, so the same render
// function produces markup on the server and resolves existing nodes on the
// client. The entire hydration mechanism depends on render functions being
// deterministic: same props, same construction-call sequence.
package view
