// Package align pairs the pages of two documents with a bounded-gap global
// sequence alignment and returns the result as an edit script.
//
// A single tolerance control (0-5) drives four derived parameters: how many
// consecutive pages may be skipped, what skipping a page costs, and the
// cutoff and surcharge that steer poor matches toward gaps. Tolerance 0 pairs
// pages strictly by position.
//
// The engine is synchronous and keeps no state between runs. Page-pair costs
// are computed at most once per run; the context is checked between pair
// evaluations so long runs can be cancelled.
package align
