// Package trace records what the rope factory and ropectl are doing.
//
// Tracing is off unless a tracer is configured. The Factory takes a Tracer
// in its Options and emits point events when a flattening heuristic fires;
// ropectl wraps each command in a span.
//
//	ropectl bench --trace=- --trace-level=detail
//
// A Level admits every Scope at least as coarse as itself:
//
//	phase   ScopeCommand
//	detail  ScopeCommand, ScopeOp (depth-limit and base flattens)
//	debug   all of the above plus ScopeNode (each eager small join)
//
// Events carry ordered key/value attributes. StreamTracer writes them as
// text or NDJSON as they arrive, RingTracer keeps the most recent ones for a
// later dump, and MultiTracer feeds several tracers at once.
package trace
