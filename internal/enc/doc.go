// Package enc describes the byte encodings a rope can be tagged with.
//
// An Encoding is an immutable descriptor: its identity (name, aliases, registry
// index), its character width bounds, whether ASCII bytes mean ASCII in it, and
// the state machine that measures one character at a time. Descriptors are
// package-level values and are compared by pointer.
//
// Transcoding between encodings is not done here; the descriptor only exposes
// the golang.org/x/text codec so callers that explicitly convert can find it.
package enc
