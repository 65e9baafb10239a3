// Package rope implements the immutable byte-sequence representation behind
// runtime strings and symbols.
//
// A Rope is one of four variants, told apart by its Kind:
//
//   - Leaf: owns a contiguous byte buffer
//   - Concat: the bytes of Left followed by the bytes of Right
//   - Substring: a window [Offset, Offset+ByteLength) over Base
//   - Repeating: Base repeated Count times
//
// Ropes are built by a Factory, whose Concat, Substring and Repeat run in
// constant time except where they choose to copy: results of at most a few
// dozen bytes become fresh leaves, and a tree that would grow past
// Options.MaxDepth is flattened instead.
//
// Byte length is exact from construction. Character length, code range, hash
// and the flattened buffer are computed on first use and cached in atomic
// cells. Concurrent first readers may compute the same value twice; they
// always agree, so no lock is taken and a Rope can be shared between
// goroutines freely.
//
// Flattening never recurses: deep concatenation chains and large repeat
// counts are walked with an explicit stack.
package rope
