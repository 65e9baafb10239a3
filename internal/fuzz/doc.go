// Package fuzztests houses Go fuzz harnesses for the rope factory and the
// snapshot decoder. They guard against panics, broken invariants and content
// drift on arbitrary operation sequences and inputs.
package fuzztests
