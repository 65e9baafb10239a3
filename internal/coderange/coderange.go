// Package coderange defines the validity classification of a byte run under
// its encoding.
//
// Known tags form a chain SevenBit < Valid < Broken. Unknown marks a value
// that has not been computed yet and is never a final answer.
package coderange

// Tag classifies how a byte run relates to its encoding.
type Tag uint8

const (
	Unknown  Tag = iota // not computed yet
	SevenBit            // only bytes < 0x80
	Valid               // every character well formed, some wider than 7 bits
	Broken              // at least one malformed sequence
)

// String returns the tag name used in dumps and diagnostics.
func (t Tag) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case SevenBit:
		return "7bit"
	case Valid:
		return "valid"
	case Broken:
		return "broken"
	default:
		return "invalid"
	}
}

// Known reports whether t is a settled classification.
func (t Tag) Known() bool {
	return t == SevenBit || t == Valid || t == Broken
}

// AtMost reports whether t sits at or below other in the lattice. Unknown is
// never comparable.
func (t Tag) AtMost(other Tag) bool {
	if !t.Known() || !other.Known() {
		return false
	}
	return t <= other
}

// Max returns the larger of two known tags, or Unknown if either is unknown.
func Max(a, b Tag) Tag {
	if !a.Known() || !b.Known() {
		return Unknown
	}
	if a > b {
		return a
	}
	return b
}

// Concat derives the tag of the concatenation of two runs in the same
// encoding without looking at their bytes. Broken inputs can heal at the
// seam (a split multi-byte character), so they yield Unknown and force a scan.
func Concat(left, right Tag) Tag {
	if !left.Known() || !right.Known() {
		return Unknown
	}
	if left == Broken || right == Broken {
		return Unknown
	}
	return Max(left, right)
}

// Parse maps a tag name back to its value.
func Parse(s string) (Tag, bool) {
	switch s {
	case "unknown":
		return Unknown, true
	case "7bit", "seven_bit":
		return SevenBit, true
	case "valid":
		return Valid, true
	case "broken":
		return Broken, true
	default:
		return Unknown, false
	}
}
