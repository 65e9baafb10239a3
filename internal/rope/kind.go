package rope

// Kind tags the rope variant.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindConcat
	KindSubstring
	KindRepeating
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindConcat:
		return "concat"
	case KindSubstring:
		return "substring"
	case KindRepeating:
		return "repeating"
	default:
		return "unknown"
	}
}
