package enc

// Compatible picks the encoding of a binary operation on two byte runs.
//
// leftASCII and rightASCII report whether each side is pure 7-bit content;
// leftEmpty and rightEmpty whether each side has no bytes. The result is nil
// when the two runs cannot be combined without an explicit conversion.
func Compatible(left, right *Encoding, leftEmpty, rightEmpty, leftASCII, rightASCII bool) *Encoding {
	if left == right {
		return left
	}
	if rightEmpty {
		return left
	}
	if leftEmpty {
		if left.asciiCompatible && rightASCII {
			return left
		}
		return right
	}
	if !left.asciiCompatible || !right.asciiCompatible {
		return nil
	}
	if rightASCII {
		return left
	}
	if leftASCII {
		return right
	}
	return nil
}
