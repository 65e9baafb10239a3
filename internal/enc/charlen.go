package enc

import "unicode/utf8"

func usASCIICharLen(b []byte) (int, bool) {
	return 1, b[0] < utf8.RuneSelf
}

func binaryCharLen([]byte) (int, bool) {
	return 1, true
}

func utf8CharLen(b []byte) (int, bool) {
	if b[0] < utf8.RuneSelf {
		return 1, true
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return 1, false
	}
	return size, true
}

func utf16CharLen(bigEndian bool) CharLenFunc {
	unit := func(b []byte) uint16 {
		if bigEndian {
			return uint16(b[0])<<8 | uint16(b[1])
		}
		return uint16(b[1])<<8 | uint16(b[0])
	}
	return func(b []byte) (int, bool) {
		if len(b) < 2 {
			return len(b), false
		}
		u := unit(b)
		switch {
		case u >= 0xD800 && u <= 0xDBFF:
			if len(b) < 4 {
				return 2, false
			}
			lo := unit(b[2:])
			if lo < 0xDC00 || lo > 0xDFFF {
				return 2, false
			}
			return 4, true
		case u >= 0xDC00 && u <= 0xDFFF:
			return 2, false
		default:
			return 2, true
		}
	}
}

func utf32CharLen(bigEndian bool) CharLenFunc {
	return func(b []byte) (int, bool) {
		if len(b) < 4 {
			return len(b), false
		}
		var v uint32
		if bigEndian {
			v = uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		} else {
			v = uint32(b[3])<<24 | uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
		}
		if v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
			return 4, false
		}
		return 4, true
	}
}

func shiftJISCharLen(b []byte) (int, bool) {
	c := b[0]
	switch {
	case c < 0x80, c >= 0xA1 && c <= 0xDF:
		return 1, true
	case (c >= 0x81 && c <= 0x9F) || (c >= 0xE0 && c <= 0xFC):
		if len(b) < 2 {
			return 1, false
		}
		t := b[1]
		if (t >= 0x40 && t <= 0x7E) || (t >= 0x80 && t <= 0xFC) {
			return 2, true
		}
		return 1, false
	default:
		return 1, false
	}
}

func eucJPCharLen(b []byte) (int, bool) {
	isHigh := func(c byte) bool { return c >= 0xA1 && c <= 0xFE }
	c := b[0]
	switch {
	case c < 0x80:
		return 1, true
	case c == 0x8E:
		if len(b) < 2 || b[1] < 0xA1 || b[1] > 0xDF {
			return 1, false
		}
		return 2, true
	case c == 0x8F:
		if len(b) < 3 || !isHigh(b[1]) || !isHigh(b[2]) {
			return 1, false
		}
		return 3, true
	case isHigh(c):
		if len(b) < 2 || !isHigh(b[1]) {
			return 1, false
		}
		return 2, true
	default:
		return 1, false
	}
}
