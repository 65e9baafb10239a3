package rope

import "ropes/internal/coderange"

// CodeRange classifies the bytes under the rope's encoding. Nodes whose
// children already know their code range derive it without touching bytes;
// otherwise the rope is flattened and scanned once, and the character count
// from that scan is cached alongside.
func (r *Rope) CodeRange() coderange.Tag {
	if t := r.KnownCodeRange(); t.Known() {
		return t
	}
	if t := r.deriveCodeRange(); t.Known() {
		r.setCodeRange(t)
		return t
	}
	tag, chars := coderange.Scan(r.enc, r.flatBytes())
	r.chars.set(chars)
	r.setCodeRange(tag)
	return tag
}

// deriveCodeRange looks only at cached child tags.
func (r *Rope) deriveCodeRange() coderange.Tag {
	switch r.kind {
	case KindConcat:
		return coderange.Concat(r.left.KnownCodeRange(), r.right.KnownCodeRange())
	case KindSubstring:
		if r.base.KnownCodeRange() == coderange.SevenBit {
			return coderange.SevenBit
		}
	case KindRepeating:
		if t := r.base.KnownCodeRange(); t == coderange.SevenBit || t == coderange.Valid {
			return t
		}
	}
	return coderange.Unknown
}

// IsASCIIOnly reports whether every byte is below 0x80 and the encoding is
// ASCII-compatible.
func (r *Rope) IsASCIIOnly() bool {
	return r.CodeRange() == coderange.SevenBit
}

// CharacterLength counts characters under the rope's encoding. Malformed
// sequences count one character per resynchronization step.
func (r *Rope) CharacterLength() int {
	if n, ok := r.chars.get(); ok {
		return n
	}
	tag := r.CodeRange()
	if n, ok := r.chars.get(); ok {
		return n
	}
	if n, ok := r.deriveCharacterLength(tag); ok {
		r.chars.set(n)
		return n
	}
	n := coderange.CountChars(r.enc, r.flatBytes(), tag)
	r.chars.set(n)
	return n
}

func (r *Rope) deriveCharacterLength(tag coderange.Tag) (int, bool) {
	if tag == coderange.SevenBit || (tag.Known() && r.enc.SingleByte()) {
		return r.size, true
	}
	if tag == coderange.Broken {
		return 0, false
	}
	switch r.kind {
	case KindConcat:
		ln, lok := r.left.chars.get()
		rn, rok := r.right.chars.get()
		if lok && rok && coderange.Concat(r.left.KnownCodeRange(), r.right.KnownCodeRange()).Known() {
			return ln + rn, true
		}
	case KindRepeating:
		if bt := r.base.KnownCodeRange(); bt == coderange.SevenBit || bt == coderange.Valid {
			if n, ok := r.base.chars.get(); ok {
				return n * r.count, true
			}
		}
	}
	return 0, false
}
