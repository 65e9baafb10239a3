package enc

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Standard descriptors. Index values are stable.
var (
	ASCII8BIT = &Encoding{
		name: "ASCII-8BIT", aliases: []string{"BINARY"}, index: 0,
		minLen: 1, maxLen: 1, asciiCompatible: true, charLen: binaryCharLen,
	}
	USASCII = &Encoding{
		name: "US-ASCII", aliases: []string{"ASCII", "ANSI_X3.4-1968", "646"}, index: 1,
		minLen: 1, maxLen: 1, asciiCompatible: true, charLen: usASCIICharLen,
	}
	UTF8 = &Encoding{
		name: "UTF-8", aliases: []string{"CP65001"}, index: 2,
		minLen: 1, maxLen: 4, asciiCompatible: true, charLen: utf8CharLen,
	}
	ISO8859_1 = &Encoding{
		name: "ISO-8859-1", aliases: []string{"ISO8859-1", "ISO_8859-1:1987"}, index: 3,
		minLen: 1, maxLen: 1, asciiCompatible: true, charLen: binaryCharLen,
		codec: charmap.ISO8859_1,
	}
	Windows1252 = &Encoding{
		name: "Windows-1252", aliases: []string{"CP1252"}, index: 4,
		minLen: 1, maxLen: 1, asciiCompatible: true, charLen: binaryCharLen,
		codec: charmap.Windows1252,
	}
	UTF16LE = &Encoding{
		name: "UTF-16LE", index: 5,
		minLen: 2, maxLen: 4, charLen: utf16CharLen(false),
		codec: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	}
	UTF16BE = &Encoding{
		name: "UTF-16BE", aliases: []string{"UCS-2BE"}, index: 6,
		minLen: 2, maxLen: 4, charLen: utf16CharLen(true),
		codec: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	}
	UTF32LE = &Encoding{
		name: "UTF-32LE", aliases: []string{"UCS-4LE"}, index: 7,
		minLen: 4, maxLen: 4, charLen: utf32CharLen(false),
		codec: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
	}
	UTF32BE = &Encoding{
		name: "UTF-32BE", aliases: []string{"UCS-4BE"}, index: 8,
		minLen: 4, maxLen: 4, charLen: utf32CharLen(true),
		codec: utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
	}
	ShiftJIS = &Encoding{
		name: "Shift_JIS", aliases: []string{"SJIS"}, index: 9,
		minLen: 1, maxLen: 2, asciiCompatible: true, charLen: shiftJISCharLen,
		codec: japanese.ShiftJIS,
	}
	EUCJP = &Encoding{
		name: "EUC-JP", aliases: []string{"eucJP"}, index: 10,
		minLen: 1, maxLen: 3, asciiCompatible: true, charLen: eucJPCharLen,
		codec: japanese.EUCJP,
	}
)

var registry = []*Encoding{
	ASCII8BIT, USASCII, UTF8, ISO8859_1, Windows1252,
	UTF16LE, UTF16BE, UTF32LE, UTF32BE, ShiftJIS, EUCJP,
}

var byName = buildNameIndex()

func buildNameIndex() map[string]*Encoding {
	m := make(map[string]*Encoding, len(registry)*3)
	for i, e := range registry {
		if e.index != i {
			panic("enc: registry index mismatch for " + e.name)
		}
		for _, n := range append([]string{e.name}, e.aliases...) {
			key := strings.ToLower(n)
			if prev, dup := m[key]; dup {
				panic("enc: duplicate encoding name " + n + " (" + prev.name + ")")
			}
			m[key] = e
		}
	}
	return m
}

// All returns every registered descriptor in index order.
func All() []*Encoding {
	out := make([]*Encoding, len(registry))
	copy(out, registry)
	return out
}

// Count is the number of registered descriptors.
func Count() int { return len(registry) }

// ByIndex returns the descriptor registered at i.
func ByIndex(i int) (*Encoding, bool) {
	if i < 0 || i >= len(registry) {
		return nil, false
	}
	return registry[i], true
}

// Find resolves a name or alias, case-insensitively. Names unknown to the
// registry are resolved through the IANA index, so "latin1" or "csShiftJIS"
// find their descriptors too.
func Find(name string) (*Encoding, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	if e, ok := byName[strings.ToLower(name)]; ok {
		return e, true
	}
	codec, err := ianaindex.IANA.Encoding(name)
	if err != nil || codec == nil {
		return nil, false
	}
	for _, idx := range []*ianaindex.Index{ianaindex.MIME, ianaindex.IANA} {
		canonical, err := idx.Name(codec)
		if err != nil {
			continue
		}
		if e, ok := byName[strings.ToLower(canonical)]; ok {
			return e, true
		}
	}
	return nil, false
}

// MustFind is Find that panics on an unknown name. Meant for tables built at
// startup.
func MustFind(name string) *Encoding {
	e, ok := Find(name)
	if !ok {
		panic("enc: unknown encoding " + name)
	}
	return e
}
