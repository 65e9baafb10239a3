package rope

import (
	"encoding/binary"
	"hash/maphash"
)

var hashSeed = maphash.MakeSeed()

// Hash is a content hash over the bytes and the encoding identity. Ropes
// with equal bytes and encoding hash equal whatever their shape. The value
// is stable for the life of the process only.
func (r *Rope) Hash() uint64 {
	if r.hashed.Load() {
		return r.hash.Load()
	}
	var h maphash.Hash
	h.SetSeed(hashSeed)
	segments(r, 0, r.size, func(b []byte) bool {
		_, _ = h.Write(b)
		return true
	})
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], uint32(r.enc.Index()))
	_, _ = h.Write(idx[:])
	sum := h.Sum64()
	r.hash.Store(sum)
	r.hashed.Store(true)
	return sum
}

// HashBytes hashes b as a rope of encoding index encIndex would hash.
func HashBytes(b []byte, encIndex int) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	_, _ = h.Write(b)
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], uint32(encIndex))
	_, _ = h.Write(idx[:])
	return h.Sum64()
}
