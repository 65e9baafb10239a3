package rope

import "unsafe"

// View is a read-only contiguous image of a rope's bytes. It keeps the rope
// reachable for as long as the view is, so the buffer stays valid.
type View struct {
	owner *Rope
	data  []byte
}

// Materialize returns the contiguous bytes of r, flattening once and
// caching the buffer. Leaves are viewed in place.
func (r *Rope) Materialize() View {
	return View{owner: r, data: r.flatBytes()}
}

// Owner is the rope the view was taken from.
func (v View) Owner() *Rope { return v.owner }

// Len is the number of bytes.
func (v View) Len() int { return len(v.data) }

// Bytes exposes the buffer. Callers must not modify it.
func (v View) Bytes() []byte { return v.data }

// Ptr is the address of the first byte, for handing to native code. It is
// nil for an empty view.
func (v View) Ptr() *byte {
	if len(v.data) == 0 {
		return nil
	}
	return unsafe.SliceData(v.data)
}

// At returns the byte at i.
func (v View) At(i int) byte { return v.data[i] }

// CopyTo copies the bytes into dst and returns the number copied.
func (v View) CopyTo(dst []byte) int { return copy(dst, v.data) }

// String returns a copy of the bytes as a string.
func (v View) String() string { return string(v.data) }
