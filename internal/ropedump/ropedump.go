// Package ropedump serializes rope trees with msgpack. Shared nodes are
// written once; loading rebuilds the tree through a Factory, so the result
// holds the same bytes but may take a different shape.
package ropedump

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/rope"
)

// Current schema version - increment when Snapshot format changes
const schemaVersion uint16 = 1

var (
	ErrSchema  = errors.New("ropedump: unsupported schema")
	ErrCorrupt = errors.New("ropedump: corrupt snapshot")
)

// Snapshot is the serialized form of one rope DAG. Nodes are in post-order:
// every reference points at a lower index.
type Snapshot struct {
	Schema uint16
	Root   uint32
	Nodes  []Node
}

// Node is one rope node. Only the fields of its kind are set.
type Node struct {
	Kind      uint8
	Encoding  string
	CodeRange uint8  `msgpack:",omitempty"`
	Bytes     []byte `msgpack:",omitempty"`
	Left      uint32 `msgpack:",omitempty"`
	Right     uint32 `msgpack:",omitempty"`
	Base      uint32 `msgpack:",omitempty"`
	Offset    uint64 `msgpack:",omitempty"`
	Length    uint64 `msgpack:",omitempty"`
	Count     uint64 `msgpack:",omitempty"`
}

// Capture flattens the DAG under r into a snapshot.
func Capture(r *rope.Rope) (*Snapshot, error) {
	index := make(map[*rope.Rope]uint32)
	snap := &Snapshot{Schema: schemaVersion}

	type frame struct {
		r        *rope.Rope
		expanded bool
	}
	stack := []frame{{r: r}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := index[top.r]; done {
			continue
		}
		if !top.expanded {
			stack = append(stack, frame{r: top.r, expanded: true})
			switch top.r.Kind() {
			case rope.KindConcat:
				stack = append(stack, frame{r: top.r.Right()}, frame{r: top.r.Left()})
			case rope.KindSubstring, rope.KindRepeating:
				stack = append(stack, frame{r: top.r.Base()})
			}
			continue
		}
		n, err := nodeOf(top.r, index)
		if err != nil {
			return nil, err
		}
		id, err := safecast.Conv[uint32](len(snap.Nodes))
		if err != nil {
			return nil, fmt.Errorf("ropedump: too many nodes: %w", err)
		}
		snap.Nodes = append(snap.Nodes, n)
		index[top.r] = id
	}
	snap.Root = index[r]
	return snap, nil
}

func nodeOf(r *rope.Rope, index map[*rope.Rope]uint32) (Node, error) {
	n := Node{Kind: uint8(r.Kind()), Encoding: r.Encoding().Name()}
	var err error
	switch r.Kind() {
	case rope.KindLeaf:
		n.Bytes = r.LeafBytes()
		n.CodeRange = uint8(r.KnownCodeRange())
	case rope.KindConcat:
		n.Left, n.Right = index[r.Left()], index[r.Right()]
	case rope.KindSubstring:
		n.Base = index[r.Base()]
		if n.Offset, err = safecast.Conv[uint64](r.Offset()); err == nil {
			n.Length, err = safecast.Conv[uint64](r.ByteLength())
		}
	case rope.KindRepeating:
		n.Base = index[r.Base()]
		n.Count, err = safecast.Conv[uint64](r.Count())
	}
	return n, err
}

// Restore rebuilds the rope a snapshot describes.
func Restore(f *rope.Factory, snap *Snapshot) (*rope.Rope, error) {
	if snap.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, snap.Schema, schemaVersion)
	}
	if len(snap.Nodes) == 0 || int(snap.Root) >= len(snap.Nodes) {
		return nil, fmt.Errorf("%w: root %d of %d nodes", ErrCorrupt, snap.Root, len(snap.Nodes))
	}
	built := make([]*rope.Rope, len(snap.Nodes))
	ref := func(i int, id uint32) (*rope.Rope, error) {
		if int(id) >= i {
			return nil, fmt.Errorf("%w: node %d refers forward to %d", ErrCorrupt, i, id)
		}
		return built[id], nil
	}

	for i, n := range snap.Nodes {
		e, ok := enc.Find(n.Encoding)
		if !ok {
			return nil, fmt.Errorf("%w: node %d: unknown encoding %q", ErrCorrupt, i, n.Encoding)
		}
		var r *rope.Rope
		var err error
		switch rope.Kind(n.Kind) {
		case rope.KindLeaf:
			hint := coderange.Tag(n.CodeRange)
			if hint.Known() {
				if got, _ := coderange.Scan(e, n.Bytes); got != hint {
					return nil, fmt.Errorf("%w: node %d: code range %s recorded, bytes are %s", ErrCorrupt, i, hint, got)
				}
			}
			r = f.MakeLeaf(n.Bytes, e, hint)
		case rope.KindConcat:
			var l, rt *rope.Rope
			if l, err = ref(i, n.Left); err == nil {
				if rt, err = ref(i, n.Right); err == nil {
					r, err = f.Concat(l, rt)
				}
			}
		case rope.KindSubstring:
			var base *rope.Rope
			var off, length int
			if base, err = ref(i, n.Base); err == nil {
				if off, err = safecast.Conv[int](n.Offset); err == nil {
					if length, err = safecast.Conv[int](n.Length); err == nil {
						r, err = f.Substring(base, off, length)
					}
				}
			}
		case rope.KindRepeating:
			var base *rope.Rope
			var count int
			if base, err = ref(i, n.Base); err == nil {
				if count, err = safecast.Conv[int](n.Count); err == nil {
					r, err = f.Repeat(base, count)
				}
			}
		default:
			err = fmt.Errorf("%w: node %d has kind %d", ErrCorrupt, i, n.Kind)
		}
		if err != nil {
			return nil, err
		}
		built[i] = r
	}
	return built[snap.Root], nil
}

// Encode writes r to w.
func Encode(w io.Writer, r *rope.Rope) error {
	snap, err := Capture(r)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(snap)
}

// Decode reads a rope written by Encode.
func Decode(rd io.Reader, f *rope.Factory) (*rope.Rope, error) {
	var snap Snapshot
	if err := msgpack.NewDecoder(rd).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return Restore(f, &snap)
}

// Save writes r to path atomically.
func Save(path string, r *rope.Rope) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = Encode(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads a rope saved by Save.
func Load(path string, f *rope.Factory) (*rope.Rope, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return Decode(file, f)
}
