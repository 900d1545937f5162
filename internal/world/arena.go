package world

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Arena errors.
var (
	ErrSizeMismatch = errors.New("arena smaller than required size")
	ErrOutOfBounds  = errors.New("arena access out of bounds")
)

// Offset is a byte position inside an Arena.
type Offset uint64

// Arena is the single block of memory that holds a map, its chunk records and
// every chunk's geometry buffer. Records refer to each other by Offset.
type Arena struct {
	buf []byte
}

// NewArena allocates a zeroed arena of size bytes.
func NewArena(size uint64) *Arena {
	return &Arena{buf: make([]byte, size)}
}

// ArenaFromBytes wraps a caller-allocated block.
func ArenaFromBytes(buf []byte) *Arena {
	return &Arena{buf: buf}
}

// Len returns the arena size in bytes.
func (a *Arena) Len() uint64 {
	return uint64(len(a.buf))
}

// Bytes returns the whole block.
func (a *Arena) Bytes() []byte {
	return a.buf
}

// Slice returns the n bytes starting at off.
func (a *Arena) Slice(off Offset, n uint64) ([]byte, error) {
	end := uint64(off) + n
	if end < uint64(off) || end > a.Len() {
		return nil, fmt.Errorf("%w: [%d, %d) in %d bytes", ErrOutOfBounds, off, end, a.Len())
	}
	return a.buf[off:end:end], nil
}

// Zero clears the whole arena.
func (a *Arena) Zero() {
	clear(a.buf)
}

func (a *Arena) uint32At(off Offset) (uint32, error) {
	b, err := a.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (a *Arena) putUint32(off Offset, v uint32) error {
	b, err := a.Slice(off, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

func (a *Arena) uint64At(off Offset) (uint64, error) {
	b, err := a.Slice(off, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (a *Arena) putUint64(off Offset, v uint64) error {
	b, err := a.Slice(off, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

func (a *Arena) float32At(off Offset) (float32, error) {
	v, err := a.uint32At(off)
	return math.Float32frombits(v), err
}

func (a *Arena) putFloat32(off Offset, f float32) error {
	return a.putUint32(off, math.Float32bits(f))
}
