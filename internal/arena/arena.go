// Package arena carves fixed-size, word-aligned sub-buffers out of a single
// backing region. All carving happens once at construction time; there is no
// free operation and no growth.
package arena

import (
	"errors"
	"math/bits"
)

// WordSize is the native word width in bytes. Every offset handed out by an
// Arena and every size reported by Align is a multiple of it.
const WordSize = bits.UintSize / 8

// ErrExhausted is returned when the region cannot hold a requested area.
var ErrExhausted = errors.New("arena: backing region exhausted")

// Align rounds n up to the next multiple of WordSize.
func Align(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + WordSize - 1) / WordSize * WordSize
}

// Size returns the region size needed to carve areas of the given byte sizes
// in order.
func Size(areas ...int) int {
	total := 0
	for _, n := range areas {
		total += Align(n)
	}
	return total
}

// Arena hands out consecutive word-aligned slices of one region.
type Arena struct {
	region []byte
	offset int
}

// New wraps region. The region is owned by the arena's user for as long as
// the carved slices are in use.
func New(region []byte) *Arena {
	return &Arena{region: region}
}

// Alloc carves n bytes. The returned slice has length and capacity n and is
// zeroed. The next allocation starts at the following word boundary.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if n < 0 {
		n = 0
	}
	end := a.offset + Align(n)
	if end > len(a.region) {
		return nil, ErrExhausted
	}
	area := a.region[a.offset : a.offset+n : a.offset+n]
	clear(area)
	a.offset = end
	return area, nil
}

// Used reports how many bytes have been carved, padding included.
func (a *Arena) Used() int {
	return a.offset
}

// Len reports the total size of the region.
func (a *Arena) Len() int {
	return len(a.region)
}
