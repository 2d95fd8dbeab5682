package memscan

import (
	"fmt"
	"io"
	"strings"
)

// Region is a contiguous mapped range [Start, End).
type Region struct {
	Start, End uint64
	Perms      string
	Name       string
}

func (r Region) Contains(addr uint64) bool {
	return addr >= r.Start && addr < r.End
}

func (r Region) Readable() bool {
	return strings.Contains(r.Perms, "r")
}

func (r Region) Executable() bool {
	return strings.Contains(r.Perms, "x")
}

// Space is an address space signatures are built from and searched in.
type Space interface {
	// Bounds returns the lowest mapped address and the end of the highest
	// mapping (exclusive).
	Bounds() (min, max uint64)
	// Regions returns the mappings in ascending order.
	Regions() []Region
	ReadAt(p []byte, addr uint64) (int, error)
	// IsCode reports whether addr lies in recognized code.
	IsCode(addr uint64) bool
}

// RegionAt finds the region holding addr.
func RegionAt(regions []Region, addr uint64) (Region, bool) {
	for _, r := range regions {
		if r.Contains(addr) {
			return r, true
		}
	}
	return Region{}, false
}

// ReadByte reads the byte at addr.
func ReadByte(s Space, addr uint64) (byte, error) {
	var b [1]byte
	if _, err := s.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUpTo reads at most n bytes at addr, stopping at the end of the region
// holding addr. It returns nil when addr is unmapped.
func ReadUpTo(s Space, addr uint64, n int) []byte {
	r, ok := RegionAt(s.Regions(), addr)
	if !ok {
		return nil
	}

	n = int(min(uint64(n), r.End-addr))
	buf := make([]byte, n)
	got, err := s.ReadAt(buf, addr)
	if err != nil && got == 0 {
		return nil
	}
	return buf[:got]
}

// BufferSpace is a single mapping backed by a byte slice.
type BufferSpace struct {
	Base  uint64
	Data  []byte
	Perms string
}

func NewBufferSpace(base uint64, data []byte) *BufferSpace {
	return &BufferSpace{Base: base, Data: data, Perms: "r-x"}
}

func (b *BufferSpace) Bounds() (uint64, uint64) {
	return b.Base, b.Base + uint64(len(b.Data))
}

func (b *BufferSpace) Regions() []Region {
	return []Region{{Start: b.Base, End: b.Base + uint64(len(b.Data)), Perms: b.Perms, Name: "buffer"}}
}

func (b *BufferSpace) ReadAt(p []byte, addr uint64) (int, error) {
	if addr < b.Base || addr >= b.Base+uint64(len(b.Data)) {
		return 0, fmt.Errorf("read 0x%x: address not mapped", addr)
	}

	n := copy(p, b.Data[addr-b.Base:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *BufferSpace) IsCode(addr uint64) bool {
	lo, hi := b.Bounds()
	return addr >= lo && addr < hi && strings.Contains(b.Perms, "x")
}
