package memscan

import (
	"testing"

	"github.com/s-hammon/sigmaker/internal/sig"
	"github.com/stretchr/testify/require"
)

// splitSpace maps the same bytes as several regions, optionally with a gap.
type splitSpace struct {
	regions []Region
	data    map[uint64]byte
}

func newSplitSpace(regions []Region, fill func(addr uint64) byte) *splitSpace {
	s := &splitSpace{regions: regions, data: map[uint64]byte{}}
	for _, r := range regions {
		for a := r.Start; a < r.End; a++ {
			s.data[a] = fill(a)
		}
	}
	return s
}

func (s *splitSpace) Bounds() (uint64, uint64) {
	return s.regions[0].Start, s.regions[len(s.regions)-1].End
}

func (s *splitSpace) Regions() []Region { return s.regions }

func (s *splitSpace) ReadAt(p []byte, addr uint64) (int, error) {
	for i := range p {
		b, ok := s.data[addr+uint64(i)]
		if !ok {
			return i, errUnmapped
		}
		p[i] = b
	}
	return len(p), nil
}

func (s *splitSpace) IsCode(addr uint64) bool {
	r, ok := RegionAt(s.regions, addr)
	return ok && r.Executable()
}

var errUnmapped = errorString("unmapped")

type errorString string

func (e errorString) Error() string { return string(e) }

func mustPattern(t *testing.T, s string) sig.Pattern {
	t.Helper()
	pat, err := sig.ParseSignature(s)
	require.NoError(t, err)
	return pat
}

func TestSearchBuffer(t *testing.T) {
	buf := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x90, 0x5A, 0x10, 0x99, 0x90, 0x5A, 0x0A, 0x99}
	space := NewBufferSpace(0x1000, buf)
	pat := mustPattern(t, "90 5A ?? 99")

	addr, ok := Search(space, 0x1000, 0x100C, pat)
	require.True(t, ok)
	require.Equal(t, uint64(0x1004), addr)

	addr, ok = Search(space, 0x1005, 0x100C, pat)
	require.True(t, ok)
	require.Equal(t, uint64(0x1008), addr, "wildcard must match a newline byte")

	_, ok = Search(space, 0x1009, 0x100C, pat)
	require.False(t, ok)

	_, ok = Search(space, 0x1000, 0x100B, mustPattern(t, "90 5A 0A 99"))
	require.False(t, ok, "match must end before the upper bound")
}

func TestSearchEmptyPattern(t *testing.T) {
	space := NewBufferSpace(0, []byte{1, 2, 3})
	_, ok := Search(space, 0, 3, sig.Pattern{})
	require.False(t, ok)
}

func TestSearchAcrossChunks(t *testing.T) {
	data := make([]byte, chunk+16)
	copy(data[chunk-2:], []byte{0x11, 0x22, 0x33, 0x44})
	space := NewBufferSpace(0x400000, data)

	addr, ok := Search(space, 0x400000, 0x400000+uint64(len(data)), mustPattern(t, "11 22 33 44"))
	require.True(t, ok)
	require.Equal(t, uint64(0x400000+chunk-2), addr)
}

func TestSearchRegions(t *testing.T) {
	fill := func(a uint64) byte { return byte(a) }
	touching := newSplitSpace([]Region{
		{Start: 0x10, End: 0x20, Perms: "r-x"},
		{Start: 0x20, End: 0x30, Perms: "r--"},
	}, fill)

	addr, ok := Search(touching, 0, 0x100, mustPattern(t, "1E 1F 20 21"))
	require.True(t, ok)
	require.Equal(t, uint64(0x1E), addr)

	gapped := newSplitSpace([]Region{
		{Start: 0x10, End: 0x20, Perms: "r-x"},
		{Start: 0x21, End: 0x30, Perms: "r--"},
	}, fill)
	_, ok = Search(gapped, 0, 0x100, mustPattern(t, "1F ? 21"))
	require.False(t, ok)

	unreadable := newSplitSpace([]Region{
		{Start: 0x10, End: 0x20, Perms: "---p"},
	}, fill)
	_, ok = Search(unreadable, 0, 0x100, mustPattern(t, "12 13"))
	require.False(t, ok)
}

func TestReadUpTo(t *testing.T) {
	space := NewBufferSpace(0x100, []byte{1, 2, 3, 4})
	require.Equal(t, []byte{3, 4}, ReadUpTo(space, 0x102, 15))
	require.Nil(t, ReadUpTo(space, 0x200, 15))

	b, err := ReadByte(space, 0x101)
	require.NoError(t, err)
	require.Equal(t, byte(2), b)
}
