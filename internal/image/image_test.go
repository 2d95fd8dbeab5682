package image

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/s-hammon/sigmaker/internal/disasm"
	"github.com/s-hammon/sigmaker/internal/memscan"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		raw  []byte
		want Format
	}{
		{[]byte("\x7fELF\x02\x01"), FormatELF},
		{[]byte("MZ\x90\x00"), FormatPE},
		{[]byte{0xcf, 0xfa, 0xed, 0xfe}, FormatMachO},
		{[]byte{0xfe, 0xed, 0xfa, 0xce}, FormatMachO},
		{[]byte{0x55, 0x48, 0x89, 0xe5}, FormatRaw},
		{nil, FormatRaw},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Detect(tt.raw), "%x", tt.raw)
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse([]byte{0x55, 0x48, 0x89, 0xe5})
	require.ErrorContains(t, err, "unrecognized")

	_, err = Parse([]byte("\x7fELF garbage"))
	require.Error(t, err)
}

func TestOpenRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x55, 0x48, 0x89, 0xe5, 0xc3}, 0o644))

	im, err := OpenRaw(path, 0x140001000, disasm.ArchAMD64)
	require.NoError(t, err)
	require.Equal(t, FormatRaw, im.Format)
	require.Equal(t, path, im.Path)

	lo, hi := im.Bounds()
	require.Equal(t, uint64(0x140001000), lo)
	require.Equal(t, uint64(0x140001005), hi)
	require.True(t, im.IsCode(0x140001004))
	require.False(t, im.IsCode(0x140001005))

	buf := make([]byte, 8)
	n, err := im.ReadAt(buf, 0x140001001)
	require.Error(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{0x48, 0x89, 0xe5, 0xc3}, buf[:n])

	_, err = im.ReadAt(buf, 0x1000)
	require.Error(t, err)

	var _ memscan.Space = im
}

func TestAddSegmentZeroFill(t *testing.T) {
	im := &Image{}
	im.addSegment(0x2000, 8, "rw-", ".bss", []byte{1, 2})
	im.addSegment(0x1000, 2, "r-x", ".text", []byte{0x90, 0x90, 0x90})
	im.addSegment(0x3000, 0, "r--", "empty", nil)
	require.NoError(t, im.finish())

	regions := im.Regions()
	require.Len(t, regions, 2)
	require.Equal(t, ".text", regions[0].Name)

	got := memscan.ReadUpTo(im, 0x2000, 16)
	require.Equal(t, []byte{1, 2, 0, 0, 0, 0, 0, 0}, got)
	require.Equal(t, []byte{0x90, 0x90}, memscan.ReadUpTo(im, 0x1000, 16))

	require.Error(t, (&Image{}).finish())
}

func TestSymbols(t *testing.T) {
	im := NewRaw(make([]byte, 0x100), 0x1000, disasm.ArchAMD64)
	im.symbols = []Symbol{
		{Name: "_ZN3foo3barEv", Addr: 0x1040, Size: 0x10},
		{Name: "main", Addr: 0x1000, Size: 0x20},
	}
	require.NoError(t, im.finish())

	sym, ok := im.Lookup("main")
	require.True(t, ok)
	require.Equal(t, uint64(0x1000), sym.Addr)

	sym, ok = im.Lookup("foo::bar()")
	require.True(t, ok)
	require.Equal(t, uint64(0x1040), sym.Addr)

	sym, ok = im.Lookup("foo::bar")
	require.True(t, ok)
	require.Equal(t, uint64(0x1040), sym.Addr)

	_, ok = im.Lookup("missing")
	require.False(t, ok)

	require.Equal(t, "main+0x4", im.Describe(0x1004))
	require.Equal(t, "foo::bar()", im.Describe(0x1040))
	require.Equal(t, "0xFFF", im.Describe(0xFFF))

	// Sized symbols decide what counts as code.
	require.True(t, im.IsCode(0x101F))
	require.False(t, im.IsCode(0x1020))
	require.True(t, im.IsCode(0x104F))
	require.False(t, im.IsCode(0x1050))
}

func TestOpenSelf(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("test binary is not ELF")
	}

	exe, err := os.Executable()
	require.NoError(t, err)

	im, err := Open(exe)
	require.NoError(t, err)
	require.Equal(t, FormatELF, im.Format)
	if want, err := disasm.ParseArch(runtime.GOARCH); err == nil {
		require.Equal(t, want, im.Arch)
	}

	var exec bool
	for _, r := range im.Regions() {
		exec = exec || r.Executable()
	}
	require.True(t, exec)

	sym, ok := im.Lookup("main.main")
	require.True(t, ok)
	require.NotZero(t, sym.Size)
	require.True(t, im.IsCode(sym.Addr))

	code := memscan.ReadUpTo(im, sym.Addr, 16)
	require.Len(t, code, 16)
}
