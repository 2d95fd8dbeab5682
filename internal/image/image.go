// Package image loads executable files into an address space laid out the
// way the loader would map them, so signatures can be built from a binary on
// disk.
package image

import (
	"bytes"
	"debug/macho"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ianlancetaylor/demangle"
	"github.com/pkg/errors"
	"github.com/s-hammon/sigmaker/internal/disasm"
	"github.com/s-hammon/sigmaker/internal/memscan"
)

type Format string

const (
	FormatELF   Format = "elf"
	FormatPE    Format = "pe"
	FormatMachO Format = "macho"
	FormatRaw   Format = "raw"
)

// Symbol is a named address. Size is 0 when the format does not record one.
type Symbol struct {
	Name string
	Addr uint64
	Size uint64
}

// Demangled returns the C++ or Rust demangled name, or Name unchanged.
func (s Symbol) Demangled() string {
	return demangle.Filter(s.Name)
}

type segment struct {
	region memscan.Region
	data   []byte
}

// Image is a loaded binary. It implements memscan.Space.
type Image struct {
	Path   string
	Format Format
	// Arch is empty for raw images.
	Arch  disasm.Arch
	Entry uint64

	segs    []segment
	symbols []Symbol
	// sized is set when at least one function symbol carries a size, and
	// IsCode then means "inside a function".
	sized bool
}

// Open loads path, detecting ELF, PE and Mach-O from the file header.
func Open(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}

	im, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	im.Path = path
	return im, nil
}

// Parse loads an image held in memory.
func Parse(raw []byte) (*Image, error) {
	switch Detect(raw) {
	case FormatELF:
		return parseELF(raw)
	case FormatPE:
		return parsePE(raw)
	case FormatMachO:
		return parseMachO(raw)
	}
	return nil, errors.New("unrecognized executable format (use --raw for flat blobs)")
}

// Detect identifies the container format from its magic, or returns
// FormatRaw.
func Detect(raw []byte) Format {
	switch {
	case bytes.HasPrefix(raw, []byte("\x7fELF")):
		return FormatELF
	case bytes.HasPrefix(raw, []byte("MZ")):
		return FormatPE
	case len(raw) >= 4:
		switch binary.LittleEndian.Uint32(raw) {
		case macho.Magic32, macho.Magic64:
			return FormatMachO
		}
		switch binary.BigEndian.Uint32(raw) {
		case macho.Magic32, macho.Magic64:
			return FormatMachO
		}
	}
	return FormatRaw
}

// OpenRaw maps the whole file at base as a single readable, executable
// region.
func OpenRaw(path string, base uint64, arch disasm.Arch) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read image")
	}

	im := NewRaw(raw, base, arch)
	im.Path = path
	return im, nil
}

func NewRaw(raw []byte, base uint64, arch disasm.Arch) *Image {
	im := &Image{Format: FormatRaw, Arch: arch, Entry: base}
	im.addSegment(base, uint64(len(raw)), "r-x", "raw", raw)
	return im
}

// addSegment maps data at addr, zero filling up to size.
func (im *Image) addSegment(addr, size uint64, perms, name string, data []byte) {
	if size == 0 {
		return
	}
	if uint64(len(data)) > size {
		data = data[:size]
	}
	if uint64(len(data)) < size {
		buf := make([]byte, size)
		copy(buf, data)
		data = buf
	}

	im.segs = append(im.segs, segment{
		region: memscan.Region{Start: addr, End: addr + size, Perms: perms, Name: name},
		data:   data,
	})
}

// finish orders segments and symbols once parsing is done.
func (im *Image) finish() error {
	if len(im.segs) == 0 {
		return errors.New("no loadable segments")
	}

	sort.Slice(im.segs, func(i, j int) bool { return im.segs[i].region.Start < im.segs[j].region.Start })
	sort.Slice(im.symbols, func(i, j int) bool { return im.symbols[i].Addr < im.symbols[j].Addr })
	for _, s := range im.symbols {
		if s.Size > 0 {
			im.sized = true
			break
		}
	}
	return nil
}

func (im *Image) Bounds() (uint64, uint64) {
	if len(im.segs) == 0 {
		return 0, 0
	}
	return im.segs[0].region.Start, im.segs[len(im.segs)-1].region.End
}

func (im *Image) Regions() []memscan.Region {
	out := make([]memscan.Region, len(im.segs))
	for i, s := range im.segs {
		out[i] = s.region
	}
	return out
}

func (im *Image) ReadAt(p []byte, addr uint64) (int, error) {
	for _, s := range im.segs {
		if !s.region.Contains(addr) {
			continue
		}
		n := copy(p, s.data[addr-s.region.Start:])
		if n < len(p) {
			return n, io.EOF
		}
		return n, nil
	}
	return 0, fmt.Errorf("read 0x%x: address not mapped", addr)
}

// IsCode reports whether addr is inside a sized function symbol, or inside an
// executable segment when the image records no function sizes.
func (im *Image) IsCode(addr uint64) bool {
	if im.sized {
		for _, s := range im.symbols {
			if s.Addr > addr {
				break
			}
			if addr < s.Addr+s.Size {
				return true
			}
		}
		return false
	}

	r, ok := memscan.RegionAt(im.Regions(), addr)
	return ok && r.Executable()
}

func (im *Image) Symbols() []Symbol {
	return im.symbols
}

// Lookup finds a symbol by raw or demangled name. Mach-O names match without
// their leading underscore, and demangled names with or without parameters.
func (im *Image) Lookup(name string) (Symbol, bool) {
	for _, s := range im.symbols {
		if s.Name == name || (im.Format == FormatMachO && s.Name == "_"+name) {
			return s, true
		}
	}

	for _, s := range im.symbols {
		d := s.Demangled()
		if d == s.Name {
			continue
		}
		if d == name || demangle.Filter(s.Name, demangle.NoParams) == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// SymbolAt returns the closest symbol at or below addr.
func (im *Image) SymbolAt(addr uint64) (Symbol, bool) {
	i := sort.Search(len(im.symbols), func(i int) bool { return im.symbols[i].Addr > addr })
	if i == 0 {
		return Symbol{}, false
	}
	return im.symbols[i-1], true
}

// Describe formats addr as symbol+offset when a symbol precedes it.
func (im *Image) Describe(addr uint64) string {
	sym, ok := im.SymbolAt(addr)
	if !ok {
		return fmt.Sprintf("0x%X", addr)
	}
	if off := addr - sym.Addr; off != 0 {
		return fmt.Sprintf("%s+0x%X", sym.Demangled(), off)
	}
	return sym.Demangled()
}
