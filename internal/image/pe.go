package image

import (
	"bytes"
	"debug/pe"

	"github.com/pkg/errors"
	"github.com/s-hammon/sigmaker/internal/disasm"
)

// COFF symbol type of a function.
const peFunction = 0x20

func parsePE(raw []byte) (*Image, error) {
	f, err := pe.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parse pe")
	}
	defer f.Close()

	var base, entry, headers uint64
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		base, entry, headers = oh.ImageBase, uint64(oh.AddressOfEntryPoint), uint64(oh.SizeOfHeaders)
	case *pe.OptionalHeader32:
		base, entry, headers = uint64(oh.ImageBase), uint64(oh.AddressOfEntryPoint), uint64(oh.SizeOfHeaders)
	default:
		return nil, errors.New("pe: missing optional header")
	}

	im := &Image{Format: FormatPE, Entry: base + entry}
	switch f.Machine {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		im.Arch = disasm.ArchAMD64
	case pe.IMAGE_FILE_MACHINE_ARM64:
		im.Arch = disasm.ArchARM64
	}

	if headers > 0 && headers <= uint64(len(raw)) {
		im.addSegment(base, headers, "r--", "headers", raw[:headers])
	}

	for _, s := range f.Sections {
		data, err := s.Data()
		if err != nil {
			return nil, errors.Wrapf(err, "read section %s", s.Name)
		}
		size := uint64(s.VirtualSize)
		if size == 0 {
			size = uint64(len(data))
		}
		im.addSegment(base+uint64(s.VirtualAddress), size, pePerms(s.Characteristics), s.Name, data)
	}

	for _, s := range f.Symbols {
		if s.Type != peFunction || s.SectionNumber <= 0 || int(s.SectionNumber) > len(f.Sections) {
			continue
		}
		sect := f.Sections[s.SectionNumber-1]
		im.symbols = append(im.symbols, Symbol{
			Name: s.Name,
			Addr: base + uint64(sect.VirtualAddress) + uint64(s.Value),
		})
	}

	if err := im.finish(); err != nil {
		return nil, err
	}
	return im, nil
}

func pePerms(c uint32) string {
	perms := []byte("---")
	if c&pe.IMAGE_SCN_MEM_READ != 0 {
		perms[0] = 'r'
	}
	if c&pe.IMAGE_SCN_MEM_WRITE != 0 {
		perms[1] = 'w'
	}
	if c&pe.IMAGE_SCN_MEM_EXECUTE != 0 {
		perms[2] = 'x'
	}
	return string(perms)
}
