package image

import (
	"bytes"
	"debug/elf"

	"github.com/pkg/errors"
	"github.com/s-hammon/sigmaker/internal/disasm"
)

func parseELF(raw []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parse elf")
	}
	defer f.Close()

	im := &Image{Format: FormatELF, Entry: f.Entry}
	switch f.Machine {
	case elf.EM_X86_64:
		im.Arch = disasm.ArchAMD64
	case elf.EM_AARCH64:
		im.Arch = disasm.ArchARM64
	}

	for i, p := range f.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if p.Off+p.Filesz > uint64(len(raw)) {
			return nil, errors.Errorf("segment %d extends past end of file", i)
		}
		im.addSegment(p.Vaddr, p.Memsz, elfPerms(p.Flags), elfSegmentName(f, p), raw[p.Off:p.Off+p.Filesz])
	}

	// Stripped binaries have no static table; dynamic symbols still name
	// the exports.
	syms, _ := f.Symbols()
	dyn, _ := f.DynamicSymbols()
	seen := make(map[string]bool)
	for _, s := range append(syms, dyn...) {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		im.symbols = append(im.symbols, Symbol{Name: s.Name, Addr: s.Value, Size: s.Size})
	}

	if err := im.finish(); err != nil {
		return nil, err
	}
	return im, nil
}

func elfPerms(flags elf.ProgFlag) string {
	perms := []byte("---")
	if flags&elf.PF_R != 0 {
		perms[0] = 'r'
	}
	if flags&elf.PF_W != 0 {
		perms[1] = 'w'
	}
	if flags&elf.PF_X != 0 {
		perms[2] = 'x'
	}
	return string(perms)
}

// elfSegmentName names a segment after the first section it holds.
func elfSegmentName(f *elf.File, p *elf.Prog) string {
	for _, s := range f.Sections {
		if s.Addr != 0 && s.Addr >= p.Vaddr && s.Addr < p.Vaddr+p.Memsz {
			return s.Name
		}
	}
	return "LOAD"
}
