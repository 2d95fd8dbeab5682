package image

import (
	"bytes"
	"debug/macho"

	"github.com/pkg/errors"
	"github.com/s-hammon/sigmaker/internal/disasm"
)

const (
	machoStab = 0xe0
	machoType = 0x0e
	machoSect = 0x0e
)

func parseMachO(raw []byte) (*Image, error) {
	f, err := macho.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parse macho")
	}
	defer f.Close()

	im := &Image{Format: FormatMachO}
	switch f.Cpu {
	case macho.CpuAmd64:
		im.Arch = disasm.ArchAMD64
	case macho.CpuArm64:
		im.Arch = disasm.ArchARM64
	}

	for _, l := range f.Loads {
		seg, ok := l.(*macho.Segment)
		if !ok || seg.Memsz == 0 || seg.Prot == 0 {
			continue
		}
		data, err := seg.Data()
		if err != nil {
			return nil, errors.Wrapf(err, "read segment %s", seg.Name)
		}
		im.addSegment(seg.Addr, seg.Memsz, machoPerms(seg.Prot), seg.Name, data)
		if seg.Name == "__TEXT" && im.Entry == 0 {
			im.Entry = seg.Addr
		}
	}

	if f.Symtab != nil {
		for _, s := range f.Symtab.Syms {
			if s.Type&machoStab != 0 || s.Type&machoType != machoSect || s.Sect == 0 {
				continue
			}
			im.symbols = append(im.symbols, Symbol{Name: s.Name, Addr: s.Value})
		}
	}

	if err := im.finish(); err != nil {
		return nil, err
	}
	return im, nil
}

func machoPerms(prot uint32) string {
	perms := []byte("---")
	if prot&1 != 0 {
		perms[0] = 'r'
	}
	if prot&2 != 0 {
		perms[1] = 'w'
	}
	if prot&4 != 0 {
		perms[2] = 'x'
	}
	return string(perms)
}
