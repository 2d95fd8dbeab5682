// Package disasm decodes single instructions for signature building: how long
// an instruction is, where its first relocatable or immediate operand starts,
// and its mnemonic.
package disasm

import (
	"errors"
	"fmt"
	"strings"
)

var ErrDecode = errors.New("cannot decode instruction")

// Inst is a decoded instruction.
type Inst struct {
	Len int
	// OperandOffset is the byte offset of the first displacement or immediate
	// field. 0 means the instruction has none; no supported encoding places
	// such a field at offset 0.
	OperandOffset int
	Mnemonic      string
}

// Wildcard reports whether byte i of the instruction belongs to an operand
// field. Everything from OperandOffset to the end of the instruction does.
func (in Inst) Wildcard(i int) bool {
	return in.OperandOffset > 0 && i >= in.OperandOffset
}

type Decoder interface {
	Decode(code []byte) (Inst, error)
	// MaxLen is the longest encoding Decode may need to see.
	MaxLen() int
	// IsPadding reports whether b is a single-byte trap or no-op opcode.
	IsPadding(b byte) bool
}

// Arch names a supported instruction set.
type Arch string

const (
	ArchAMD64 Arch = "amd64"
	ArchARM64 Arch = "arm64"
)

func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(s) {
	case "amd64", "x86_64", "x86-64", "x64":
		return ArchAMD64, nil
	case "arm64", "aarch64":
		return ArchARM64, nil
	}
	return "", fmt.Errorf("unsupported architecture: %s", s)
}

func New(arch Arch) (Decoder, error) {
	switch arch {
	case ArchAMD64:
		return X86{Mode: 64}, nil
	case ArchARM64:
		return ARM64{}, nil
	}
	return nil, fmt.Errorf("unsupported architecture: %s", arch)
}
