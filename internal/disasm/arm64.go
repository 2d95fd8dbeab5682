package disasm

import (
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
)

// ARM64 decodes fixed-width A64 code. Operand fields are bit ranges inside
// the 32-bit word, never whole trailing bytes, so nothing is wildcarded.
type ARM64 struct{}

func (ARM64) MaxLen() int { return 4 }

func (ARM64) IsPadding(byte) bool { return false }

func (ARM64) Decode(code []byte) (Inst, error) {
	if len(code) < 4 {
		return Inst{}, fmt.Errorf("%w: short code (%d bytes)", ErrDecode, len(code))
	}

	inst, err := arm64asm.Decode(code[:4])
	if err != nil {
		return Inst{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return Inst{
		Len:      4,
		Mnemonic: strings.ToLower(inst.Op.String()),
	}, nil
}
