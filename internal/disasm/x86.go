package disasm

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// X86 decodes x86 code in the given mode (16, 32 or 64).
type X86 struct {
	Mode int
}

func (d X86) MaxLen() int { return 15 }

// IsPadding matches int3 (0xCC) and nop (0x90).
func (d X86) IsPadding(b byte) bool {
	return b == 0xCC || b == 0x90
}

func (d X86) Decode(code []byte) (Inst, error) {
	// x86asm does not know ENDBR64/ENDBR32, which open most functions built
	// with -fcf-protection.
	if len(code) >= 4 && code[0] == 0xF3 && code[1] == 0x0F && code[2] == 0x1E {
		switch code[3] {
		case 0xFA:
			return Inst{Len: 4, Mnemonic: "endbr64"}, nil
		case 0xFB:
			return Inst{Len: 4, Mnemonic: "endbr32"}, nil
		}
	}

	inst, err := x86asm.Decode(code, d.Mode)
	if err != nil {
		return Inst{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return Inst{
		Len:           inst.Len,
		OperandOffset: d.operandOffset(code[:inst.Len], inst),
		Mnemonic:      strings.ToLower(inst.Op.String()),
	}, nil
}

// operandOffset finds the first byte of the displacement/immediate tail.
// x86asm does not report field positions, so each byte is probed: flipping
// its low bit inside an operand field re-decodes to the same instruction with
// only an immediate, displacement or branch target changed. Anywhere in the
// prefix, opcode, ModRM or SIB bytes the flip changes the opcode, a register,
// an operand size or the length.
func (d X86) operandOffset(code []byte, inst x86asm.Inst) int {
	probe := make([]byte, len(code))
	for i := 1; i < len(code); i++ {
		copy(probe, code)
		probe[i] ^= 0x01

		alt, err := x86asm.Decode(probe, d.Mode)
		if err != nil {
			continue
		}
		if onlyValuesDiffer(inst, alt) {
			return i
		}
	}
	return 0
}

func onlyValuesDiffer(a, b x86asm.Inst) bool {
	if a.Op != b.Op || a.Len != b.Len || a.Prefix != b.Prefix ||
		a.DataSize != b.DataSize || a.AddrSize != b.AddrSize || a.MemBytes != b.MemBytes {
		return false
	}

	changed := false
	for i := range a.Args {
		x, y := a.Args[i], b.Args[i]
		switch xv := x.(type) {
		case nil:
			if y != nil {
				return false
			}
		case x86asm.Imm:
			yv, ok := y.(x86asm.Imm)
			if !ok {
				return false
			}
			changed = changed || xv != yv
		case x86asm.Rel:
			yv, ok := y.(x86asm.Rel)
			if !ok {
				return false
			}
			changed = changed || xv != yv
		case x86asm.Mem:
			yv, ok := y.(x86asm.Mem)
			if !ok {
				return false
			}
			if xv.Segment != yv.Segment || xv.Base != yv.Base || xv.Index != yv.Index || xv.Scale != yv.Scale {
				return false
			}
			changed = changed || xv.Disp != yv.Disp
		default:
			if x != y {
				return false
			}
		}
	}

	return changed
}
