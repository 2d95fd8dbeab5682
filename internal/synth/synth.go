// Package synth builds a signature for an address: it appends instruction
// bytes, wildcarding operand fields, until the pattern matches nowhere else in
// the address space.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/s-hammon/sigmaker/internal/disasm"
	"github.com/s-hammon/sigmaker/internal/host"
	"github.com/s-hammon/sigmaker/internal/memscan"
	"github.com/s-hammon/sigmaker/internal/search"
	"github.com/s-hammon/sigmaker/internal/settings"
	"github.com/s-hammon/sigmaker/internal/sig"
)

var (
	ErrOutsideCodeRegion = errors.New("not in a recognized code region")
	ErrEmptySignature    = errors.New("signature is empty")
)

// Selection is a selected address range [Start, End).
type Selection struct {
	Start, End uint64
}

func (s Selection) Valid() bool {
	return s.End > s.Start
}

type Mode int

const (
	// ModeGrow extends the pattern until it is unique.
	ModeGrow Mode = iota
	// ModeRange takes every instruction of the selection, unique or not.
	ModeRange
)

func (m Mode) String() string {
	if m == ModeRange {
		return "range"
	}
	return "grow"
}

type Result struct {
	Signature string
	// Pattern is the trimmed pattern Signature was rendered from.
	Pattern sig.Pattern
	Mode    Mode
	// Unique is set when growth stopped because no other match remained.
	// Range mode never checks, and an exhausted grow leaves it false.
	Unique       bool
	Instructions int
}

type Synthesizer struct {
	space     memscan.Space
	decoder   disasm.Decoder
	settings  settings.Settings
	host      host.Host
	searcher  *search.Searcher
	selection *Selection
}

type Option func(*Synthesizer)

func WithHost(h host.Host) Option {
	return func(s *Synthesizer) { s.host = h }
}

// WithSelection supplies the range used when UseSelectedRange is set.
func WithSelection(sel Selection) Option {
	return func(s *Synthesizer) { s.selection = &sel }
}

func New(space memscan.Space, decoder disasm.Decoder, cfg settings.Settings, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		space:    space,
		decoder:  decoder,
		settings: cfg,
		host:     host.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.searcher = search.New(space, s.host)
	return s
}

// Create builds the signature for target and renders it in style. A decode
// failure or the end of the address space ends growth early; the result is
// then usable but not guaranteed unique. ctx is checked between instructions.
func (s *Synthesizer) Create(ctx context.Context, target uint64, style sig.Style) (Result, error) {
	if !s.settings.AllowDangerousRegions && !s.space.IsCode(target) {
		return Result{}, fmt.Errorf("0x%X: %w", target, ErrOutsideCodeRegion)
	}

	var (
		res Result
		pat sig.Pattern
		err error
	)
	if s.settings.UseSelectedRange && s.selection != nil && s.selection.Valid() {
		res.Mode = ModeRange
		res.Instructions, err = s.fromRange(ctx, &pat, target)
	} else {
		res.Mode = ModeGrow
		res.Instructions, res.Unique, err = s.grow(ctx, &pat, target)
	}
	if err != nil {
		return Result{}, err
	}

	if pat.Empty() {
		return Result{}, fmt.Errorf("0x%X: %w", target, ErrEmptySignature)
	}

	pat.TrimWildcards()
	res.Pattern = pat
	res.Signature = pat.Render(style, s.settings)

	s.host.Signature(res.Signature)
	if s.settings.CopyToClipboard {
		if err := s.host.Clipboard(res.Signature); err != nil {
			s.host.Progress(err.Error())
		}
	}
	s.host.Beep()

	return res, nil
}

func (s *Synthesizer) fromRange(ctx context.Context, pat *sig.Pattern, target uint64) (int, error) {
	s.host.Progress(fmt.Sprintf("Creating signature for 0x%X", target))

	count := 0
	for addr := s.selection.Start; addr < s.selection.End; {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		code, inst, err := s.decode(addr)
		if err != nil {
			break
		}
		appendInst(pat, code, inst)
		count++

		addr = s.next(addr, code, inst)
	}
	return count, nil
}

func (s *Synthesizer) grow(ctx context.Context, pat *sig.Pattern, target uint64) (int, bool, error) {
	lo, hi := s.space.Bounds()
	lastFound := lo

	var mnemonics strings.Builder
	count := 0
	for addr := target; addr < hi; {
		if err := ctx.Err(); err != nil {
			return count, false, err
		}

		code, inst, err := s.decode(addr)
		if err != nil {
			break
		}
		appendInst(pat, code, inst)
		count++

		if s.settings.ShowMnemonics {
			mnemonics.WriteString("+ " + inst.Mnemonic + "\n")
			s.host.Progress(fmt.Sprintf("Creating signature for 0x%X\n\n%s", target, mnemonics.String()))
		}

		matches, err := s.searcher.FindAll(pat.Render(sig.StyleIDA, s.settings), search.Query{
			Silent:      true,
			StopAtFirst: true,
			IgnoreAddr:  search.At(target),
			StartAddr:   search.At(lastFound),
		})
		if err != nil {
			break
		}
		if len(matches) == 0 {
			return count, true, nil
		}
		lastFound = matches[0]

		addr = s.next(addr, code, inst)
	}
	return count, false, nil
}

// decode reads and decodes the instruction at addr.
func (s *Synthesizer) decode(addr uint64) ([]byte, disasm.Inst, error) {
	code := memscan.ReadUpTo(s.space, addr, s.decoder.MaxLen())
	if len(code) == 0 {
		return nil, disasm.Inst{}, fmt.Errorf("0x%X: %w", addr, disasm.ErrDecode)
	}

	inst, err := s.decoder.Decode(code)
	if err != nil {
		return nil, disasm.Inst{}, err
	}
	if inst.Len <= 0 || inst.Len > len(code) {
		return nil, disasm.Inst{}, fmt.Errorf("0x%X: bad length %d: %w", addr, inst.Len, disasm.ErrDecode)
	}
	return code[:inst.Len], inst, nil
}

// next steps over one instruction, or over a single byte when addr holds a
// trap or no-op padding byte.
func (s *Synthesizer) next(addr uint64, code []byte, inst disasm.Inst) uint64 {
	if s.decoder.IsPadding(code[0]) {
		return addr + 1
	}
	return addr + uint64(inst.Len)
}

func appendInst(pat *sig.Pattern, code []byte, inst disasm.Inst) {
	for i, b := range code {
		pat.Append(b, inst.Wildcard(i))
	}
}
