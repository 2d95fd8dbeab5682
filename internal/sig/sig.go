// Package sig holds the byte pattern a signature is built from, and the
// textual forms it is rendered to and parsed from.
package sig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/s-hammon/p"
	"rsc.io/binaryregexp"
)

const WildcardByte = 0x00

// Pattern is an ordered byte sequence with a wildcard flag per byte.
// len(Bytes) == len(Mask) always holds; Mask[i] marks Bytes[i] as "don't care".
type Pattern struct {
	Bytes []byte
	Mask  []bool
}

// Append adds one byte to the end of the pattern.
func (p *Pattern) Append(b byte, wildcard bool) {
	p.Bytes = append(p.Bytes, b)
	p.Mask = append(p.Mask, wildcard)
}

// TrimWildcards drops the wildcard run at the end, then the one at the start.
func (p *Pattern) TrimWildcards() {
	end := len(p.Mask)
	for end > 0 && p.Mask[end-1] {
		end--
	}

	start := 0
	for start < end && p.Mask[start] {
		start++
	}

	p.Bytes = p.Bytes[start:end]
	p.Mask = p.Mask[start:end]
}

func (p Pattern) Len() int {
	return len(p.Bytes)
}

func (p Pattern) Empty() bool {
	return len(p.Bytes) == 0
}

// ParseSignature parses the canonical search form: space separated hex byte
// tokens, "?" or "??" for a wildcard.
func ParseSignature(s string) (Pattern, error) {
	var (
		b []byte
		m []bool
	)
	for tok := range strings.FieldsSeq(s) {
		switch tok {
		case "??", "?":
			b = append(b, WildcardByte)
			m = append(m, true)
		default:
			if len(tok) != 2 {
				return Pattern{}, fmt.Errorf("bad token %q", tok)
			}
			v, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return Pattern{}, fmt.Errorf("bad hex %q: %v", tok, err)
			}
			b = append(b, byte(v))
			m = append(m, false)
		}
	}

	return Pattern{b, m}, nil
}

// Regexp compiles the pattern into a byte-level matcher. Wildcards match any
// byte, newlines included.
func (p Pattern) Regexp() (*binaryregexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?s)")
	for i, b := range p.Bytes {
		if p.Mask[i] {
			sb.WriteByte('.')
			continue
		}
		fmt.Fprintf(&sb, `\x%02X`, b)
	}

	re, err := binaryregexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("binaryregexp.Compile: %v", err)
	}
	return re, nil
}

// Find returns the offset of the first match in buf, or -1.
func (p Pattern) Find(buf []byte) int {
	if p.Empty() || len(buf) < p.Len() {
		return -1
	}

	re, err := p.Regexp()
	if err != nil {
		return -1
	}

	loc := re.FindIndex(buf)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// String returns the canonical search form with single "?" wildcards.
func (pa Pattern) String() string {
	parts := make([]string, 0, len(pa.Bytes))
	for i, b := range pa.Bytes {
		if pa.Mask[i] {
			parts = append(parts, "?")
		} else {
			parts = append(parts, p.Format("%02X", b))
		}
	}

	return strings.Join(parts, " ")
}
