package sig

import (
	"fmt"
	"strings"

	"github.com/s-hammon/p"
	"github.com/s-hammon/sigmaker/internal/settings"
)

// Style selects the textual encoding of a signature.
type Style int

const (
	StyleCode  Style = iota // \x48\x89\x00
	StyleIDA                // 48 89 ?
	StyleFNV1a              // 0x1234ABCD
	StyleCRC32              // 0x1234ABCD
)

var styleNames = map[Style]string{
	StyleCode:  "code",
	StyleIDA:   "ida",
	StyleFNV1a: "fnv1a",
	StyleCRC32: "crc32",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return p.Format("Style(%d)", int(s))
}

func ParseStyle(name string) (Style, error) {
	for s, n := range styleNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown style %q (want code, ida, fnv1a or crc32)", name)
}

// Render formats the pattern in the given style. Wildcard spelling follows
// the UseDoubleWildcard, UseAltWildcard and IncludeMask toggles.
func (pa Pattern) Render(style Style, s settings.Settings) string {
	switch style {
	case StyleCode:
		return pa.renderCode(s)
	case StyleIDA:
		return pa.renderIDA(s)
	case StyleFNV1a:
		return p.Format("0x%08X", pa.FNV1a())
	case StyleCRC32:
		return p.Format("0x%08X", pa.CRC32())
	}
	return ""
}

func (pa Pattern) renderCode(s settings.Settings) string {
	wildcard := `\x00`
	if s.UseAltWildcard {
		wildcard = `\x2A`
	}

	var sb strings.Builder
	for i, b := range pa.Bytes {
		if pa.Mask[i] {
			sb.WriteString(wildcard)
			continue
		}
		fmt.Fprintf(&sb, `\x%02X`, b)
	}

	if s.IncludeMask {
		sb.WriteByte(' ')
		for _, wc := range pa.Mask {
			if wc {
				sb.WriteByte('?')
			} else {
				sb.WriteByte('x')
			}
		}
	}

	return sb.String()
}

func (pa Pattern) renderIDA(s settings.Settings) string {
	wildcard := "?"
	if s.UseDoubleWildcard {
		wildcard = "??"
	}

	parts := make([]string, len(pa.Bytes))
	for i, b := range pa.Bytes {
		if pa.Mask[i] {
			parts[i] = wildcard
		} else {
			parts[i] = p.Format("%02X", b)
		}
	}

	return strings.Join(parts, " ")
}
