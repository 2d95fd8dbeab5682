package sig

import (
	"fmt"
	"testing"

	"github.com/s-hammon/sigmaker/internal/settings"
	"github.com/stretchr/testify/require"
)

func pattern(t *testing.T, s string) Pattern {
	t.Helper()
	pa, err := ParseSignature(s)
	require.NoError(t, err)
	return pa
}

func TestParseSignature(t *testing.T) {
	pa := pattern(t, "48 89 ?? 5c ?")
	require.Equal(t, []byte{0x48, 0x89, 0x00, 0x5C, 0x00}, pa.Bytes)
	require.Equal(t, []bool{false, false, true, false, true}, pa.Mask)

	for _, bad := range []string{"4", "489", "ZZ", "48 ???"} {
		_, err := ParseSignature(bad)
		require.Error(t, err, bad)
	}

	empty := pattern(t, "   ")
	require.True(t, empty.Empty())
}

func TestTrimWildcards(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"? 48 89 ?", "48 89"},
		{"? ? 48 ? 89 ? ?", "48 ? 89"},
		{"48 89", "48 89"},
		{"? ? ?", ""},
		{"", ""},
	}

	for _, tt := range tests {
		pa := pattern(t, tt.in)
		pa.TrimWildcards()
		require.Equal(t, tt.want, pa.String(), tt.in)
		require.Len(t, pa.Mask, pa.Len())

		again := pa
		again.TrimWildcards()
		require.Equal(t, pa, again)
	}
}

func TestRender(t *testing.T) {
	pa := pattern(t, "48 89 ? 24")
	off := settings.Settings{}

	require.Equal(t, "48 89 ? 24", pa.Render(StyleIDA, off))
	require.Equal(t, `\x48\x89\x00\x24`, pa.Render(StyleCode, off))

	require.Equal(t, "48 89 ?? 24", pa.Render(StyleIDA, settings.Settings{UseDoubleWildcard: true}))
	require.Equal(t, `\x48\x89\x2A\x24`, pa.Render(StyleCode, settings.Settings{UseAltWildcard: true}))
	require.Equal(t, `\x48\x89\x00\x24 xx?x`, pa.Render(StyleCode, settings.Settings{IncludeMask: true}))

	// Mask and wildcard toggles do not cross styles.
	require.Equal(t, "48 89 ? 24", pa.Render(StyleIDA, settings.Settings{IncludeMask: true, UseAltWildcard: true}))
	require.Equal(t, `\x48\x89\x00\x24`, pa.Render(StyleCode, settings.Settings{UseDoubleWildcard: true}))

	require.Equal(t, "", Pattern{}.Render(StyleIDA, off))
	require.Equal(t, "", Pattern{}.Render(StyleCode, off))
	require.Equal(t, "0x811C9DC5", Pattern{}.Render(StyleFNV1a, off))
	require.Equal(t, "0x00000000", Pattern{}.Render(StyleCRC32, off))
}

func TestHashes(t *testing.T) {
	require.Equal(t, uint32(0x811C9DC5), Pattern{}.FNV1a())
	require.Equal(t, uint32(0), Pattern{}.CRC32())

	check := pattern(t, "31 32 33 34 35 36 37 38 39")
	require.Equal(t, uint32(0xCBF43926), check.CRC32())
	require.Equal(t, uint32(0xE40C292C), pattern(t, "61").FNV1a())

	pa := pattern(t, "48 89 5C")
	require.NotZero(t, pa.FNV1a())
	require.NotZero(t, pa.CRC32())
	require.NotEqual(t, pa.FNV1a(), pa.CRC32())

	// Wildcards hash at their literal byte value.
	wild := pattern(t, "48 ? 5C")
	lit := pattern(t, "48 00 5C")
	require.Equal(t, lit.FNV1a(), wild.FNV1a())
	require.Equal(t, lit.CRC32(), wild.CRC32())
	require.Equal(t, fmt.Sprintf("0x%08X", wild.CRC32()), wild.Render(StyleCRC32, settings.Settings{}))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"48 89 ? 24", "48 89 ? 24"},
		{"48 89 ?? 24", "48 89 ?? 24"},
		{`\x48\x89\x00\x24`, "48 89 ? 24"},
		{`\x48\x89\x00\x24 xx?x`, "48 89 ? 24 "},
		// A literal zero reads back as a wildcard.
		{`\x48\x00`, "48 ?"},
		// The alternate wildcard survives as a literal byte.
		{`\x48\x2A`, "48 2A"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	for _, s := range []string{"48", "48 89 ? 24", "E8 ? ? ? ? 90", "00 11 ? 22"} {
		pa := pattern(t, s)
		for _, cfg := range []settings.Settings{{}, {UseDoubleWildcard: true}} {
			ida := pa.Render(StyleIDA, cfg)
			require.Equal(t, ida, Normalize(ida))

			back := pattern(t, Normalize(ida))
			require.Equal(t, pa, back)
		}
	}

	// CODE style survives as long as no literal byte is zero.
	pa := pattern(t, "48 89 ? 24")
	for _, cfg := range []settings.Settings{{}, {IncludeMask: true}} {
		back := pattern(t, Normalize(pa.Render(StyleCode, cfg)))
		require.Equal(t, pa, back)
	}
}

func TestFind(t *testing.T) {
	buf := []byte{0x00, 0x48, 0x0A, 0x24, 0x48, 0x89, 0x24}
	require.Equal(t, 1, pattern(t, "48 ? 24").Find(buf))
	require.Equal(t, 4, pattern(t, "48 89").Find(buf))
	require.Equal(t, -1, pattern(t, "89 48").Find(buf))
	require.Equal(t, -1, Pattern{}.Find(buf))
}

func TestParseStyle(t *testing.T) {
	for _, st := range []Style{StyleCode, StyleIDA, StyleFNV1a, StyleCRC32} {
		got, err := ParseStyle(st.String())
		require.NoError(t, err)
		require.Equal(t, st, got)
	}

	got, err := ParseStyle("IDA")
	require.NoError(t, err)
	require.Equal(t, StyleIDA, got)

	_, err = ParseStyle("x64dbg")
	require.Error(t, err)
	require.Equal(t, "Style(9)", Style(9).String())
}

func ExamplePattern_Render() {
	pa, _ := ParseSignature("? 48 8B 05 ? ? ? ? ?")
	pa.TrimWildcards()

	fmt.Println(pa.Render(StyleIDA, settings.Settings{}))
	fmt.Println(pa.Render(StyleCode, settings.Settings{IncludeMask: true}))
	// Output:
	// 48 8B 05
	// \x48\x8B\x05 xxx
}

func FuzzParseSignature(f *testing.F) {
	f.Add("90 5A ?? 99")
	f.Fuzz(func(t *testing.T, a string) {
		_, _ = ParseSignature(a)
	})
}

func FuzzNormalize(f *testing.F) {
	f.Add(`\x48\x89\x00 xx?`)
	f.Add("48 89 ? 24")
	f.Fuzz(func(t *testing.T, a string) {
		pa, err := ParseSignature(Normalize(a))
		if err != nil {
			return
		}
		require.Len(t, pa.Mask, pa.Len())
	})
}
