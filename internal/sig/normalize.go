package sig

import "strings"

// Normalize turns a CODE or IDA style signature into the canonical search
// form. IDA style text is returned unchanged. CODE style text has its \x
// markers and mask characters removed and every "00" read back as a
// wildcard, so a literal zero byte cannot survive the round trip and a \x2A
// wildcard comes back as a literal 2A.
func Normalize(pattern string) string {
	if !strings.Contains(pattern, `\x`) {
		return pattern
	}

	pattern = strings.ReplaceAll(pattern, `\x`, " ")
	pattern = strings.NewReplacer("x", "", "?", "").Replace(pattern)
	pattern = strings.ReplaceAll(pattern, "00", "?")

	return strings.TrimPrefix(pattern, " ")
}
