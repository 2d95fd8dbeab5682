package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAddress reads a hexadecimal address, with or without a 0x prefix or
// an h suffix.
func ParseAddress(s string) (uint64, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimPrefix(strings.TrimPrefix(t, "0x"), "0X")
	t = strings.TrimSuffix(strings.TrimSuffix(t, "h"), "H")
	t = strings.ReplaceAll(t, "`", "")

	v, err := strconv.ParseUint(t, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", s)
	}
	return v, nil
}

// ParseRange reads "start:end" into a half-open range.
func ParseRange(s string) (start, end uint64, err error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("bad range %q (want start:end)", s)
	}

	if start, err = ParseAddress(lo); err != nil {
		return 0, 0, err
	}
	if end, err = ParseAddress(hi); err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("bad range %q: end must be above start", s)
	}
	return start, end, nil
}
