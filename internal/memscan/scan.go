package memscan

import (
	"errors"

	"github.com/s-hammon/sigmaker/internal/sig"
	"rsc.io/binaryregexp"
)

const chunk = 1 << 20

// Matcher is a compiled pattern ready to be searched for repeatedly.
type Matcher struct {
	re  *binaryregexp.Regexp
	len int
}

func Compile(pat sig.Pattern) (*Matcher, error) {
	if pat.Empty() {
		return nil, errors.New("empty pattern")
	}

	re, err := pat.Regexp()
	if err != nil {
		return nil, err
	}
	return &Matcher{re: re, len: pat.Len()}, nil
}

// Search compiles pat and runs one Matcher.Search.
func Search(s Space, from, to uint64, pat sig.Pattern) (uint64, bool) {
	m, err := Compile(pat)
	if err != nil {
		return 0, false
	}
	return m.Search(s, from, to)
}

// Search returns the lowest address a >= from where the pattern matches with
// the whole match below to. Unreadable regions and the gaps between regions
// never match; touching regions are scanned as one span.
func (m *Matcher) Search(s Space, from, to uint64) (uint64, bool) {
	if from >= to {
		return 0, false
	}

	overlap := m.len - 1
	for _, span := range spans(s.Regions()) {
		start := max(span.Start, from)
		end := min(span.End, to)
		if start >= end || end-start < uint64(m.len) {
			continue
		}

		var carry []byte
		for off := start; off < end; {
			toRead := min(end-off, chunk)
			buf := make([]byte, len(carry)+int(toRead))
			copy(buf, carry)
			if _, err := s.ReadAt(buf[len(carry):], off); err != nil {
				off += toRead
				carry = nil
				continue
			}

			if loc := m.re.FindIndex(buf); loc != nil {
				return off - uint64(len(carry)) + uint64(loc[0]), true
			}

			if overlap > 0 && len(buf) >= overlap {
				carry = append(carry[:0], buf[len(buf)-overlap:]...)
			} else {
				carry = nil
			}

			off += toRead
		}
	}

	return 0, false
}

// spans merges touching readable regions.
func spans(regions []Region) []Region {
	var out []Region
	for _, r := range regions {
		if !r.Readable() || r.End <= r.Start {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End == r.Start {
			out[n-1].End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}
