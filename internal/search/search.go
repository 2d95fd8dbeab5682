// Package search enumerates the addresses a signature matches in a Space.
package search

import (
	"fmt"

	"github.com/s-hammon/sigmaker/internal/host"
	"github.com/s-hammon/sigmaker/internal/memscan"
	"github.com/s-hammon/sigmaker/internal/sig"
)

// Addr is an optional address.
type Addr struct {
	Value uint64
	Set   bool
}

func At(addr uint64) Addr {
	return Addr{Value: addr, Set: true}
}

// Query controls one FindAll call.
type Query struct {
	// Silent suppresses every host side effect.
	Silent      bool
	StopAtFirst bool
	// IgnoreAddr is skipped, neither recorded nor ending the scan.
	IgnoreAddr Addr
	// StartAddr raises the scan floor above the lowest mapped address.
	StartAddr   Addr
	JumpToFirst bool
}

type Searcher struct {
	space memscan.Space
	host  host.Host
}

func New(space memscan.Space, h host.Host) *Searcher {
	if h == nil {
		h = host.Nop{}
	}
	return &Searcher{space: space, host: h}
}

// FindAll normalizes pattern (CODE or IDA style) and returns every match in
// ascending address order. No match is an empty result, not an error; only an
// unparsable pattern fails.
func (s *Searcher) FindAll(pattern string, q Query) ([]uint64, error) {
	normalized := sig.Normalize(pattern)
	pat, err := sig.ParseSignature(normalized)
	if err != nil {
		return nil, fmt.Errorf("parse signature %q: %w", normalized, err)
	}
	if pat.Empty() {
		return nil, fmt.Errorf("parse signature %q: empty pattern", normalized)
	}

	m, err := memscan.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("compile signature %q: %w", normalized, err)
	}

	if !q.Silent {
		s.host.Progress("Searching...")
	}

	lo, hi := s.space.Bounds()
	from := lo
	if q.StartAddr.Set {
		from = max(q.StartAddr.Value, lo)
	}

	var results []uint64
	for {
		addr, ok := m.Search(s.space, from, hi)
		if !ok {
			break
		}
		from = addr + 1

		if q.IgnoreAddr.Set && addr == q.IgnoreAddr.Value {
			continue
		}

		if !q.Silent && q.JumpToFirst && len(results) == 0 {
			s.host.Focus(addr)
		}

		results = append(results, addr)

		if !q.Silent {
			s.host.Progress(fmt.Sprintf("Found %d match%s", len(results), plural(len(results))))
			s.host.Found(len(results), addr)
		}

		if q.StopAtFirst {
			break
		}
	}

	if !q.Silent {
		s.host.Done(len(results))
		s.host.Beep()
	}

	return results, nil
}

func plural(n int) string {
	if n > 1 {
		return "es"
	}
	return ""
}
