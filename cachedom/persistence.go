// File: persistence.go
// Role: the PS (persistence) domain: a map from block to
// the set of other blocks that have entered its cache set since the
// block's first load, plus the evicted-key set once a conflict set
// saturates.

package cachedom

// PSSet is one cache set's persistence abstract state.
type PSSet struct {
	w       int
	live    map[uint64]map[uint64]struct{}
	evicted map[uint64]struct{}
}

// NewPSSet returns an empty PS set for associativity w.
func NewPSSet(w int) *PSSet {
	return &PSSet{
		w:       w,
		live:    make(map[uint64]map[uint64]struct{}),
		evicted: make(map[uint64]struct{}),
	}
}

// Clone returns a deep, independent copy.
func (s *PSSet) Clone() *PSSet {
	out := NewPSSet(s.w)
	for k, cs := range s.live {
		cp := make(map[uint64]struct{}, len(cs))
		for a := range cs {
			cp[a] = struct{}{}
		}
		out.live[k] = cp
	}
	for k := range s.evicted {
		out.evicted[k] = struct{}{}
	}
	return out
}

// touch registers addr's first load if it has never been seen.
func (s *PSSet) touch(addr uint64) {
	if _, ok := s.live[addr]; ok {
		return
	}
	if _, ok := s.evicted[addr]; ok {
		return
	}
	s.live[addr] = make(map[uint64]struct{})
}

// Update adds addr to every other live block's conflict set whose size
// stays below w; a conflict set that reaches w evicts its key.
func (s *PSSet) Update(addr uint64) {
	s.touch(addr)
	for k, cs := range s.live {
		if k == addr {
			continue
		}
		if len(cs) >= s.w {
			continue
		}
		cs[addr] = struct{}{}
		if len(cs) >= s.w {
			delete(s.live, k)
			s.evicted[k] = struct{}{}
		}
	}
}

// UpdateSet performs the set-valued PS update: every pair of touched
// blocks is recorded as a mutual conflict.
func (s *PSSet) UpdateSet(addrs []uint64) {
	for _, a := range addrs {
		s.touch(a)
	}
	for _, a := range addrs {
		cs, ok := s.live[a]
		if !ok {
			continue
		}
		for _, b := range addrs {
			if a == b || len(cs) >= s.w {
				continue
			}
			cs[b] = struct{}{}
		}
		if len(cs) >= s.w {
			delete(s.live, a)
			s.evicted[a] = struct{}{}
		}
	}
}

// Join pointwise-unions conflict sets across s and other, evicting any key
// whose merged conflict set reaches w; evicted-key sets from both sides
// are unioned into the result.
func (s *PSSet) Join(other *PSSet) *PSSet {
	out := NewPSSet(s.w)
	keys := make(map[uint64]struct{})
	for k := range s.live {
		keys[k] = struct{}{}
	}
	for k := range other.live {
		keys[k] = struct{}{}
	}
	for k := range keys {
		merged := make(map[uint64]struct{})
		if cs, ok := s.live[k]; ok {
			for a := range cs {
				merged[a] = struct{}{}
			}
		}
		if cs, ok := other.live[k]; ok {
			for a := range cs {
				merged[a] = struct{}{}
			}
		}
		if len(merged) >= s.w {
			out.evicted[k] = struct{}{}
		} else {
			out.live[k] = merged
		}
	}
	for k := range s.evicted {
		out.evicted[k] = struct{}{}
	}
	for k := range other.evicted {
		out.evicted[k] = struct{}{}
	}
	return out
}

// Absent reports whether addr's key is not in the live map: either never
// loaded or evicted.
func (s *PSSet) Absent(addr uint64) bool {
	_, ok := s.live[addr]
	return !ok
}

// Equal reports whether s and other hold identical live conflict sets and
// identical evicted-key sets.
func (s *PSSet) Equal(other *PSSet) bool {
	if len(s.live) != len(other.live) || len(s.evicted) != len(other.evicted) {
		return false
	}
	for k, cs := range s.live {
		ocs, ok := other.live[k]
		if !ok || len(cs) != len(ocs) {
			return false
		}
		for a := range cs {
			if _, ok := ocs[a]; !ok {
				return false
			}
		}
	}
	for k := range s.evicted {
		if _, ok := other.evicted[k]; !ok {
			return false
		}
	}
	return true
}
