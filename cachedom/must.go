// File: must.go
// Role: the MUST domain: an array of W disjoint address
// sets, slot i holding blocks whose maximum age is i.

package cachedom

// MustSet is one cache set's MUST abstract state.
type MustSet struct {
	wUsed    int
	wRemoved int
	slots    []map[uint64]struct{}
}

// NewMustSet returns an empty MUST set narrowed to wUsed slots, with
// wRemoved recording the slack folded in on absence.
func NewMustSet(wUsed, wRemoved int) *MustSet {
	slots := make([]map[uint64]struct{}, wUsed)
	for i := range slots {
		slots[i] = make(map[uint64]struct{})
	}
	return &MustSet{wUsed: wUsed, wRemoved: wRemoved, slots: slots}
}

// Clone returns a deep, independent copy.
func (s *MustSet) Clone() *MustSet {
	out := NewMustSet(s.wUsed, s.wRemoved)
	for i, slot := range s.slots {
		for a := range slot {
			out.slots[i][a] = struct{}{}
		}
	}
	return out
}

// find returns the slot index holding addr, or s.wUsed if absent.
func (s *MustSet) find(addr uint64) int {
	for i, slot := range s.slots {
		if _, ok := slot[addr]; ok {
			return i
		}
	}
	return s.wUsed
}

// Update performs the MUST aging update: a no-op if addr is
// already at age 0; otherwise the block at the found position (or the
// narrowed boundary, if absent) is merged one slot older and addr is
// inserted fresh at age 0.
func (s *MustSet) Update(addr uint64) {
	if s.wUsed == 0 {
		return
	}
	if _, ok := s.slots[0][addr]; ok {
		return
	}
	p := s.find(addr)
	if p < s.wUsed && p > 0 {
		// addr leaves its old slot before the merge, so the slots stay
		// disjoint once it reappears at age 0.
		delete(s.slots[p], addr)
		for a := range s.slots[p] {
			s.slots[p-1][a] = struct{}{}
		}
	}
	limit := p
	if limit > s.wUsed {
		limit = s.wUsed
	}
	for i := limit - 1; i >= 0; i-- {
		if i+1 < s.wUsed {
			s.slots[i+1] = s.slots[i]
		}
	}
	s.slots[0] = map[uint64]struct{}{addr: {}}
}

// UpdateSet performs the set-valued MUST update for a multi-block access
// touching all of addrs in one cache set: the blocks merge at the maximum
// age among them.
func (s *MustSet) UpdateSet(addrs []uint64) {
	if len(addrs) == 0 || s.wUsed == 0 {
		return
	}
	maxAge := 0
	for _, a := range addrs {
		age := s.find(a)
		if age > s.wUsed-1 {
			age = s.wUsed - 1
		}
		if age > maxAge {
			maxAge = age
		}
	}
	for i := range s.slots {
		for _, a := range addrs {
			delete(s.slots[i], a)
		}
	}
	for _, a := range addrs {
		s.slots[maxAge][a] = struct{}{}
	}
}

// Join combines s with other by, for each block present in both, keeping
// the older (larger-index) age, and dropping blocks present in only one
// side.
func (s *MustSet) Join(other *MustSet) *MustSet {
	out := NewMustSet(s.wUsed, s.wRemoved)
	age := func(set *MustSet, addr uint64) (int, bool) {
		for i, slot := range set.slots {
			if _, ok := slot[addr]; ok {
				return i, true
			}
		}
		return 0, false
	}
	for _, slot := range s.slots {
		for a := range slot {
			pa, _ := age(s, a)
			pb, ok := age(other, a)
			if !ok {
				continue
			}
			p := pa
			if pb > p {
				p = pb
			}
			out.slots[p][a] = struct{}{}
		}
	}
	return out
}

// Age returns the slot index holding addr, or wUsed+wRemoved if absent.
func (s *MustSet) Age(addr uint64) int {
	p := s.find(addr)
	if p < s.wUsed {
		return p
	}
	return s.wUsed + s.wRemoved
}

// Present reports whether addr is tracked present in this MUST set.
func (s *MustSet) Present(addr uint64) bool {
	return s.find(addr) < s.wUsed
}

// Equal reports whether s and other hold identical slot contents, used by
// icache/dcache to detect fixed-point convergence.
func (s *MustSet) Equal(other *MustSet) bool {
	if s.wUsed != other.wUsed || len(s.slots) != len(other.slots) {
		return false
	}
	for i := range s.slots {
		if len(s.slots[i]) != len(other.slots[i]) {
			return false
		}
		for a := range s.slots[i] {
			if _, ok := other.slots[i][a]; !ok {
				return false
			}
		}
	}
	return true
}
