// File: may.go
// Role: the MAY domain: same shape as MUST, but Join takes
// the union (keeping the younger age) instead of intersecting.

package cachedom

// MaySet is one cache set's MAY abstract state.
type MaySet struct {
	wUsed    int
	wRemoved int
	slots    []map[uint64]struct{}
}

// NewMaySet returns an empty MAY set narrowed to wUsed slots.
func NewMaySet(wUsed, wRemoved int) *MaySet {
	slots := make([]map[uint64]struct{}, wUsed)
	for i := range slots {
		slots[i] = make(map[uint64]struct{})
	}
	return &MaySet{wUsed: wUsed, wRemoved: wRemoved, slots: slots}
}

// Clone returns a deep, independent copy.
func (s *MaySet) Clone() *MaySet {
	out := NewMaySet(s.wUsed, s.wRemoved)
	for i, slot := range s.slots {
		for a := range slot {
			out.slots[i][a] = struct{}{}
		}
	}
	return out
}

func (s *MaySet) find(addr uint64) int {
	for i, slot := range s.slots {
		if _, ok := slot[addr]; ok {
			return i
		}
	}
	return s.wUsed
}

// Update mirrors MustSet.Update's mechanics over the MAY-narrowed width.
func (s *MaySet) Update(addr uint64) {
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

// UpdateSet performs the set-valued MAY update: every touched block is
// removed from wherever it is tracked and reinserted at age 0.
func (s *MaySet) UpdateSet(addrs []uint64) {
	if s.wUsed == 0 {
		return
	}
	for i := range s.slots {
		for _, a := range addrs {
			delete(s.slots[i], a)
		}
	}
	for _, a := range addrs {
		s.slots[0][a] = struct{}{}
	}
}

// Join combines s with other by unioning block sets, keeping the younger
// (smaller-index) age for blocks present on both sides.
func (s *MaySet) Join(other *MaySet) *MaySet {
	out := NewMaySet(s.wUsed, s.wRemoved)
	place := func(set *MaySet) {
		for i, slot := range set.slots {
			for a := range slot {
				cur := out.find(a)
				if cur == out.wUsed || i < cur {
					for j := range out.slots {
						delete(out.slots[j], a)
					}
					out.slots[i][a] = struct{}{}
				}
			}
		}
	}
	place(s)
	place(other)
	return out
}

// Absent reports whether addr is tracked in no slot.
func (s *MaySet) Absent(addr uint64) bool {
	return s.find(addr) >= s.wUsed
}

// Age returns the slot index holding addr, or wUsed+wRemoved if absent.
func (s *MaySet) Age(addr uint64) int {
	p := s.find(addr)
	if p < s.wUsed {
		return p
	}
	return s.wUsed + s.wRemoved
}

// Equal reports whether s and other hold identical slot contents.
func (s *MaySet) Equal(other *MaySet) bool {
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
