// File: cache.go
// Role: the whole-cache vectors (MustCache/MayCache/PSCache) wrapping one
// abstract set per direct-mapped cache set, plus the CAC-dispatched update
// shared by icache and dcache.

package cachedom

// SetIndex computes the direct-mapped set index for addr given the cache's
// line size and set count.
func SetIndex(addr uint64, lineSize, nsets int) int {
	if lineSize <= 0 {
		lineSize = 1
	}
	return int((addr / uint64(lineSize)) % uint64(nsets))
}

// groupBySet partitions addrs by the set index they fall in.
func groupBySet(addrs []uint64, lineSize, nsets int) map[int][]uint64 {
	groups := make(map[int][]uint64)
	for _, a := range addrs {
		idx := SetIndex(a, lineSize, nsets)
		groups[idx] = append(groups[idx], a)
	}
	return groups
}

// MustCache is a vector of MustSets, one per cache set.
type MustCache struct {
	LineSize int
	Sets     []*MustSet
}

// NewMustCache returns an empty MustCache with nsets sets narrowed to
// wUsed/wRemoved (see PolicyWidths).
func NewMustCache(nsets, lineSize, wUsed, wRemoved int) *MustCache {
	sets := make([]*MustSet, nsets)
	for i := range sets {
		sets[i] = NewMustSet(wUsed, wRemoved)
	}
	return &MustCache{LineSize: lineSize, Sets: sets}
}

// Clone returns a deep, independent copy.
func (c *MustCache) Clone() *MustCache {
	out := &MustCache{LineSize: c.LineSize, Sets: make([]*MustSet, len(c.Sets))}
	for i, s := range c.Sets {
		out.Sets[i] = s.Clone()
	}
	return out
}

// Join meets c with other set-by-set (the fixed-point meet operator of
// the Must passes).
func (c *MustCache) Join(other *MustCache) *MustCache {
	out := &MustCache{LineSize: c.LineSize, Sets: make([]*MustSet, len(c.Sets))}
	for i := range c.Sets {
		out.Sets[i] = c.Sets[i].Join(other.Sets[i])
	}
	return out
}

// Update performs the CAC-dispatched single-block update:
// N is a no-op, A is a direct set update, U/UN is a weak (join-preserving)
// update.
func (c *MustCache) Update(addr uint64, cac CAC) {
	idx := SetIndex(addr, c.LineSize, len(c.Sets))
	switch cac {
	case CACNever:
		return
	case CACAlways:
		c.Sets[idx].Update(addr)
	case CACUncertain, CACUncertainNever:
		before := c.Sets[idx].Clone()
		c.Sets[idx].Update(addr)
		c.Sets[idx] = c.Sets[idx].Join(before)
	}
}

// UpdateBlocks performs the CAC-dispatched set-valued update for a
// multi-block (data) access, grouping addrs by cache set and updating
// each set independently.
func (c *MustCache) UpdateBlocks(addrs []uint64, cac CAC) {
	if cac == CACNever {
		return
	}
	for idx, group := range groupBySet(addrs, c.LineSize, len(c.Sets)) {
		switch cac {
		case CACAlways:
			c.Sets[idx].UpdateSet(group)
		case CACUncertain, CACUncertainNever:
			before := c.Sets[idx].Clone()
			c.Sets[idx].UpdateSet(group)
			c.Sets[idx] = c.Sets[idx].Join(before)
		}
	}
}

// Present reports whether addr is tracked present in its cache set.
func (c *MustCache) Present(addr uint64) bool {
	idx := SetIndex(addr, c.LineSize, len(c.Sets))
	return c.Sets[idx].Present(addr)
}

// Equal reports whether c and other hold identical state in every set.
func (c *MustCache) Equal(other *MustCache) bool {
	if len(c.Sets) != len(other.Sets) {
		return false
	}
	for i := range c.Sets {
		if !c.Sets[i].Equal(other.Sets[i]) {
			return false
		}
	}
	return true
}

// MayCache is a vector of MaySets, one per cache set.
type MayCache struct {
	LineSize int
	Sets     []*MaySet
}

// NewMayCache returns an empty MayCache.
func NewMayCache(nsets, lineSize, wUsed, wRemoved int) *MayCache {
	sets := make([]*MaySet, nsets)
	for i := range sets {
		sets[i] = NewMaySet(wUsed, wRemoved)
	}
	return &MayCache{LineSize: lineSize, Sets: sets}
}

// Clone returns a deep, independent copy.
func (c *MayCache) Clone() *MayCache {
	out := &MayCache{LineSize: c.LineSize, Sets: make([]*MaySet, len(c.Sets))}
	for i, s := range c.Sets {
		out.Sets[i] = s.Clone()
	}
	return out
}

// Join joins c with other set-by-set.
func (c *MayCache) Join(other *MayCache) *MayCache {
	out := &MayCache{LineSize: c.LineSize, Sets: make([]*MaySet, len(c.Sets))}
	for i := range c.Sets {
		out.Sets[i] = c.Sets[i].Join(other.Sets[i])
	}
	return out
}

// Update performs the CAC-dispatched single-block MAY update.
func (c *MayCache) Update(addr uint64, cac CAC) {
	idx := SetIndex(addr, c.LineSize, len(c.Sets))
	switch cac {
	case CACNever:
		return
	case CACAlways:
		c.Sets[idx].Update(addr)
	case CACUncertain, CACUncertainNever:
		before := c.Sets[idx].Clone()
		c.Sets[idx].Update(addr)
		c.Sets[idx] = c.Sets[idx].Join(before)
	}
}

// UpdateBlocks performs the CAC-dispatched set-valued MAY update.
func (c *MayCache) UpdateBlocks(addrs []uint64, cac CAC) {
	if cac == CACNever {
		return
	}
	for idx, group := range groupBySet(addrs, c.LineSize, len(c.Sets)) {
		switch cac {
		case CACAlways:
			c.Sets[idx].UpdateSet(group)
		case CACUncertain, CACUncertainNever:
			before := c.Sets[idx].Clone()
			c.Sets[idx].UpdateSet(group)
			c.Sets[idx] = c.Sets[idx].Join(before)
		}
	}
}

// Absent reports whether addr is tracked in no slot of its cache set.
func (c *MayCache) Absent(addr uint64) bool {
	idx := SetIndex(addr, c.LineSize, len(c.Sets))
	return c.Sets[idx].Absent(addr)
}

// Equal reports whether c and other hold identical state in every set.
func (c *MayCache) Equal(other *MayCache) bool {
	if len(c.Sets) != len(other.Sets) {
		return false
	}
	for i := range c.Sets {
		if !c.Sets[i].Equal(other.Sets[i]) {
			return false
		}
	}
	return true
}

// PSCache is a vector of PSSets, one per cache set.
type PSCache struct {
	LineSize int
	Sets     []*PSSet
}

// NewPSCache returns an empty PSCache.
func NewPSCache(nsets, lineSize, w int) *PSCache {
	sets := make([]*PSSet, nsets)
	for i := range sets {
		sets[i] = NewPSSet(w)
	}
	return &PSCache{LineSize: lineSize, Sets: sets}
}

// Clone returns a deep, independent copy.
func (c *PSCache) Clone() *PSCache {
	out := &PSCache{LineSize: c.LineSize, Sets: make([]*PSSet, len(c.Sets))}
	for i, s := range c.Sets {
		out.Sets[i] = s.Clone()
	}
	return out
}

// Join joins c with other set-by-set.
func (c *PSCache) Join(other *PSCache) *PSCache {
	out := &PSCache{LineSize: c.LineSize, Sets: make([]*PSSet, len(c.Sets))}
	for i := range c.Sets {
		out.Sets[i] = c.Sets[i].Join(other.Sets[i])
	}
	return out
}

// Update performs the CAC-dispatched single-block PS update.
func (c *PSCache) Update(addr uint64, cac CAC) {
	idx := SetIndex(addr, c.LineSize, len(c.Sets))
	switch cac {
	case CACNever:
		return
	case CACAlways:
		c.Sets[idx].Update(addr)
	case CACUncertain, CACUncertainNever:
		before := c.Sets[idx].Clone()
		c.Sets[idx].Update(addr)
		c.Sets[idx] = c.Sets[idx].Join(before)
	}
}

// UpdateBlocks performs the CAC-dispatched set-valued PS update.
func (c *PSCache) UpdateBlocks(addrs []uint64, cac CAC) {
	if cac == CACNever {
		return
	}
	for idx, group := range groupBySet(addrs, c.LineSize, len(c.Sets)) {
		switch cac {
		case CACAlways:
			c.Sets[idx].UpdateSet(group)
		case CACUncertain, CACUncertainNever:
			before := c.Sets[idx].Clone()
			c.Sets[idx].UpdateSet(group)
			c.Sets[idx] = c.Sets[idx].Join(before)
		}
	}
}

// Absent reports whether addr's key is absent from its cache set's live map.
func (c *PSCache) Absent(addr uint64) bool {
	idx := SetIndex(addr, c.LineSize, len(c.Sets))
	return c.Sets[idx].Absent(addr)
}

// Equal reports whether c and other hold identical state in every set.
func (c *PSCache) Equal(other *PSCache) bool {
	if len(c.Sets) != len(other.Sets) {
		return false
	}
	for i := range c.Sets {
		if !c.Sets[i].Equal(other.Sets[i]) {
			return false
		}
	}
	return true
}
