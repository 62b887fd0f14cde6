package cachedom

import "testing"

func TestMustSet_UpdatePresence(t *testing.T) {
	s := NewMustSet(2, 0)
	s.Update(0x10)
	if !s.Present(0x10) {
		t.Fatalf("expected 0x10 present after update")
	}
	if s.Age(0x10) != 0 {
		t.Fatalf("expected age 0, got %d", s.Age(0x10))
	}

	s.Update(0x20)
	if s.Age(0x10) != 1 {
		t.Fatalf("expected 0x10 to age to 1 after a second block loads, got %d", s.Age(0x10))
	}
	if s.Age(0x20) != 0 {
		t.Fatalf("expected 0x20 at age 0, got %d", s.Age(0x20))
	}
}

func TestMustSet_ReaccessLeavesSlotsDisjoint(t *testing.T) {
	s := NewMustSet(2, 0)
	s.Update(0x10)
	s.Update(0x20) // 0x10 ages to 1
	s.Update(0x10) // promote 0x10 back to age 0

	if s.Age(0x10) != 0 {
		t.Fatalf("expected re-accessed 0x10 at age 0, got %d", s.Age(0x10))
	}
	if s.Age(0x20) != 1 {
		t.Fatalf("expected 0x20 aged to 1, got %d", s.Age(0x20))
	}
	seen := make(map[uint64]int)
	for i, slot := range s.slots {
		for a := range slot {
			if prev, dup := seen[a]; dup {
				t.Fatalf("block %#x tracked in slots %d and %d; slots must stay disjoint", a, prev, i)
			}
			seen[a] = i
		}
	}
}

func TestMaySet_ReaccessLeavesSlotsDisjoint(t *testing.T) {
	s := NewMaySet(2, 0)
	s.Update(0x10)
	s.Update(0x20)
	s.Update(0x10)

	if s.Age(0x10) != 0 || s.Age(0x20) != 1 {
		t.Fatalf("expected ages 0/1 after re-access, got %d/%d", s.Age(0x10), s.Age(0x20))
	}
	seen := make(map[uint64]int)
	for i, slot := range s.slots {
		for a := range slot {
			if prev, dup := seen[a]; dup {
				t.Fatalf("block %#x tracked in slots %d and %d; slots must stay disjoint", a, prev, i)
			}
			seen[a] = i
		}
	}
}

func TestMustSet_EvictsPastWidth(t *testing.T) {
	s := NewMustSet(1, 1)
	s.Update(0x10)
	s.Update(0x20)
	if s.Present(0x10) {
		t.Fatalf("expected 0x10 evicted from a 1-way MUST set")
	}
	if s.Age(0x10) != 2 {
		t.Fatalf("expected absent age wUsed+wRemoved=2, got %d", s.Age(0x10))
	}
}

func TestMustSet_JoinDropsSingleSided(t *testing.T) {
	a := NewMustSet(2, 0)
	a.Update(0x10)
	b := NewMustSet(2, 0)
	b.Update(0x20)

	j := a.Join(b)
	if j.Present(0x10) || j.Present(0x20) {
		t.Fatalf("expected join to drop blocks present on only one side")
	}
}

func TestMustSet_JoinKeepsOlderAge(t *testing.T) {
	a := NewMustSet(2, 0)
	a.Update(0x10)
	a.Update(0x20) // 0x10 now age 1

	b := NewMustSet(2, 0)
	b.Update(0x10) // 0x10 at age 0

	j := a.Join(b)
	if !j.Present(0x10) {
		t.Fatalf("expected 0x10 present in both sides")
	}
	if j.Age(0x10) != 1 {
		t.Fatalf("expected join to keep the older age 1, got %d", j.Age(0x10))
	}
}

func TestMustSet_UpdateSetMergesAtMaxAge(t *testing.T) {
	s := NewMustSet(3, 0)
	s.Update(0x10)
	s.Update(0x20)
	s.Update(0x30) // 0x10 now age 2

	s.UpdateSet([]uint64{0x10, 0x40})
	if s.Age(0x10) != 2 {
		t.Fatalf("expected 0x10 to land at the max observed age 2, got %d", s.Age(0x10))
	}
	if s.Age(0x40) != 2 {
		t.Fatalf("expected 0x40 merged alongside 0x10 at age 2, got %d", s.Age(0x40))
	}
}

func TestMayCache_UpdateAndAbsent(t *testing.T) {
	c := NewMayCache(1, 4, 2, 0)
	if !c.Absent(0x10) {
		t.Fatalf("expected absent before any update")
	}
	c.Update(0x10, CACAlways)
	if c.Absent(0x10) {
		t.Fatalf("expected present after an Always update")
	}
}

func TestPSCache_EvictsOnConflictSaturation(t *testing.T) {
	c := NewPSCache(1, 4, 2)
	c.Update(0x10, CACAlways)
	c.Update(0x20, CACAlways)
	if c.Absent(0x10) {
		t.Fatalf("expected 0x10 still live after one conflict")
	}
	c.Update(0x30, CACAlways)
	if !c.Absent(0x10) {
		t.Fatalf("expected 0x10 evicted once its conflict set reached associativity 2")
	}
}

func TestNextCAC_Table(t *testing.T) {
	cases := []struct {
		chmc CHMC
		cac  CAC
		want CAC
	}{
		{CHMCAlwaysHit, CACAlways, CACNever},
		{CHMCAlwaysMiss, CACAlways, CACAlways},
		{CHMCAlwaysMiss, CACUncertain, CACUncertain},
		{CHMCFirstMiss, CACAlways, CACUncertainNever},
		{CHMCNotClassified, CACAlways, CACUncertain},
		{CHMCNotClassified, CACUncertainNever, CACUncertainNever},
		{CHMCAlwaysUnused, CACAlways, CACNever},
	}
	for _, c := range cases {
		got := NextCAC(c.chmc, c.cac)
		if got != c.want {
			t.Errorf("NextCAC(%v,%v) = %v, want %v", c.chmc, c.cac, got, c.want)
		}
	}
}

func TestPolicyWidths_LRUNeverNarrowed(t *testing.T) {
	wUsed, wRemoved, err := PolicyWidths(PolicyLRU, 8, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wUsed != 8 || wRemoved != 0 {
		t.Fatalf("expected LRU width unchanged, got used=%d removed=%d", wUsed, wRemoved)
	}
}

func TestPolicyWidths_RandomUnsupportedForMay(t *testing.T) {
	_, _, err := PolicyWidths(PolicyRandom, 4, true)
	if err != ErrUnsupportedPolicy {
		t.Fatalf("expected ErrUnsupportedPolicy, got %v", err)
	}
}

func TestPolicyWidths_PLRUMustNarrowing(t *testing.T) {
	wUsed, _, err := PolicyWidths(PolicyPLRU, 8, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wUsed != 4 { // ceil(log2(8))+1 = 3+1
		t.Fatalf("expected wUsed=4, got %d", wUsed)
	}
}
