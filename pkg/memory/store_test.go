package memory

import "testing"

func TestAllocLoadStore(t *testing.T) {
	s := NewStore[int]()
	addr := s.Alloc(4)
	if err := s.StoreAt(addr+2, 42); err != nil {
		t.Fatalf("StoreAt: %v", err)
	}
	got, err := s.Load(addr + 2)
	if err != nil || got != 42 {
		t.Fatalf("Load = %d, %v; want 42, nil", got, err)
	}
}

func TestLoadPastAllocationEndFails(t *testing.T) {
	s := NewStore[int]()
	addr := s.Alloc(2)
	if _, err := s.Load(addr + 2); err == nil {
		t.Fatalf("expected error loading past the end of a 2-cell allocation")
	}
}

func TestFreeRequiresExactBase(t *testing.T) {
	s := NewStore[int]()
	addr := s.Alloc(4)

	s.Free(addr + 1) // interior address, not a base
	if _, err := s.Load(addr); err != nil {
		t.Fatalf("freeing an interior address should not release the allocation: %v", err)
	}

	s.Free(addr)
	if _, err := s.Load(addr); err == nil {
		t.Fatalf("expected error loading from a freed allocation")
	}
}

func TestFreeZeroIsNoOp(t *testing.T) {
	s := NewStore[int]()
	s.Free(0) // must not panic
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestAllocationsDoNotOverlap(t *testing.T) {
	s := NewStore[int]()
	a := s.Alloc(3)
	b := s.Alloc(5)
	if b < a+3 {
		t.Fatalf("second allocation at %d overlaps first allocation [%d, %d)", b, a, a+3)
	}
}

func TestZeroLengthAllocationHasAddressableBase(t *testing.T) {
	s := NewStore[int]()
	addr := s.Alloc(0)
	if _, err := s.Load(addr); err == nil {
		t.Fatalf("loading a zero-length allocation's base should fail, there are no cells")
	}
	s.Free(addr) // exact-base free of a zero-length allocation still succeeds
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 after freeing the zero-length allocation", s.Len())
	}
}

func TestLoadAllReturnsSuffix(t *testing.T) {
	s := NewStore[byte]()
	addr := s.Alloc(5)
	_ = s.StoreRange(addr, []byte{'h', 'e', 'l', 'l', 'o'})

	got, err := s.LoadAll(addr + 2)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if string(got) != "llo" {
		t.Fatalf("LoadAll = %q, want %q", got, "llo")
	}
}

func TestLoadRangeRejectsOutOfAllocationSpan(t *testing.T) {
	s := NewStore[byte]()
	addr := s.Alloc(4)
	if _, err := s.LoadRange(addr, 5); err == nil {
		t.Fatalf("expected error reading 5 bytes from a 4-byte allocation")
	}
}

func TestApplyDisplacementWraps(t *testing.T) {
	if got := ApplyDisplacement(10, -3); got != 7 {
		t.Errorf("ApplyDisplacement(10, -3) = %d, want 7", got)
	}
	if got := ApplyDisplacement(0, -1); got != ^uint64(0) {
		t.Errorf("ApplyDisplacement(0, -1) = %d, want wraparound to max uint64", got)
	}
}
