// Package memory implements the four address spaces the engine mutates:
// the operand stack, the call-frame stack, the typed heap, and the
// string heap. The two heaps share one generic implementation (Store)
// parameterized by cell type, matching spec.md's observation that the
// string heap is "identical structure but over bytes."
package memory

import (
	"github.com/tinyvm/stackvm/pkg/rbtree"
	"github.com/tinyvm/stackvm/pkg/vmerr"
)

// allocation is one owned, contiguous slice of cells, identified by its
// base address.
type allocation[T any] struct {
	base  uint64
	cells []T
}

// Store is a set of owned, non-overlapping slices of T, indexed by base
// address for O(log n) "which allocation owns this address" lookups.
// Heap and StringHeap are both thin wrappers over Store.
type Store[T any] struct {
	index *rbtree.Tree[*allocation[T]]
	next  uint64
}

// NewStore creates an empty Store. Base addresses start at 1 so that 0
// is never a valid allocation base, matching free's "addr is zero" no-op
// case and giving the VM a safe null-address sentinel.
func NewStore[T any]() *Store[T] {
	return &Store[T]{index: &rbtree.Tree[*allocation[T]]{}, next: 1}
}

// Alloc reserves a fresh slice of n zero-valued cells and returns its
// base address.
func (s *Store[T]) Alloc(n int) uint64 {
	base := s.next
	alloc := &allocation[T]{base: base, cells: make([]T, n)}
	s.index.Insert(base, alloc)
	step := uint64(n)
	if step == 0 {
		step = 1
	}
	s.next += step
	return base
}

// Free releases the allocation whose base is exactly addr. It is a
// silent no-op if addr is zero or is not the exact base of a live
// allocation — freeing an interior address does not free the whole
// slice.
func (s *Store[T]) Free(addr uint64) {
	if addr == 0 {
		return
	}
	key, _, ok := s.index.ClosestSmaller(addr)
	if !ok || key != addr {
		return
	}
	s.index.Delete(addr)
}

func (s *Store[T]) resolve(addr uint64) (*allocation[T], uint64, error) {
	base, alloc, ok := s.index.ClosestSmaller(addr)
	if !ok {
		return nil, 0, &vmerr.InvalidAddress{Address: addr, Reason: "no allocation owns this address"}
	}
	offset := addr - base
	if offset >= uint64(len(alloc.cells)) {
		return nil, 0, &vmerr.InvalidAddress{Address: addr, Reason: "address is past the end of its allocation"}
	}
	return alloc, offset, nil
}

// Load reads the single cell at addr.
func (s *Store[T]) Load(addr uint64) (T, error) {
	alloc, offset, err := s.resolve(addr)
	if err != nil {
		var zero T
		return zero, err
	}
	return alloc.cells[offset], nil
}

// StoreAt writes v to the single cell at addr.
func (s *Store[T]) StoreAt(addr uint64, v T) error {
	alloc, offset, err := s.resolve(addr)
	if err != nil {
		return err
	}
	alloc.cells[offset] = v
	return nil
}

// LoadAll returns a copy of every cell from addr to the end of its
// owning allocation. Used by string printing and parsing, which read a
// whole string starting at its base.
func (s *Store[T]) LoadAll(addr uint64) ([]T, error) {
	base, alloc, ok := s.index.ClosestSmaller(addr)
	if !ok {
		return nil, &vmerr.InvalidAddress{Address: addr, Reason: "no allocation owns this address"}
	}
	offset := addr - base
	if offset > uint64(len(alloc.cells)) {
		return nil, &vmerr.InvalidAddress{Address: addr, Reason: "address is past the end of its allocation"}
	}
	out := make([]T, len(alloc.cells)-int(offset))
	copy(out, alloc.cells[offset:])
	return out, nil
}

// LoadRange returns a copy of n cells starting at addr. The whole range
// [addr, addr+n) must lie within one allocation.
func (s *Store[T]) LoadRange(addr uint64, n int) ([]T, error) {
	alloc, offset, err := s.rangeBounds(addr, n)
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	copy(out, alloc.cells[offset:offset+uint64(n)])
	return out, nil
}

// StoreRange writes vals starting at addr. The whole range must lie
// within one allocation.
func (s *Store[T]) StoreRange(addr uint64, vals []T) error {
	alloc, offset, err := s.rangeBounds(addr, len(vals))
	if err != nil {
		return err
	}
	copy(alloc.cells[offset:offset+uint64(len(vals))], vals)
	return nil
}

func (s *Store[T]) rangeBounds(addr uint64, n int) (*allocation[T], uint64, error) {
	base, alloc, ok := s.index.ClosestSmaller(addr)
	if !ok {
		return nil, 0, &vmerr.InvalidAddress{Address: addr, Reason: "no allocation owns this address"}
	}
	offset := addr - base
	if offset+uint64(n) > uint64(len(alloc.cells)) {
		return nil, 0, &vmerr.InvalidAddress{Address: addr, Reason: "range extends past the end of its allocation"}
	}
	return alloc, offset, nil
}

// Len reports the number of live allocations, for diagnostics and
// teardown accounting.
func (s *Store[T]) Len() int {
	return s.index.Len()
}

// Teardown releases every live allocation. After Teardown the Store is
// empty and may be reused.
func (s *Store[T]) Teardown() {
	s.index = &rbtree.Tree[*allocation[T]]{}
}

// ApplyDisplacement adds a signed displacement to an address using
// wrapping arithmetic, the helper the instruction layer uses for padd
// and for offset-based loads/stores (pushg/pushl/storeg/storel).
func ApplyDisplacement(addr uint64, delta int32) uint64 {
	return uint64(int64(addr) + int64(delta))
}
