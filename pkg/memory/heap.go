package memory

import "github.com/tinyvm/stackvm/pkg/value"

// Heap is the typed heap: Values allocated by alloc/allocn and freed by
// free, addressed with value.AddressHeap.
type Heap struct {
	store *Store[value.Value]
}

// NewHeap creates an empty typed heap.
func NewHeap() *Heap {
	return &Heap{store: NewStore[value.Value]()}
}

func (h *Heap) Alloc(n int) uint64            { return h.store.Alloc(n) }
func (h *Heap) Free(addr uint64)              { h.store.Free(addr) }
func (h *Heap) Load(addr uint64) (value.Value, error)      { return h.store.Load(addr) }
func (h *Heap) Store(addr uint64, v value.Value) error      { return h.store.StoreAt(addr, v) }
func (h *Heap) LoadAll(addr uint64) ([]value.Value, error)  { return h.store.LoadAll(addr) }
func (h *Heap) LoadRange(addr uint64, n int) ([]value.Value, error) {
	return h.store.LoadRange(addr, n)
}
func (h *Heap) StoreRange(addr uint64, vals []value.Value) error {
	return h.store.StoreRange(addr, vals)
}
func (h *Heap) Len() int    { return h.store.Len() }
func (h *Heap) Teardown()   { h.store.Teardown() }
