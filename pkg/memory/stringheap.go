package memory

// StringHeap is the byte-addressable string heap: raw bytes allocated
// by the VM when it registers a string constant, a `read` line, or a
// `concat`/numeric-conversion result, addressed with
// value.AddressString. Structurally identical to Heap, just over byte
// cells instead of value.Value cells.
type StringHeap struct {
	store *Store[byte]
}

// NewStringHeap creates an empty string heap.
func NewStringHeap() *StringHeap {
	return &StringHeap{store: NewStore[byte]()}
}

// Intern copies data into a fresh allocation and returns its base
// address. Every string constant, read line, and concat/conversion
// result enters the heap this way.
func (s *StringHeap) Intern(data []byte) uint64 {
	addr := s.store.Alloc(len(data))
	if len(data) > 0 {
		_ = s.store.StoreRange(addr, data)
	}
	return addr
}

func (s *StringHeap) Free(addr uint64)             { s.store.Free(addr) }
func (s *StringHeap) Load(addr uint64) (byte, error) { return s.store.Load(addr) }
func (s *StringHeap) Store(addr uint64, b byte) error { return s.store.StoreAt(addr, b) }

// Bytes returns a copy of the bytes owned by the allocation addr
// belongs to, from addr through the allocation's end —
// the representation write and equal use to compare or print strings.
func (s *StringHeap) Bytes(addr uint64) ([]byte, error) {
	return s.store.LoadAll(addr)
}

func (s *StringHeap) Len() int  { return s.store.Len() }
func (s *StringHeap) Teardown() { s.store.Teardown() }
