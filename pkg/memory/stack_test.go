package memory

import (
	"testing"

	"github.com/tinyvm/stackvm/pkg/value"
)

func TestPushPop(t *testing.T) {
	s := NewStack(4)
	s.Push(value.Int(1))
	s.Push(value.Int(2))

	got, err := s.Pop()
	if err != nil || got.Int32() != 2 {
		t.Fatalf("Pop = %v, %v; want 2, nil", got, err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestPopEmptyIsOutOfBounds(t *testing.T) {
	s := NewStack(0)
	if _, err := s.Pop(); err == nil {
		t.Fatalf("expected error popping an empty stack")
	}
}

func TestPopAsTypeMismatchLeavesStackUnchanged(t *testing.T) {
	s := NewStack(1)
	s.Push(value.Flt(1.5))

	if _, err := s.PopAs(value.Integer); err == nil {
		t.Fatalf("expected TypeMismatch popping a Float as Integer")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1; a failed typed pop must not consume the value", s.Len())
	}
}

func TestLoadStoreByAbsoluteIndex(t *testing.T) {
	s := NewStack(4)
	s.Push(value.Int(10))
	s.Push(value.Int(20))
	s.Push(value.Int(30))

	prev, err := s.Store(1, value.Int(99))
	if err != nil || prev.Int32() != 20 {
		t.Fatalf("Store = %v, %v; want previous 20, nil", prev, err)
	}
	got, err := s.Load(1)
	if err != nil || got.Int32() != 99 {
		t.Fatalf("Load(1) = %v, %v; want 99, nil", got, err)
	}
}

func TestTruncate(t *testing.T) {
	s := NewStack(4)
	s.Push(value.Int(1))
	s.Push(value.Int(2))
	s.Push(value.Int(3))
	s.Truncate(1)
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestPushNPushesExactlyNZeros(t *testing.T) {
	s := NewStack(4)
	s.PushN(3)
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	for i := uint64(0); i < 3; i++ {
		v, _ := s.Load(i)
		if v.Tag != value.Integer || v.Int32() != 0 {
			t.Errorf("slot %d = %v, want zero Integer", i, v)
		}
	}
}

func TestDupN(t *testing.T) {
	s := NewStack(4)
	s.Push(value.Int(1))
	s.Push(value.Int(2))
	if err := s.DupN(2); err != nil {
		t.Fatalf("DupN: %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	for i, want := range []int32{1, 2, 1, 2} {
		v, _ := s.Load(uint64(i))
		if v.Int32() != want {
			t.Errorf("slot %d = %d, want %d", i, v.Int32(), want)
		}
	}
}

func TestDupNMoreThanLenFails(t *testing.T) {
	s := NewStack(4)
	s.Push(value.Int(1))
	if err := s.DupN(2); err == nil {
		t.Fatalf("expected error dupn-ing more entries than are on the stack")
	}
}
