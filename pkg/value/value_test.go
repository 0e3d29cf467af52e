package value

import "testing"

func TestSameTagEqualReflexive(t *testing.T) {
	vals := []Value{
		Int(42),
		Flt(3.5),
		Heap(7),
		Str(7),
		Code(7),
		StackAddr(7),
	}
	for _, v := range vals {
		if !SameTagEqual(v, v) {
			t.Errorf("SameTagEqual(%v, %v) = false, want true (reflexive)", v, v)
		}
	}
}

func TestSameTagEqualMixedTagsAreFalse(t *testing.T) {
	if SameTagEqual(Int(7), Flt(7)) {
		t.Errorf("Integer and Float with equal magnitude should not compare equal")
	}
	if SameTagEqual(Heap(7), Str(7)) {
		t.Errorf("AddressHeap and AddressString with the same address should not compare equal")
	}
}

func TestAddrPanicsOnNonAddressTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Addr(Integer, ...) should panic")
		}
	}()
	Addr(Integer, 5)
}

func TestWithAddressPreservesTag(t *testing.T) {
	v := Heap(10).WithAddress(20)
	if v.Tag != AddressHeap || v.Address() != 20 {
		t.Errorf("WithAddress changed tag or failed to update address: %+v", v)
	}
}
