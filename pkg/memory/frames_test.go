package memory

import "testing"

func TestFramesPushPop(t *testing.T) {
	f := NewFrames(4)
	f.Push(Frame{FramePointer: 3, ReturnCodePointer: 17})
	f.Push(Frame{FramePointer: 5, ReturnCodePointer: 41})

	top, err := f.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if top.FramePointer != 5 || top.ReturnCodePointer != 41 {
		t.Fatalf("Pop = %+v, want {5 41}", top)
	}
	if f.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", f.Len())
	}
}

func TestFramesPopEmptyIsOutOfBounds(t *testing.T) {
	f := NewFrames(0)
	if _, err := f.Pop(); err == nil {
		t.Fatalf("expected error popping an empty call frame stack")
	}
}
