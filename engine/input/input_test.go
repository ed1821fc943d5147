package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

func TestJustPressedIsOneFrame(t *testing.T) {
	s := NewState()
	s.KeyDown(common.Key1)

	first := s.Snapshot()
	if !first.Pressed(common.Key1) || !first.JustPressed(common.Key1) {
		t.Fatal("first snapshot should see the key pressed and just pressed")
	}

	// auto-repeat while held
	s.KeyDown(common.Key1)
	second := s.Snapshot()
	if !second.Pressed(common.Key1) {
		t.Error("key should still be held")
	}
	if second.JustPressed(common.Key1) {
		t.Error("held key must not be just pressed again")
	}
}

func TestTapInsideOneFrame(t *testing.T) {
	s := NewState()
	s.ButtonDown(common.MouseButtonLeft)
	s.ButtonUp(common.MouseButtonLeft)

	snap := s.Snapshot()
	if snap.ButtonPressed(common.MouseButtonLeft) {
		t.Error("released button should not be held")
	}
	if !snap.ButtonJustPressed(common.MouseButtonLeft) {
		t.Error("a press and release within a frame should still register")
	}
}

func TestMouseDeltaAndScroll(t *testing.T) {
	s := NewState()
	s.CursorMoved(10, 10)
	s.Scrolled(1)
	s.Scrolled(0.5)

	first := s.Snapshot()
	if first.MouseDelta != [2]float32{} {
		t.Errorf("first delta = %v, want zero", first.MouseDelta)
	}
	if first.Scroll != 1.5 {
		t.Errorf("Scroll = %v, want 1.5", first.Scroll)
	}

	s.CursorMoved(14, 7)
	second := s.Snapshot()
	if second.MouseDelta != [2]float32{4, -3} {
		t.Errorf("delta = %v, want [4 -3]", second.MouseDelta)
	}
	if second.Scroll != 0 {
		t.Errorf("Scroll = %v, want 0 after reset", second.Scroll)
	}
	if !second.CursorValid || second.Cursor != [2]float32{14, 7} {
		t.Errorf("cursor = %v valid=%v", second.Cursor, second.CursorValid)
	}
}

func TestAnyPressed(t *testing.T) {
	s := NewState()
	s.KeyDown(common.KeyLeftControl)
	snap := s.Snapshot()
	if !snap.AnyPressed(common.KeyLeftShift, common.KeyLeftControl) {
		t.Error("AnyPressed should see left control")
	}
	if snap.AnyPressed(common.KeyLeftShift, common.KeyRightShift) {
		t.Error("AnyPressed reported a key that is not held")
	}
}
