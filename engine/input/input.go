// Package input turns raw window callbacks into per-frame input snapshots.
//
// The window thread feeds a State with key, button, cursor and scroll events as they arrive.
// Once per frame the engine takes a Snapshot, which freezes the pressed sets, derives the
// just-pressed edges relative to the previous snapshot, and resets the accumulated deltas.
package input

import "sync"

// Snapshot is the input seen by one frame.
type Snapshot struct {
	keys        map[uint32]bool
	keysJust    map[uint32]bool
	buttons     map[int]bool
	buttonsJust map[int]bool

	// Cursor is the cursor position in window pixels, origin top left.
	Cursor [2]float32
	// CursorValid is false when the cursor is outside the window.
	CursorValid bool
	// MouseDelta is the cursor movement since the previous snapshot.
	MouseDelta [2]float32
	// Scroll is the accumulated wheel movement in lines since the previous snapshot, positive is up.
	Scroll float32
	// UICaptured is true when an overlay widget owns the pointer this frame.
	UICaptured bool
}

// Pressed reports whether key is held.
func (s Snapshot) Pressed(key uint32) bool {
	return s.keys[key]
}

// JustPressed reports whether key went down since the previous snapshot.
func (s Snapshot) JustPressed(key uint32) bool {
	return s.keysJust[key]
}

// ButtonPressed reports whether the mouse button is held.
func (s Snapshot) ButtonPressed(button int) bool {
	return s.buttons[button]
}

// ButtonJustPressed reports whether the mouse button went down since the previous snapshot.
func (s Snapshot) ButtonJustPressed(button int) bool {
	return s.buttonsJust[button]
}

// AnyPressed reports whether any of keys is held.
func (s Snapshot) AnyPressed(keys ...uint32) bool {
	for _, k := range keys {
		if s.keys[k] {
			return true
		}
	}
	return false
}

// State accumulates window events between snapshots. Safe for concurrent use.
type State struct {
	mu sync.Mutex

	keys    map[uint32]bool
	buttons map[int]bool

	// pending edges collect presses that happened since the last snapshot, so a press and
	// release inside one frame still registers as just pressed.
	pendingKeys    map[uint32]bool
	pendingButtons map[int]bool

	cursor      [2]float32
	cursorValid bool
	lastCursor  [2]float32
	hasLast     bool
	scroll      float32
	uiCaptured  bool
}

// NewState creates an empty input State.
func NewState() *State {
	return &State{
		keys:           make(map[uint32]bool),
		buttons:        make(map[int]bool),
		pendingKeys:    make(map[uint32]bool),
		pendingButtons: make(map[int]bool),
	}
}

// KeyDown records a key press. Auto-repeat presses of a held key are not new edges.
func (s *State) KeyDown(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.keys[key] {
		s.pendingKeys[key] = true
	}
	s.keys[key] = true
}

// KeyUp records a key release.
func (s *State) KeyUp(key uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// ButtonDown records a mouse button press.
func (s *State) ButtonDown(button int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.buttons[button] {
		s.pendingButtons[button] = true
	}
	s.buttons[button] = true
}

// ButtonUp records a mouse button release.
func (s *State) ButtonUp(button int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buttons, button)
}

// CursorMoved records the cursor position in window pixels.
func (s *State) CursorMoved(x, y float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = [2]float32{x, y}
	s.cursorValid = true
}

// CursorLeft records that the cursor left the window.
func (s *State) CursorLeft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursorValid = false
	s.hasLast = false
}

// Scrolled accumulates wheel movement in lines.
func (s *State) Scrolled(lines float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll += lines
}

// SetUICaptured marks whether an overlay widget owns the pointer.
func (s *State) SetUICaptured(captured bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiCaptured = captured
}

// Snapshot freezes the current state for one frame and resets the per-frame accumulators.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		keys:        make(map[uint32]bool, len(s.keys)),
		keysJust:    s.pendingKeys,
		buttons:     make(map[int]bool, len(s.buttons)),
		buttonsJust: s.pendingButtons,
		Cursor:      s.cursor,
		CursorValid: s.cursorValid,
		Scroll:      s.scroll,
		UICaptured:  s.uiCaptured,
	}
	for k := range s.keys {
		snap.keys[k] = true
	}
	for b := range s.buttons {
		snap.buttons[b] = true
	}
	if s.cursorValid && s.hasLast {
		snap.MouseDelta = [2]float32{s.cursor[0] - s.lastCursor[0], s.cursor[1] - s.lastCursor[1]}
	}

	s.lastCursor = s.cursor
	s.hasLast = s.cursorValid
	s.pendingKeys = make(map[uint32]bool)
	s.pendingButtons = make(map[int]bool)
	s.scroll = 0
	return snap
}
