package widget

import (
	"errors"
	"sync"
)

// ErrAlreadyWaiting is returned by BeginWaiting when a response is already
// pending.
var ErrAlreadyWaiting = errors.New("widget: already awaiting a response")

// StateSnapshot is a point-in-time copy of the UI state.
type StateSnapshot struct {
	Open             bool `json:"open"`
	AwaitingResponse bool `json:"awaitingResponse"`
	TypingVisible    bool `json:"typingVisible"`
	InputLocked      bool `json:"inputLocked"`
}

// UIState tracks visibility and the transient indicators of a widget.
type UIState struct {
	mu       sync.Mutex
	open     bool
	awaiting bool
	typing   bool
	locked   bool
}

// NewUIState returns a closed, idle state.
func NewUIState() *UIState {
	return &UIState{}
}

// Open shows the widget. It reports whether the state changed.
func (s *UIState) Open() bool {
	return s.setOpen(true)
}

// Close hides the widget. It reports whether the state changed.
func (s *UIState) Close() bool {
	return s.setOpen(false)
}

// Toggle flips visibility and returns the new value.
func (s *UIState) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	return s.open
}

func (s *UIState) setOpen(open bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open == open {
		return false
	}
	s.open = open
	return true
}

// BeginWaiting marks a request as in flight. The check and the transition
// happen atomically, so concurrent callers see exactly one success.
func (s *UIState) BeginWaiting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.awaiting {
		return ErrAlreadyWaiting
	}
	s.awaiting = true
	return nil
}

// EndWaiting clears the in-flight flag. Safe to call when idle.
func (s *UIState) EndWaiting() {
	s.mu.Lock()
	s.awaiting = false
	s.mu.Unlock()
}

// SetTyping shows or hides the typing indicator.
func (s *UIState) SetTyping(visible bool) {
	s.mu.Lock()
	s.typing = visible
	s.mu.Unlock()
}

// SetInputLocked disables or enables the send affordance.
func (s *UIState) SetInputLocked(locked bool) {
	s.mu.Lock()
	s.locked = locked
	s.mu.Unlock()
}

// IsOpen reports whether the widget is visible.
func (s *UIState) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// IsAwaitingResponse reports whether a request is in flight.
func (s *UIState) IsAwaitingResponse() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Snapshot copies the current state.
func (s *UIState) Snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateSnapshot{
		Open:             s.open,
		AwaitingResponse: s.awaiting,
		TypingVisible:    s.typing,
		InputLocked:      s.locked,
	}
}
