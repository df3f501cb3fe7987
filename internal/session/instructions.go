package session

import "sync/atomic"

// InstructionSlot is the single mutable seam between the context-assembly
// core and the realtime session subsystem: one slot holding the current
// system instructions, replaced wholesale on Set and read once per new
// session. Safe for one writer and many concurrent readers; a reader never
// observes a torn value because the slot swaps an immutable string pointer.
type InstructionSlot struct {
	current atomic.Pointer[string]
}

func NewInstructionSlot() *InstructionSlot {
	return &InstructionSlot{}
}

// Set replaces the held instructions. Last write wins; there is no history
// and no notification to already-open sessions.
func (s *InstructionSlot) Set(instructions string) {
	s.current.Store(&instructions)
}

// Current returns the most recently set instructions, and false if Set has
// never been called.
func (s *InstructionSlot) Current() (string, bool) {
	p := s.current.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}
