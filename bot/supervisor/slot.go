package supervisor

import (
	"sync"

	"gocv.io/x/gocv"
)

// Frame is one captured image with its capture sequence number. Ownership
// of the Mat transfers to whoever holds the Frame.
type Frame struct {
	Mat gocv.Mat
	Seq uint64
}

// Slot is a single-entry mailbox between the capture goroutine and the
// control loop. Publishing into an occupied slot overwrites: the control
// loop always analyzes the freshest frame, stale ones are released and
// counted as drops rather than queued.
//
// Single producer, single consumer. Publish never blocks; Take blocks
// until a frame arrives or the slot is closed.
type Slot struct {
	mu   sync.Mutex
	cond *sync.Cond

	frame    Frame
	occupied bool
	seq      uint64

	drops  uint64
	closed bool
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	s := &Slot{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Publish hands a frame to the slot. A still-unconsumed previous frame is
// released and counted as dropped. Publishing after Close releases the
// frame and does nothing else.
func (s *Slot) Publish(mat gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		mat.Close()
		return
	}

	if s.occupied {
		s.frame.Mat.Close()
		s.drops++
	}

	s.seq++
	s.frame = Frame{Mat: mat, Seq: s.seq}
	s.occupied = true
	s.cond.Signal()
}

// Take blocks until a frame is available and consumes it. The second
// return is false once the slot is closed and drained; the caller should
// stop.
func (s *Slot) Take() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.occupied && !s.closed {
		s.cond.Wait()
	}

	if !s.occupied {
		return Frame{}, false
	}

	frame := s.frame
	s.frame = Frame{}
	s.occupied = false
	return frame, true
}

// Drops reports how many published frames were overwritten unconsumed.
func (s *Slot) Drops() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drops
}

// Close releases any pending frame and unblocks Take. A frame still
// pending counts as dropped: every published frame is either consumed or
// in the drop count. Idempotent.
func (s *Slot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.occupied {
		s.frame.Mat.Close()
		s.frame = Frame{}
		s.occupied = false
		s.drops++
	}
	s.cond.Broadcast()
}
