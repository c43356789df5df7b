package message

import "sync"

// sequencer hands out one mutex per group so persist and fan-out of a send
// happen in the same order for every member. Different groups never contend.
type sequencer struct {
	mu    sync.Mutex
	locks map[int64]*groupLock
}

type groupLock struct {
	mu   sync.Mutex
	refs int
}

func newSequencer() *sequencer {
	return &sequencer{locks: make(map[int64]*groupLock)}
}

func (s *sequencer) lock(groupID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[groupID]
	if !ok {
		l = &groupLock{}
		s.locks[groupID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, groupID)
		}
		s.mu.Unlock()
	}
}
