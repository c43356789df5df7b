package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/frahmantamala/teamchat/internal/core/account"
)

// Session is one authenticated connection. The room fields are owned by the Hub
// and only read or written under its lock.
type Session struct {
	ID        string
	AccountID int64
	Name      string
	CompanyID int64

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	groupID int64
	room    string
}

func NewSession(a *account.Account, buffer int) *Session {
	if buffer <= 0 {
		buffer = 1
	}
	return &Session{
		ID:        uuid.NewString(),
		AccountID: a.ID,
		Name:      a.Name,
		CompanyID: a.CompanyID,
		send:      make(chan []byte, buffer),
		done:      make(chan struct{}),
	}
}

// Outbound is drained by the connection writer.
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

// Done is closed once the session must stop.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// enqueue never blocks. It reports false when the queue is full or the session is closed.
func (s *Session) enqueue(frame []byte) bool {
	if s.Closed() {
		return false
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}
