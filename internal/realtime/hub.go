package realtime

import "sync"

// Hub tracks live sessions and room membership. A session is in at most one room.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	rooms     map[string]map[string]*Session
	byAccount map[int64]map[string]*Session

	// onSlow is called, outside the lock, for sessions dropped because their queue was full.
	onSlow func(*Session)
}

func NewHub() *Hub {
	return &Hub{
		sessions:  make(map[string]*Session),
		rooms:     make(map[string]map[string]*Session),
		byAccount: make(map[int64]map[string]*Session),
	}
}

func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.ID] = s
	if h.byAccount[s.AccountID] == nil {
		h.byAccount[s.AccountID] = make(map[string]*Session)
	}
	h.byAccount[s.AccountID][s.ID] = s
}

// Remove drops the session and its room membership.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	h.leaveLocked(s)
	delete(h.sessions, s.ID)
	if peers := h.byAccount[s.AccountID]; peers != nil {
		delete(peers, s.ID)
		if len(peers) == 0 {
			delete(h.byAccount, s.AccountID)
		}
	}
}

// Join moves s into the room of groupID, leaving any previous room in the same
// critical section. It returns false if s is no longer registered.
func (h *Hub) Join(s *Session, groupID int64) bool {
	room := RoomName(groupID)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[s.ID]; !ok {
		return false
	}
	h.leaveLocked(s)
	s.groupID = groupID
	s.room = room
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Session)
	}
	h.rooms[room][s.ID] = s
	return true
}

func (h *Hub) leaveLocked(s *Session) {
	if s.room == "" {
		return
	}
	if members := h.rooms[s.room]; members != nil {
		delete(members, s.ID)
		if len(members) == 0 {
			delete(h.rooms, s.room)
		}
	}
	s.groupID = 0
	s.room = ""
}

// LeaveIf removes s from its room only while that room is still groupID's.
func (h *Hub) LeaveIf(s *Session, groupID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.room == "" || s.groupID != groupID {
		return false
	}
	h.leaveLocked(s)
	return true
}

// Current returns the group the session has joined.
func (h *Hub) Current(s *Session) (int64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return s.groupID, s.room != ""
}

// Broadcast enqueues frame for every member of room except the session with id except.
// Members whose queue is full are closed.
func (h *Hub) Broadcast(room string, frame []byte, except string) int {
	h.mu.RLock()
	members := make([]*Session, 0, len(h.rooms[room]))
	for id, s := range h.rooms[room] {
		if id != except {
			members = append(members, s)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range members {
		if h.deliver(s, frame) {
			delivered++
		}
	}
	return delivered
}

// Send enqueues frame for a single session.
func (h *Hub) Send(s *Session, frame []byte) bool {
	return h.deliver(s, frame)
}

func (h *Hub) deliver(s *Session, frame []byte) bool {
	if s.enqueue(frame) {
		return true
	}
	if !s.Closed() {
		s.Close()
		if h.onSlow != nil {
			h.onSlow(s)
		}
	}
	return false
}

// SessionsOf returns the live sessions of an account.
func (h *Hub) SessionsOf(accountID int64) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Session, 0, len(h.byAccount[accountID]))
	for _, s := range h.byAccount[accountID] {
		out = append(out, s)
	}
	return out
}

// Members returns the session ids in room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
