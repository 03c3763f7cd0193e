package auth

import "sync"

// Session is the application-wide identity holder: constructed once, read by
// anything that needs the current user, with explicit change subscriptions
// instead of ambient globals. A nil identity means signed out.
type Session struct {
	mu      sync.RWMutex
	current *Identity
	nextID  int
	subs    map[int]func(*Identity)
}

func NewSession() *Session {
	return &Session{subs: make(map[int]func(*Identity))}
}

func (s *Session) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the current identity and notifies subscribers. Pass nil on
// sign-out.
func (s *Session) Set(ident *Identity) {
	s.mu.Lock()
	s.current = ident
	handlers := make([]func(*Identity), 0, len(s.subs))
	for _, h := range s.subs {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(ident)
	}
}

// Subscribe registers a change handler and returns its release function.
func (s *Session) Subscribe(handler func(*Identity)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
