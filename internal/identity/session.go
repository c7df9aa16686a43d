package identity

import "sync"

// Session tracks the signed-in user of a client. Subscribers are notified with
// the current state when they subscribe and after every sign-in or sign-out.
// A nil *AuthResult means signed out.
type Session struct {
	mu        sync.Mutex
	current   *AuthResult
	listeners map[int]func(*AuthResult)
	nextID    int
	closed    bool
}

// NewSession starts a session, optionally already signed in.
func NewSession(initial *AuthResult) *Session {
	return &Session{current: initial, listeners: make(map[int]func(*AuthResult))}
}

// Current returns the signed-in state or nil.
func (s *Session) Current() *AuthResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn and calls it once with the current state. The returned
// function removes the subscription and is safe to call more than once.
func (s *Session) Subscribe(fn func(*AuthResult)) (unsubscribe func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SignedIn records a successful sign-in.
func (s *Session) SignedIn(result *AuthResult) {
	s.set(result)
}

// SignedOut clears the session.
func (s *Session) SignedOut() {
	s.set(nil)
}

func (s *Session) set(result *AuthResult) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.current = result
	fns := make([]func(*AuthResult), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(result)
	}
}

// Close drops every subscriber. Later state changes are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = map[int]func(*AuthResult){}
}
