package credential

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Store keeps email -> password verifier. Passwords are never stored; the
// verifier is a salted bcrypt hash and authentication recomputes the match.
type Store struct {
	mu    sync.RWMutex
	users map[string]string
}

func NewStore() *Store {
	return &Store{users: make(map[string]string)}
}

// Register stores a verifier for the email and returns true. It returns
// false, with no side effect, when the email is already registered.
func (s *Store) Register(email, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return false
	}
	verifier, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false
	}
	s.users[email] = string(verifier)
	return true
}

// Authenticate reports whether the email is registered with a matching
// password. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *Store) Authenticate(email, password string) bool {
	s.mu.RLock()
	verifier, ok := s.users[email]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(password)) == nil
}
