package csrf

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTokenRequired = errors.New("csrf token is required")
	ErrTokenMismatch = errors.New("csrf token mismatch")
)

// DefaultTokenTTL bounds how long an issued token stays valid.
const DefaultTokenTTL = 12 * time.Hour

type entry struct {
	token     string
	expiresAt time.Time
}

// Service issues per-client CSRF tokens for the double-submit handshake:
// GET /auth/csrf-token hands the token to the page, and every mutating
// backend call must echo it in the X-CSRF-Token header. Tokens are bound to
// an opaque client ID carried in a cookie, so the metadata-source calls (no
// credentials) are never affected.
type Service struct {
	mu     sync.Mutex
	tokens map[string]entry
	ttl    time.Duration
}

// NewService creates an in-memory CSRF token store.
func NewService(ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	svc := &Service{
		tokens: make(map[string]entry),
		ttl:    ttl,
	}
	go svc.cleanupLoop()
	return svc
}

// Issue returns the current token for the client, minting a fresh one when
// none exists or the previous one expired.
func (s *Service) Issue(clientID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.tokens[clientID]; ok && time.Now().Before(e.expiresAt) {
		return e.token
	}

	token := uuid.NewString()
	s.tokens[clientID] = entry{token: token, expiresAt: time.Now().Add(s.ttl)}
	return token
}

// Validate checks the echoed token against the one issued to the client.
func (s *Service) Validate(clientID, token string) error {
	if token == "" {
		return ErrTokenRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[clientID]
	if !ok || time.Now().After(e.expiresAt) || e.token != token {
		return ErrTokenMismatch
	}
	return nil
}

// cleanupLoop drops expired tokens.
func (s *Service) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for id, e := range s.tokens {
			if now.After(e.expiresAt) {
				delete(s.tokens, id)
			}
		}
		s.mu.Unlock()
	}
}
