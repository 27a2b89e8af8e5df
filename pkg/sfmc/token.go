package sfmc

import (
	"sync"
	"time"
)

// tokenExpirySkew is subtracted from the nominal expiry when checking
// validity, so a token close to expiration is refreshed before the server
// starts rejecting it.
const tokenExpirySkew = 60 * time.Second

// Token is an OAuth access token together with its computed expiry. Tokens
// are never persisted across process restarts.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// tokenStore holds the current access token with thread-safe access. Each
// client instance owns its own store.
type tokenStore struct {
	mu    sync.RWMutex
	token Token
}

// set installs a token obtained from the authenticator, replacing any
// previous one.
func (s *tokenStore) set(tok Token) {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// get returns the current token and whether it is still usable.
func (s *tokenStore) get() (Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.validLocked()
}

func (s *tokenStore) isValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

func (s *tokenStore) validLocked() bool {
	return s.token.AccessToken != "" && time.Until(s.token.ExpiresAt) > tokenExpirySkew
}

// invalidate drops the current token, forcing the next authenticated request
// to re-authenticate.
func (s *tokenStore) invalidate() {
	s.mu.Lock()
	s.token = Token{}
	s.mu.Unlock()
}
