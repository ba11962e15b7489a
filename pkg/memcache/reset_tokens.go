package mem

import (
	"sync"
	"time"
)

type ResetTokenStore interface {
	Set(token string, accountEmail string, ttl time.Duration)

	// Consume returns the account email for token if not expired, and
	// removes the token (single-use). Returns "" if missing/expired.
	Consume(token string) string
}

type entry struct {
	email     string
	expiresAt time.Time
}

type ResetTokens struct {
	mu   sync.RWMutex
	data map[string]entry
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{data: make(map[string]entry)}
}

func (r *ResetTokens) Set(token string, accountEmail string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[token] = entry{email: accountEmail, expiresAt: time.Now().Add(ttl)}
}

func (r *ResetTokens) Consume(token string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.data[token]
	if !ok {
		return ""
	}
	delete(r.data, token)

	if time.Now().After(e.expiresAt) {
		return ""
	}
	return e.email
}
