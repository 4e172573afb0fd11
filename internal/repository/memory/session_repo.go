package memory

import (
	"context"
	"sync"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
)

// Ensure SessionRepository implements domain.SessionStore
var _ domain.SessionStore = (*SessionRepository)(nil)

// SessionRepository keeps the session in process memory; nothing survives a restart
type SessionRepository struct {
	mu      sync.RWMutex
	session domain.Session
}

// NewSessionRepository creates an empty in-memory session store
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// Load returns the stored session
func (r *SessionRepository) Load(ctx context.Context) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session, nil
}

// Save replaces the stored session
func (r *SessionRepository) Save(ctx context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = session
	return nil
}

// Clear forgets the stored session
func (r *SessionRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = domain.Session{}
	return nil
}
