package domain

import "context"

// Session is the state kept across restarts for a logged-in user
type Session struct {
	User        string           `json:"user"`
	Token       string           `json:"token"`
	Outstanding OutstandingBills `json:"outstanding,omitempty"`
}

// IsAuthenticated reports whether the session carries a token
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// SessionStore persists the session on the local machine
type SessionStore interface {
	// Load returns the stored session, or an empty one if nothing is stored
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}
