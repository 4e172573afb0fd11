package testutil

import (
	"context"
	"sync"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
)

// SubmitCall records one SubmitAllocation invocation
type SubmitCall struct {
	Token          string
	Submission     domain.Submission
	IdempotencyKey string
}

// MockBackend is a mock implementation of domain.Backend
type MockBackend struct {
	mu sync.Mutex

	// Credentials maps user to password; a match returns Tokens[user]
	Credentials map[string]string
	Tokens      map[string]string
	Users       []string
	Outstanding domain.OutstandingBills

	AuthenticateFn     func(ctx context.Context, user, password string) (string, error)
	ListUsersFn        func(ctx context.Context) ([]string, error)
	FetchOutstandingFn func(ctx context.Context, token string) (domain.OutstandingBills, error)
	SubmitAllocationFn func(ctx context.Context, token string, submission domain.Submission, idempotencyKey string) error

	FetchCalls  int
	SubmitCalls []SubmitCall
}

// NewMockBackend creates a new MockBackend
func NewMockBackend() *MockBackend {
	return &MockBackend{
		Credentials: make(map[string]string),
		Tokens:      make(map[string]string),
		Outstanding: domain.OutstandingBills{},
	}
}

// AddUser registers a user that can log in with password and receives token
func (m *MockBackend) AddUser(user, password, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Credentials[user] = password
	m.Tokens[user] = token
	m.Users = append(m.Users, user)
}

// SetOutstanding replaces the bills returned by FetchOutstanding
func (m *MockBackend) SetOutstanding(bills domain.OutstandingBills) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Outstanding = bills
}

// Authenticate checks the registered credentials
func (m *MockBackend) Authenticate(ctx context.Context, user, password string) (string, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, user, password)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if pw, ok := m.Credentials[user]; ok && pw == password {
		return m.Tokens[user], nil
	}
	return "", domain.ErrInvalidCredentials
}

// ListUsers returns the registered users
func (m *MockBackend) ListUsers(ctx context.Context) ([]string, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Users...), nil
}

// FetchOutstanding returns the configured bills and counts the call
func (m *MockBackend) FetchOutstanding(ctx context.Context, token string) (domain.OutstandingBills, error) {
	m.mu.Lock()
	m.FetchCalls++
	m.mu.Unlock()
	if m.FetchOutstandingFn != nil {
		return m.FetchOutstandingFn(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bills := make(domain.OutstandingBills, len(m.Outstanding))
	for party, ids := range m.Outstanding {
		bills[party] = append([]string(nil), ids...)
	}
	return bills, nil
}

// SubmitAllocation records the call
func (m *MockBackend) SubmitAllocation(ctx context.Context, token string, submission domain.Submission, idempotencyKey string) error {
	m.mu.Lock()
	m.SubmitCalls = append(m.SubmitCalls, SubmitCall{Token: token, Submission: submission, IdempotencyKey: idempotencyKey})
	m.mu.Unlock()
	if m.SubmitAllocationFn != nil {
		return m.SubmitAllocationFn(ctx, token, submission, idempotencyKey)
	}
	return nil
}

// Submits returns a copy of the recorded submissions
func (m *MockBackend) Submits() []SubmitCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SubmitCall(nil), m.SubmitCalls...)
}

// Fetches returns how many times outstanding bills were fetched
func (m *MockBackend) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchCalls
}

// MockSessionStore is a mock implementation of domain.SessionStore
type MockSessionStore struct {
	mu      sync.Mutex
	Session domain.Session

	LoadFn  func(ctx context.Context) (domain.Session, error)
	SaveFn  func(ctx context.Context, session domain.Session) error
	ClearFn func(ctx context.Context) error

	SaveCount  int
	ClearCount int
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

// Load returns the stored session
func (m *MockSessionStore) Load(ctx context.Context) (domain.Session, error) {
	if m.LoadFn != nil {
		return m.LoadFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Session, nil
}

// Save stores the session
func (m *MockSessionStore) Save(ctx context.Context, session domain.Session) error {
	m.mu.Lock()
	m.SaveCount++
	m.mu.Unlock()
	if m.SaveFn != nil {
		return m.SaveFn(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = session
	return nil
}

// Clear empties the store
func (m *MockSessionStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.ClearCount++
	m.mu.Unlock()
	if m.ClearFn != nil {
		return m.ClearFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = domain.Session{}
	return nil
}

// Stored returns the stored session
func (m *MockSessionStore) Stored() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Session
}
