package domain

import "context"

// Backend is the remote service that owns users, bills and payments
type Backend interface {
	Authenticate(ctx context.Context, user, password string) (token string, err error)
	ListUsers(ctx context.Context) ([]string, error)
	FetchOutstanding(ctx context.Context, token string) (OutstandingBills, error)
	// SubmitAllocation posts a finalized allocation; idempotencyKey identifies the attempt
	SubmitAllocation(ctx context.Context, token string, submission Submission, idempotencyKey string) error
}
