package domain

import "errors"

// Domain errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidTransition  = errors.New("action not allowed in current stage")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Backend collaborator
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendRejected    = errors.New("backend rejected request")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrSubmissionFailed   = errors.New("submission failed")

	// Header and row validation
	ErrUnknownField           = errors.New("unknown field")
	ErrInvalidAmount          = errors.New("amount must be a decimal number")
	ErrInvalidPaymentType     = errors.New("payment type must be cheque or neft")
	ErrInvalidDate            = errors.New("date must be formatted YYYY-MM-DD")
	ErrPartyRequired          = errors.New("party is required")
	ErrPaymentDateOutOfWindow = errors.New("payment date must be between today and 7 days ahead")
	ErrRowIndexOutOfRange     = errors.New("row index out of range")
	ErrIncompleteRow          = errors.New("last row is incomplete")

	// Submission
	ErrNoAllocationRows   = errors.New("at least one allocation row is required")
	ErrBillNotOutstanding = errors.New("bill is not outstanding for party")
	ErrTotalNotReconciled = errors.New("allocated total does not match declared total")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
)
