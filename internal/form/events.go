package form

import "github.com/dafibh/paydesk/paydesk-client/internal/domain"

// Event is an input to Reduce
type Event interface {
	event()
}

// User actions
type (
	Login struct {
		User     string
		Password string
	}
	LoadUsers          struct{}
	RefreshOutstanding struct{}
	SetHeaderField     struct {
		Field string
		Value string
	}
	AddRow    struct{}
	UpdateRow struct {
		Index int
		Field string
		Value string
	}
	AdvanceToAllocation struct{}
	Back                struct{}

	// Submit carries a fresh idempotency key, used unless a failed attempt left one to retry with
	Submit struct{ Key string }
	Logout struct{}
)

// Results of effects
type (
	LoginSucceeded struct {
		User  string
		Token string
	}
	LoginFailed struct{ Err error }
	UsersLoaded struct{ Users []string }
	UsersFailed struct{ Err error }

	// SessionRestored carries a session loaded from the store at startup
	SessionRestored struct{ Session domain.Session }

	// Outstanding results name the token they were fetched with
	OutstandingLoaded struct {
		Token string
		Bills domain.OutstandingBills
	}
	OutstandingFailed struct {
		Token string
		Err   error
	}

	// Submit results name the attempt by its idempotency key
	SubmitSucceeded struct{ Key string }
	SubmitFailed    struct {
		Key string
		Err error
	}
)

func (Login) event()               {}
func (LoadUsers) event()           {}
func (RefreshOutstanding) event()  {}
func (SetHeaderField) event()      {}
func (AddRow) event()              {}
func (UpdateRow) event()           {}
func (AdvanceToAllocation) event() {}
func (Back) event()                {}
func (Submit) event()              {}
func (Logout) event()              {}
func (LoginSucceeded) event()      {}
func (LoginFailed) event()         {}
func (UsersLoaded) event()         {}
func (UsersFailed) event()         {}
func (SessionRestored) event()     {}
func (OutstandingLoaded) event()   {}
func (OutstandingFailed) event()   {}
func (SubmitSucceeded) event()     {}
func (SubmitFailed) event()        {}
