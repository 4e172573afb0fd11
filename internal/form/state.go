// Package form implements the allocation form controller as a pure state machine.
// Reduce takes the current state and an event and returns the next state and the
// effects a caller must run; it never performs I/O.
package form

import (
	"slices"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/shopspring/decimal"
)

// Stage is the position of the form in its lifecycle
type Stage string

const (
	StageUnauthenticated Stage = "unauthenticated"
	StageHeaderEntry     Stage = "header_entry"
	StageAllocationEntry Stage = "allocation_entry"
)

// State is everything the form holds in memory
type State struct {
	Stage      Stage
	Session    domain.Session
	Users      []string
	Header     domain.PaymentHeader
	Rows       []domain.AllocationRow
	Submitting bool
	// SubmissionKey is the idempotency key of the last attempt. It survives a failed
	// attempt so a retry of the same form reuses it, and is dropped on any edit.
	SubmissionKey string
}

// NewState returns the logged-out state
func NewState() State {
	return State{
		Stage:  StageUnauthenticated,
		Header: domain.DefaultPaymentHeader(),
		Rows:   emptyRows(),
	}
}

func emptyRows() []domain.AllocationRow {
	return []domain.AllocationRow{{}}
}

// clone copies the slices so a returned state never aliases its input.
// The outstanding map is read-only once fetched and is shared.
func (s State) clone() State {
	s.Users = slices.Clone(s.Users)
	s.Rows = slices.Clone(s.Rows)
	return s
}

// BillOptions returns the bills that may be picked for the selected party
func (s State) BillOptions() []string {
	if s.Header.Party == "" {
		return nil
	}
	return slices.Clone(s.Session.Outstanding[s.Header.Party])
}

// Parties returns the parties with outstanding bills, sorted
func (s State) Parties() []string {
	parties := s.Session.Outstanding.Parties()
	slices.Sort(parties)
	return parties
}

// CurrentTotal sums the entered row amounts
func (s State) CurrentTotal() decimal.Decimal {
	return domain.ComputeCurrentTotal(s.Rows)
}

// IsTotalReconciled reports whether the rows add up to the declared total within tolerance
func (s State) IsTotalReconciled() bool {
	return domain.IsTotalReconciled(s.CurrentTotal(), s.Header.DeclaredTotal)
}

// IsPaymentDateValid reports whether the header date lies in the allowed window
func (s State) IsPaymentDateValid(today time.Time) bool {
	return domain.IsPaymentDateValid(s.Header.PaymentDate, today)
}

// Summary carries the values derived from a state for display
type Summary struct {
	CurrentTotal     decimal.Decimal
	Difference       decimal.Decimal
	Reconciled       bool
	PaymentDateValid bool
	CanAddRow        bool
	Parties          []string
	BillOptions      []string
}

// Summarize derives the display signals of s as of today
func (s State) Summarize(today time.Time) Summary {
	total := s.CurrentTotal()
	return Summary{
		CurrentTotal:     total,
		Difference:       s.Header.DeclaredTotal.Sub(total),
		Reconciled:       domain.IsTotalReconciled(total, s.Header.DeclaredTotal),
		PaymentDateValid: s.IsPaymentDateValid(today),
		CanAddRow:        domain.LastRowComplete(s.Rows),
		Parties:          s.Parties(),
		BillOptions:      s.BillOptions(),
	}
}
