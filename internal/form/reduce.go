package form

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/util"
	"github.com/shopspring/decimal"
)

// Reduce applies ev to s as of today. On a validation failure it returns s unchanged,
// no effects and the error.
func Reduce(s State, ev Event, today time.Time) (State, []Effect, error) {
	next := s.clone()

	switch ev := ev.(type) {
	case Login:
		if s.Stage != StageUnauthenticated {
			return s, nil, domain.ErrInvalidTransition
		}
		if strings.TrimSpace(ev.User) == "" || ev.Password == "" {
			return s, nil, fmt.Errorf("%w: user and password are required", domain.ErrInvalidInput)
		}
		return s, []Effect{Authenticate{User: ev.User, Password: ev.Password}}, nil

	case LoginSucceeded:
		next = NewState()
		next.Users = slices.Clone(s.Users)
		next.Stage = StageHeaderEntry
		next.Session = domain.Session{User: ev.User, Token: ev.Token}
		return next, []Effect{
			SaveSession{Session: next.Session},
			FetchOutstanding{Token: ev.Token},
			info("Logged in successfully"),
		}, nil

	case LoginFailed:
		if errors.Is(ev.Err, domain.ErrInvalidCredentials) {
			return s, []Effect{failure("Invalid credentials")}, nil
		}
		return s, []Effect{failure("Login failed")}, nil

	case LoadUsers:
		return s, []Effect{ListUsers{}}, nil

	case UsersLoaded:
		next.Users = slices.Clone(ev.Users)
		return next, nil, nil

	case UsersFailed:
		return s, []Effect{failure("Failed to load users")}, nil

	case SessionRestored:
		if !ev.Session.IsAuthenticated() || s.Stage != StageUnauthenticated {
			return s, nil, nil
		}
		next.Stage = StageHeaderEntry
		next.Session = ev.Session
		if ev.Session.Outstanding == nil {
			return next, []Effect{FetchOutstanding{Token: ev.Session.Token}}, nil
		}
		return next, nil, nil

	case RefreshOutstanding:
		if !s.Session.IsAuthenticated() {
			return s, nil, domain.ErrNotAuthenticated
		}
		return s, []Effect{FetchOutstanding{Token: s.Session.Token}}, nil

	case OutstandingLoaded:
		// Results fetched for an earlier session are dropped.
		if !isCurrentToken(s, ev.Token) {
			return s, nil, nil
		}
		next.Session.Outstanding = ev.Bills
		return next, []Effect{SaveSession{Session: next.Session}}, nil

	case OutstandingFailed:
		if !isCurrentToken(s, ev.Token) {
			return s, nil, nil
		}
		return s, []Effect{failure("Failed to load outstanding bills")}, nil

	case SetHeaderField:
		if err := requireStage(s, StageHeaderEntry); err != nil {
			return s, nil, err
		}
		if err := setHeaderField(&next, ev.Field, ev.Value); err != nil {
			return s, nil, err
		}
		next.SubmissionKey = ""
		return next, nil, nil

	case AddRow:
		if err := requireEditable(s); err != nil {
			return s, nil, err
		}
		if !domain.LastRowComplete(s.Rows) {
			return s, nil, domain.ErrIncompleteRow
		}
		next.Rows = append(next.Rows, domain.AllocationRow{})
		next.SubmissionKey = ""
		return next, nil, nil

	case UpdateRow:
		if err := requireEditable(s); err != nil {
			return s, nil, err
		}
		if ev.Index < 0 || ev.Index >= len(next.Rows) {
			return s, nil, domain.ErrRowIndexOutOfRange
		}
		switch ev.Field {
		case domain.RowFieldBillID:
			next.Rows[ev.Index].BillID = ev.Value
		case domain.RowFieldAmount:
			next.Rows[ev.Index].Amount = ev.Value
		default:
			return s, nil, fmt.Errorf("%w: %q", domain.ErrUnknownField, ev.Field)
		}
		next.SubmissionKey = ""
		return next, nil, nil

	case AdvanceToAllocation:
		if err := requireStage(s, StageHeaderEntry); err != nil {
			return s, nil, err
		}
		if !s.IsPaymentDateValid(today) {
			return s, nil, domain.ErrPaymentDateOutOfWindow
		}
		if s.Header.Party == "" {
			return s, nil, domain.ErrPartyRequired
		}
		next.Stage = StageAllocationEntry
		if len(next.Rows) == 0 {
			next.Rows = emptyRows()
		}
		return next, nil, nil

	case Back:
		if err := requireEditable(s); err != nil {
			return s, nil, err
		}
		next.Stage = StageHeaderEntry
		return next, nil, nil

	case Submit:
		if err := requireEditable(s); err != nil {
			return s, nil, err
		}
		// A retry of an unchanged form reuses the failed attempt's key.
		key := s.SubmissionKey
		if key == "" {
			key = ev.Key
		}
		if key == "" {
			return s, nil, fmt.Errorf("%w: submission key is required", domain.ErrInvalidInput)
		}
		pruned := domain.PruneEmptyRows(s.Rows)
		submission, err := domain.BuildSubmission(s.Header, pruned, s.Session.Outstanding)
		if err != nil {
			return s, nil, err
		}
		next.Rows = pruned
		next.Submitting = true
		next.SubmissionKey = key
		return next, []Effect{SubmitAllocation{
			Token:      s.Session.Token,
			Key:        key,
			Submission: *submission,
		}}, nil

	case SubmitSucceeded:
		if !isCurrentAttempt(s, ev.Key) {
			return s, nil, nil
		}
		next.Header = domain.DefaultPaymentHeader()
		next.Rows = emptyRows()
		next.Stage = StageHeaderEntry
		next.Submitting = false
		next.SubmissionKey = ""
		return next, []Effect{info("Payment submitted successfully")}, nil

	case SubmitFailed:
		if !isCurrentAttempt(s, ev.Key) {
			return s, nil, nil
		}
		next.Submitting = false
		return next, []Effect{failure("Failed to submit payment")}, nil

	case Logout:
		next = NewState()
		next.Users = slices.Clone(s.Users)
		return next, []Effect{ClearSession{}, info("Logged out")}, nil
	}

	return s, nil, fmt.Errorf("%w: unhandled event %T", domain.ErrInvalidTransition, ev)
}

func isCurrentToken(s State, token string) bool {
	return s.Session.IsAuthenticated() && token == s.Session.Token
}

// isCurrentAttempt reports whether a submit result belongs to the attempt still in flight
func isCurrentAttempt(s State, key string) bool {
	return s.Submitting && key != "" && key == s.SubmissionKey
}

func requireStage(s State, stage Stage) error {
	if s.Stage == StageUnauthenticated {
		return domain.ErrNotAuthenticated
	}
	if s.Stage != stage {
		return domain.ErrInvalidTransition
	}
	return nil
}

// requireEditable gates row edits and submission: allocation stage, nothing in flight
func requireEditable(s State) error {
	if err := requireStage(s, StageAllocationEntry); err != nil {
		return err
	}
	if s.Submitting {
		return domain.ErrSubmissionInFlight
	}
	return nil
}

func setHeaderField(s *State, field, value string) error {
	switch field {
	case domain.HeaderFieldParty:
		party := strings.TrimSpace(value)
		if party != s.Header.Party {
			s.Header.Party = party
			s.Rows = emptyRows()
		}
	case domain.HeaderFieldDeclaredTotal:
		if strings.TrimSpace(value) == "" {
			s.Header.DeclaredTotal = decimal.Zero
			return nil
		}
		total, err := domain.ParseAmount(value)
		if err != nil {
			return err
		}
		s.Header.DeclaredTotal = total
	case domain.HeaderFieldPaymentType:
		paymentType := domain.PaymentType(strings.ToLower(strings.TrimSpace(value)))
		if !paymentType.IsValid() {
			return domain.ErrInvalidPaymentType
		}
		s.Header.PaymentType = paymentType
	case domain.HeaderFieldPaymentDate:
		if strings.TrimSpace(value) == "" {
			s.Header.PaymentDate = time.Time{}
			return nil
		}
		date, err := util.ParseDate(value)
		if err != nil {
			return domain.ErrInvalidDate
		}
		s.Header.PaymentDate = date
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	return nil
}
