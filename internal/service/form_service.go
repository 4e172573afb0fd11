package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/form"
	"github.com/dafibh/paydesk/paydesk-client/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// FormService owns the live allocation form. It applies events through form.Reduce
// and runs the resulting effects against the backend and the session store.
type FormService struct {
	backend        domain.Backend
	store          domain.SessionStore
	eventPublisher websocket.EventPublisher

	mu    sync.Mutex
	state form.State

	fetchGroup singleflight.Group
	now        func() time.Time
	newKey     func() string
}

// NewFormService creates a FormService in the logged-out state
func NewFormService(backend domain.Backend, store domain.SessionStore) *FormService {
	return &FormService{
		backend: backend,
		store:   store,
		state:   form.NewState(),
		now:     time.Now,
		newKey:  uuid.NewString,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *FormService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the source of the current time
func (s *FormService) SetClock(now func() time.Time) {
	s.now = now
}

// State returns a snapshot of the form
func (s *FormService) State() form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns the read model of the form as of now
func (s *FormService) View() form.View {
	return s.State().View(s.now())
}

// CurrentUser returns the logged-in user, if any
func (s *FormService) CurrentUser() (string, bool) {
	state := s.State()
	if !state.Session.IsAuthenticated() {
		return "", false
	}
	return state.Session.User, true
}

// Restore resumes a session persisted by a previous run
func (s *FormService) Restore(ctx context.Context) error {
	session, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !session.IsAuthenticated() {
		return nil
	}
	log.Info().
		Str("user", session.User).
		Bool("cached_bills", session.Outstanding != nil).
		Msg("Restoring session")
	_, err = s.Dispatch(ctx, form.SessionRestored{Session: session})
	return err
}

// Dispatch applies ev and every event its effects produce, returning the resulting
// state. A validation failure of ev is returned untouched; otherwise the first effect
// failure is returned after its follow-up event has been applied.
func (s *FormService) Dispatch(ctx context.Context, ev form.Event) (form.State, error) {
	if submit, ok := ev.(form.Submit); ok && submit.Key == "" {
		submit.Key = s.newKey()
		ev = submit
	}
	effects, err := s.apply(ev)
	if err != nil {
		log.Debug().Err(err).Str("event", eventName(ev)).Msg("Event rejected")
		return s.State(), err
	}

	var firstErr error
	pending := effects
	for len(pending) > 0 {
		effect := pending[0]
		pending = pending[1:]

		followUp, err := s.run(ctx, effect)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if followUp == nil {
			continue
		}
		more, err := s.apply(followUp)
		if err != nil {
			log.Error().Err(err).Str("event", eventName(followUp)).Msg("Follow-up event rejected")
			continue
		}
		pending = append(pending, more...)
	}

	return s.State(), firstErr
}

// apply runs the reducer under the lock and publishes the change
func (s *FormService) apply(ev form.Event) ([]form.Effect, error) {
	s.mu.Lock()
	before := s.state
	next, effects, err := form.Reduce(before, ev, s.now())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.state = next
	s.mu.Unlock()

	s.publishTransition(ev, before, next)
	return effects, nil
}

// run executes one effect. It returns the event reporting the outcome, if any.
func (s *FormService) run(ctx context.Context, effect form.Effect) (form.Event, error) {
	switch eff := effect.(type) {
	case form.Authenticate:
		token, err := s.backend.Authenticate(ctx, eff.User, eff.Password)
		if err != nil {
			log.Warn().Err(err).Str("user", eff.User).Msg("Login failed")
			return form.LoginFailed{Err: err}, err
		}
		log.Info().Str("user", eff.User).Msg("Logged in")
		return form.LoginSucceeded{User: eff.User, Token: token}, nil

	case form.ListUsers:
		users, err := s.backend.ListUsers(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list users")
			return form.UsersFailed{Err: err}, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
		}
		return form.UsersLoaded{Users: users}, nil

	case form.FetchOutstanding:
		result, err, shared := s.fetchGroup.Do(eff.Token, func() (interface{}, error) {
			return s.backend.FetchOutstanding(ctx, eff.Token)
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to fetch outstanding bills")
			return form.OutstandingFailed{Token: eff.Token, Err: err}, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
		}
		bills := result.(domain.OutstandingBills)
		log.Info().Int("parties", len(bills)).Bool("shared", shared).Msg("Fetched outstanding bills")
		return form.OutstandingLoaded{Token: eff.Token, Bills: bills}, nil

	case form.SubmitAllocation:
		logger := log.With().
			Str("party", eff.Submission.Party).
			Int("rows", len(eff.Submission.Rows)).
			Str("idempotency_key", eff.Key).
			Logger()
		if err := s.backend.SubmitAllocation(ctx, eff.Token, eff.Submission, eff.Key); err != nil {
			logger.Error().Err(err).Msg("Failed to submit allocation")
			return form.SubmitFailed{Key: eff.Key, Err: err}, fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
		}
		logger.Info().Str("total", eff.Submission.DeclaredTotal.StringFixed(2)).Msg("Submitted allocation")
		s.publish(s.userOf(eff.Token), websocket.FormSubmitted(eff.Submission))
		return form.SubmitSucceeded{Key: eff.Key}, nil

	case form.SaveSession:
		if err := s.store.Save(ctx, eff.Session); err != nil {
			log.Error().Err(err).Msg("Failed to persist session")
		}
		return nil, nil

	case form.ClearSession:
		if err := s.store.Clear(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to clear persisted session")
		}
		return nil, nil

	case form.Notify:
		level := zerolog.InfoLevel
		if eff.Level == form.NoticeError {
			level = zerolog.WarnLevel
		}
		log.WithLevel(level).Str("notice", string(eff.Level)).Msg(eff.Message)
		s.publish(s.State().Session.User, websocket.NoticeRaised(eff))
		return nil, nil
	}

	return nil, fmt.Errorf("%w: unhandled effect %T", domain.ErrInvalidTransition, effect)
}

func (s *FormService) publishTransition(ev form.Event, before, after form.State) {
	if s.eventPublisher == nil {
		return
	}
	today := s.now()

	switch ev.(type) {
	case form.LoginSucceeded:
		s.publish(after.Session.User, websocket.SessionLoggedIn(after.View(today)))
		return
	case form.Logout:
		if before.Session.User != "" {
			s.publish(before.Session.User, websocket.SessionLoggedOut(map[string]string{"user": before.Session.User}))
		}
		return
	}

	s.publish(after.Session.User, websocket.FormUpdated(after.View(today)))
}

// publish sends a WebSocket event if a publisher is configured and a user is known
func (s *FormService) publish(user string, event websocket.Event) {
	if s.eventPublisher != nil && user != "" {
		s.eventPublisher.Publish(user, event)
	}
}

func (s *FormService) userOf(token string) string {
	state := s.State()
	if state.Session.Token == token {
		return state.Session.User
	}
	return ""
}

func eventName(ev form.Event) string {
	return fmt.Sprintf("%T", ev)
}

// IsValidationError reports whether err came from rejecting input rather than from
// the backend or the store
func IsValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidInput,
		domain.ErrUnknownField,
		domain.ErrInvalidAmount,
		domain.ErrInvalidPaymentType,
		domain.ErrInvalidDate,
		domain.ErrPartyRequired,
		domain.ErrPaymentDateOutOfWindow,
		domain.ErrRowIndexOutOfRange,
		domain.ErrIncompleteRow,
		domain.ErrNoAllocationRows,
		domain.ErrBillNotOutstanding,
		domain.ErrTotalNotReconciled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
