package form

import (
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/dafibh/paydesk/paydesk-client/internal/util"
)

// HeaderView is the payment header as shown to the user
type HeaderView struct {
	Party         string             `json:"party"`
	DeclaredTotal string             `json:"declaredTotal"`
	PaymentType   domain.PaymentType `json:"paymentType"`
	PaymentDate   string             `json:"paymentDate"`
}

// SummaryView carries the derived signals with amounts rendered to two places
type SummaryView struct {
	CurrentTotal     string   `json:"currentTotal"`
	Difference       string   `json:"difference"`
	Reconciled       bool     `json:"reconciled"`
	PaymentDateValid bool     `json:"paymentDateValid"`
	CanAddRow        bool     `json:"canAddRow"`
	Parties          []string `json:"parties"`
	BillOptions      []string `json:"billOptions"`
}

// View is the read model of the form served to front-ends
type View struct {
	Stage      Stage                  `json:"stage"`
	User       string                 `json:"user,omitempty"`
	Users      []string               `json:"users"`
	Header     HeaderView             `json:"header"`
	Rows       []domain.AllocationRow `json:"rows"`
	Submitting bool                   `json:"submitting"`
	Summary    SummaryView            `json:"summary"`
}

// View renders s as of today
func (s State) View(today time.Time) View {
	summary := s.Summarize(today)
	users := s.Users
	if users == nil {
		users = []string{}
	}
	return View{
		Stage: s.Stage,
		User:  s.Session.User,
		Users: users,
		Header: HeaderView{
			Party:         s.Header.Party,
			DeclaredTotal: s.Header.DeclaredTotal.StringFixed(2),
			PaymentType:   s.Header.PaymentType,
			PaymentDate:   util.FormatDate(s.Header.PaymentDate),
		},
		Rows:       s.clone().Rows,
		Submitting: s.Submitting,
		Summary: SummaryView{
			CurrentTotal:     summary.CurrentTotal.StringFixed(2),
			Difference:       summary.Difference.StringFixed(2),
			Reconciled:       summary.Reconciled,
			PaymentDateValid: summary.PaymentDateValid,
			CanAddRow:        summary.CanAddRow,
			Parties:          summary.Parties,
			BillOptions:      summary.BillOptions,
		},
	}
}
