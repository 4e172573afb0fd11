package form

import "github.com/dafibh/paydesk/paydesk-client/internal/domain"

// Effect is work Reduce asks the caller to perform
type Effect interface {
	effect()
}

// NoticeLevel classifies a user-facing message
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

type (
	Authenticate struct {
		User     string
		Password string
	}
	ListUsers        struct{}
	FetchOutstanding struct{ Token string }
	SubmitAllocation struct {
		Token      string
		Key        string
		Submission domain.Submission
	}
	SaveSession  struct{ Session domain.Session }
	ClearSession struct{}
	// Notify surfaces a message to the user
	Notify struct {
		Level   NoticeLevel `json:"level"`
		Message string      `json:"message"`
	}
)

func (Authenticate) effect()     {}
func (ListUsers) effect()        {}
func (FetchOutstanding) effect() {}
func (SubmitAllocation) effect() {}
func (SaveSession) effect()      {}
func (ClearSession) effect()     {}
func (Notify) effect()           {}

func info(msg string) Notify {
	return Notify{Level: NoticeInfo, Message: msg}
}

func failure(msg string) Notify {
	return Notify{Level: NoticeError, Message: msg}
}
