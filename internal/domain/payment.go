package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is the instrument a payment arrives on
type PaymentType string

const (
	PaymentTypeCheque PaymentType = "cheque"
	PaymentTypeNEFT   PaymentType = "neft"
)

// IsValid reports whether t is a supported payment type
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeCheque || t == PaymentTypeNEFT
}

// Header fields accepted by SetHeaderField
const (
	HeaderFieldParty         = "party"
	HeaderFieldDeclaredTotal = "declaredTotal"
	HeaderFieldPaymentType   = "paymentType"
	HeaderFieldPaymentDate   = "paymentDate"
)

// Row fields accepted by UpdateRow
const (
	RowFieldBillID = "billId"
	RowFieldAmount = "amount"
)

// OutstandingBills maps a party to the bill identifiers still open against it
type OutstandingBills map[string][]string

// Parties returns the party keys of the map in no particular order
func (o OutstandingBills) Parties() []string {
	parties := make([]string, 0, len(o))
	for party := range o {
		parties = append(parties, party)
	}
	return parties
}

// HasBill reports whether billID is outstanding for party
func (o OutstandingBills) HasBill(party, billID string) bool {
	for _, id := range o[party] {
		if id == billID {
			return true
		}
	}
	return false
}

// PaymentHeader describes the payment being allocated
type PaymentHeader struct {
	Party         string          `json:"party"`
	DeclaredTotal decimal.Decimal `json:"declaredTotal"`
	PaymentType   PaymentType     `json:"paymentType"`
	PaymentDate   time.Time       `json:"paymentDate"`
}

// DefaultPaymentHeader returns an empty header with the cheque payment type selected
func DefaultPaymentHeader() PaymentHeader {
	return PaymentHeader{
		DeclaredTotal: decimal.Zero,
		PaymentType:   PaymentTypeCheque,
	}
}

// AllocationRow pairs a bill with the part of the payment settling it.
// Amount holds the text as entered so blank and malformed input can be told apart.
type AllocationRow struct {
	BillID string `json:"billId"`
	Amount string `json:"amount"`
}

// HasAmount reports whether an amount has been entered
func (r AllocationRow) HasAmount() bool {
	return trimmed(r.Amount) != ""
}

// IsComplete reports whether both the bill and the amount are present
func (r AllocationRow) IsComplete() bool {
	return trimmed(r.BillID) != "" && r.HasAmount()
}

// AllocationLine is a validated row as sent to the backend
type AllocationLine struct {
	BillID string          `json:"billId"`
	Amount decimal.Decimal `json:"amount"`
}

// Submission is the finalized allocation posted to the backend. Amounts go on the
// wire as JSON strings holding the exact decimal text, e.g. "declaredTotal":"1000.5".
type Submission struct {
	Party         string           `json:"party"`
	DeclaredTotal decimal.Decimal  `json:"declaredTotal"`
	PaymentType   PaymentType      `json:"paymentType"`
	PaymentDate   string           `json:"paymentDate"`
	Rows          []AllocationLine `json:"rows"`
}
