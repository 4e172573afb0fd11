package domain

import (
	"strings"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/util"
	"github.com/shopspring/decimal"
)

// Reconciliation constants
const (
	// PaymentDateWindowDays is how far ahead of today a payment may be dated
	PaymentDateWindowDays = 7
)

// ReconciliationTolerance is the largest allowed gap between allocated and declared totals
var ReconciliationTolerance = decimal.NewFromInt(10)

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// ParseAmount parses an entered amount. Blank input is an error.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(trimmed(s))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ComputeCurrentTotal sums row amounts. Blank and malformed amounts count as zero.
func ComputeCurrentTotal(rows []AllocationRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		if amount, err := ParseAmount(row.Amount); err == nil {
			total = total.Add(amount)
		}
	}
	return total
}

// IsTotalReconciled reports whether total is within ReconciliationTolerance of declared
func IsTotalReconciled(total, declared decimal.Decimal) bool {
	return total.Sub(declared).Abs().LessThanOrEqual(ReconciliationTolerance)
}

// IsPaymentDateValid reports whether paymentDate falls between today and
// today+PaymentDateWindowDays inclusive. A zero date is never valid.
func IsPaymentDateValid(paymentDate, today time.Time) bool {
	if paymentDate.IsZero() {
		return false
	}
	return util.WithinDays(paymentDate, today, PaymentDateWindowDays)
}

// PruneEmptyRows drops every row without an amount, whether or not a bill was chosen.
// Rows with an amount but no bill are kept.
func PruneEmptyRows(rows []AllocationRow) []AllocationRow {
	kept := make([]AllocationRow, 0, len(rows))
	for _, row := range rows {
		if row.HasAmount() {
			kept = append(kept, row)
		}
	}
	return kept
}

// LastRowComplete reports whether a new row may be appended after rows
func LastRowComplete(rows []AllocationRow) bool {
	if len(rows) == 0 {
		return true
	}
	return rows[len(rows)-1].IsComplete()
}

// BuildSubmission validates a pruned row set against the header and outstanding bills
// and returns the request body for the backend
func BuildSubmission(header PaymentHeader, rows []AllocationRow, bills OutstandingBills) (*Submission, error) {
	if len(rows) == 0 {
		return nil, ErrNoAllocationRows
	}

	lines := make([]AllocationLine, 0, len(rows))
	total := decimal.Zero
	for _, row := range rows {
		amount, err := ParseAmount(row.Amount)
		if err != nil {
			return nil, err
		}
		billID := trimmed(row.BillID)
		if !bills.HasBill(header.Party, billID) {
			return nil, ErrBillNotOutstanding
		}
		total = total.Add(amount)
		lines = append(lines, AllocationLine{BillID: billID, Amount: amount})
	}

	if !IsTotalReconciled(total, header.DeclaredTotal) {
		return nil, ErrTotalNotReconciled
	}

	return &Submission{
		Party:         header.Party,
		DeclaredTotal: header.DeclaredTotal,
		PaymentType:   header.PaymentType,
		PaymentDate:   util.FormatDate(header.PaymentDate),
		Rows:          lines,
	}, nil
}
