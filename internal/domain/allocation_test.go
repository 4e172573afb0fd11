package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCurrentTotal(t *testing.T) {
	tests := []struct {
		name     string
		rows     []AllocationRow
		expected string
	}{
		{"no rows", nil, "0"},
		{"numeric amounts", []AllocationRow{{"B1", "500"}, {"B2", "505.25"}}, "1005.25"},
		{"blank counts as zero", []AllocationRow{{"B1", "100"}, {"B2", ""}, {"", "  "}}, "100"},
		{"malformed counts as zero", []AllocationRow{{"B1", "100"}, {"B2", "abc"}, {"B3", "1,000"}}, "100"},
		{"negative amounts are summed", []AllocationRow{{"B1", "100"}, {"B2", "-40"}}, "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCurrentTotal(tt.rows)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s want %s", got, tt.expected)
		})
	}
}

func TestIsTotalReconciled_Boundaries(t *testing.T) {
	declared := decimal.NewFromInt(1000)

	tests := []struct {
		total    string
		expected bool
	}{
		{"1000", true},
		{"1005", true},
		{"1010", true},
		{"990", true},
		{"1010.01", false},
		{"989.99", false},
		{"800", false},
	}

	for _, tt := range tests {
		got := IsTotalReconciled(decimal.RequireFromString(tt.total), declared)
		assert.Equal(t, tt.expected, got, "total %s", tt.total)
	}
}

func TestIsPaymentDateValid(t *testing.T) {
	today := time.Date(2026, 10, 16, 15, 4, 0, 0, time.UTC)
	day := func(offset int) time.Time {
		return time.Date(2026, 10, 16+offset, 0, 0, 0, 0, time.UTC)
	}

	assert.True(t, IsPaymentDateValid(day(0), today))
	assert.True(t, IsPaymentDateValid(day(7), today))
	assert.True(t, IsPaymentDateValid(day(3), today))
	assert.False(t, IsPaymentDateValid(day(-1), today))
	assert.False(t, IsPaymentDateValid(day(8), today))
	assert.False(t, IsPaymentDateValid(time.Time{}, today))
}

func TestPruneEmptyRows(t *testing.T) {
	rows := []AllocationRow{
		{BillID: "A", Amount: "5"},
		{BillID: "B", Amount: ""},
		{BillID: "", Amount: ""},
	}

	assert.Equal(t, []AllocationRow{{BillID: "A", Amount: "5"}}, PruneEmptyRows(rows))
}

func TestPruneEmptyRows_KeepsAmountWithoutBill(t *testing.T) {
	rows := []AllocationRow{{BillID: "", Amount: "10"}, {BillID: "B", Amount: " "}}

	assert.Equal(t, []AllocationRow{{BillID: "", Amount: "10"}}, PruneEmptyRows(rows))
}

func TestLastRowComplete(t *testing.T) {
	assert.True(t, LastRowComplete(nil))
	assert.True(t, LastRowComplete([]AllocationRow{{"B1", "5"}}))
	assert.False(t, LastRowComplete([]AllocationRow{{"B1", "5"}, {"B2", ""}}))
	assert.False(t, LastRowComplete([]AllocationRow{{"", "5"}}))
}

func TestBuildSubmission(t *testing.T) {
	bills := OutstandingBills{"Acme": {"bill1", "bill2"}, "Globex": {"g1"}}
	header := PaymentHeader{
		Party:         "Acme",
		DeclaredTotal: decimal.NewFromInt(1000),
		PaymentType:   PaymentTypeNEFT,
		PaymentDate:   time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}

	t.Run("reconciled rows", func(t *testing.T) {
		sub, err := BuildSubmission(header, []AllocationRow{{"bill1", "500"}, {"bill2", "505"}}, bills)
		require.NoError(t, err)
		assert.Equal(t, "Acme", sub.Party)
		assert.Equal(t, PaymentTypeNEFT, sub.PaymentType)
		assert.Equal(t, "2026-10-16", sub.PaymentDate)
		require.Len(t, sub.Rows, 2)
		assert.Equal(t, "bill1", sub.Rows[0].BillID)
		assert.True(t, sub.Rows[1].Amount.Equal(decimal.NewFromInt(505)))
	})

	t.Run("unreconciled total", func(t *testing.T) {
		_, err := BuildSubmission(header, []AllocationRow{{"bill1", "500"}, {"bill2", "300"}}, bills)
		assert.ErrorIs(t, err, ErrTotalNotReconciled)
	})

	t.Run("bill from another party", func(t *testing.T) {
		_, err := BuildSubmission(header, []AllocationRow{{"g1", "1000"}}, bills)
		assert.ErrorIs(t, err, ErrBillNotOutstanding)
	})

	t.Run("amount without bill", func(t *testing.T) {
		_, err := BuildSubmission(header, []AllocationRow{{"", "1000"}}, bills)
		assert.ErrorIs(t, err, ErrBillNotOutstanding)
	})

	t.Run("malformed amount", func(t *testing.T) {
		_, err := BuildSubmission(header, []AllocationRow{{"bill1", "ten"}}, bills)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("no rows", func(t *testing.T) {
		_, err := BuildSubmission(header, nil, bills)
		assert.ErrorIs(t, err, ErrNoAllocationRows)
	})
}

func TestPaymentType_IsValid(t *testing.T) {
	assert.True(t, PaymentTypeCheque.IsValid())
	assert.True(t, PaymentTypeNEFT.IsValid())
	assert.False(t, PaymentType("cash").IsValid())
}
