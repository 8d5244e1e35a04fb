package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw   string
		cents int64
		err   error
	}{
		{raw: "42.50", cents: 4250},
		{raw: "42.5", cents: 4250},
		{raw: " 7 ", cents: 700},
		{raw: "0.01", cents: 1},
		{raw: "1.100", cents: 110},
		{raw: "19.99", cents: 1999},
		{raw: "", err: ErrAmountNotPositive},
		{raw: "0", err: ErrAmountNotPositive},
		{raw: "-5", err: ErrAmountNotPositive},
		{raw: "abc", err: ErrAmountNotNumber},
		{raw: "12,50", err: ErrAmountNotNumber},
		{raw: "0.001", err: ErrAmountPrecision},
		{raw: "1e30", err: ErrAmountTooLarge},
		{raw: "92233720368547759", err: ErrAmountTooLarge},
		{raw: "1e20000000", err: ErrAmountTooLarge},
		{raw: "1e-20000000", err: ErrAmountPrecision},
		{raw: "100e-2", cents: 100},
		{raw: "1.000000", cents: 100},
		{raw: "1.0000001", err: ErrAmountPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			amount, err := ParseAmount(tt.raw)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.cents, ToCents(amount))
		})
	}
}

func TestParseAmountHugeExponentIsCheap(t *testing.T) {
	start := time.Now()

	for _, raw := range []string{"1e2147483647", "1e-2147483647", "5e20000000", "5e-20000000"} {
		_, err := ParseAmount(raw)
		require.Error(t, err, raw)
	}

	assert.Less(t, time.Since(start), time.Second)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "42.50", FormatCents(4250))
	assert.Equal(t, "0.01", FormatCents(1))
	assert.Equal(t, "1000.00", FormatCents(100000))
}

func TestNewInvoiceStampsUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2026, 10, 17, 3, 0, 0, 0, loc) // 2026-10-16 18:00 UTC

	inv := NewInvoice(InvoiceInput{CustomerID: "c1", AmountCents: 4250, Status: InvoiceStatusPending}, now)

	assert.Equal(t, "2026-10-16", inv.Date.Format(DateLayout))
	assert.Equal(t, int64(4250), inv.Amount)
	assert.NotEqual(t, [16]byte{}, [16]byte(inv.ID))
}

func TestInvoiceStatusValid(t *testing.T) {
	assert.True(t, InvoiceStatusPaid.Valid())
	assert.True(t, InvoiceStatusPending.Valid())
	assert.False(t, InvoiceStatus("overdue").Valid())
}
