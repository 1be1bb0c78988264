package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{5000, "$50.00"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000.00"},
		{-2550, "-$25.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.cents), "cents=%d", tt.cents)
	}
}

func TestDollarsCentsRoundTrip(t *testing.T) {
	for _, d := range []float64{0.01, 0.1, 1, 19.99, 50, 666, 1234.56} {
		c := DollarsToCents(d)
		assert.Equal(t, d, CentsToDollars(c), "dollars=%v", d)
	}
	assert.Equal(t, int64(5000), DollarsToCents(50))
	// 19.99*100 is 1998.9999999999998 in float64
	assert.Equal(t, int64(1999), DollarsToCents(19.99))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0", FormatRate(0, 0))
	assert.Equal(t, "0", FormatRate(3, 0))
	assert.Equal(t, "0.500", FormatRate(1, 2))
	assert.Equal(t, "0.333", FormatRate(1, 3))
	assert.Equal(t, "1.000", FormatRate(4, 4))
}

func TestFormatDateToLocal(t *testing.T) {
	d := time.Date(2022, time.December, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Dec 6, 2022", FormatDateToLocal(d))
}

func TestEnumsAreClosed(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusResolved.Valid())
	assert.False(t, TicketStatus("paid").Valid())
	assert.False(t, TicketStatus("").Valid())

	for _, c := range TicketCodes {
		assert.True(t, c.Valid())
	}
	assert.False(t, TicketCode("ARB-3").Valid())
	assert.False(t, TicketCode("arb-2").Valid())
}
