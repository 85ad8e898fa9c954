package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	qty := decimal.NewFromInt(10)
	price := MustMoney("99.99")

	assert.True(t, MustMoney("999.90").Equal(LineTotal(qty, price)))
}

func TestLineTotal_ZeroQuantity(t *testing.T) {
	total := LineTotal(decimal.Zero, MustMoney("100"))
	assert.True(t, total.IsZero())
}

func TestLineTotal_Rounding(t *testing.T) {
	// 3 * 33.333 = 99.999 -> 100.00
	total := LineTotal(decimal.NewFromInt(3), MustMoney("33.333"))
	assert.True(t, MustMoney("100.00").Equal(total))
}

func TestReceivedPercentage(t *testing.T) {
	pct, ok := ReceivedPercentage(MustMoney("400"), MustMoney("1000"))
	assert.True(t, ok)
	assert.True(t, MustMoney("40").Equal(pct))
}

func TestReceivedPercentage_Full(t *testing.T) {
	pct, ok := ReceivedPercentage(MustMoney("1000"), MustMoney("1000"))
	assert.True(t, ok)
	assert.True(t, MustMoney("100").Equal(pct))
}

func TestReceivedPercentage_ZeroTotal(t *testing.T) {
	_, ok := ReceivedPercentage(MustMoney("500"), decimal.Zero)
	assert.False(t, ok, "percentage must be undefined for zero total")
}

func TestSumLineTotals(t *testing.T) {
	sum := SumLineTotals([]Money{MustMoney("500"), MustMoney("300")})
	assert.True(t, MustMoney("800").Equal(sum))

	assert.True(t, SumLineTotals(nil).IsZero())
}
