package goods_receipt

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/types"
)

func TestNewGoodsReceipt(t *testing.T) {
	poID := id.New()
	gr := NewGoodsReceipt(poID, "user-1", "User One")

	assert.Equal(t, StatusPending, gr.Status)
	assert.Equal(t, poID, gr.POID)
	assert.True(t, gr.TotalReceivedAmount.IsZero())
	assert.NotNil(t, gr.Items)
	assert.False(t, gr.ReceiptDate.IsZero())
}

func TestApplyReceived_FullAcceptance(t *testing.T) {
	line := LineItem{
		QuantityOrdered: decimal.NewFromInt(10),
		UnitPrice:       types.MustMoney("25"),
	}
	line.ApplyReceived(decimal.NewFromInt(10))

	assert.True(t, decimal.NewFromInt(10).Equal(line.QuantityAccepted))
	assert.True(t, line.QuantityRejected.IsZero())
	assert.True(t, types.MustMoney("250").Equal(line.LineTotal))
}

func TestApplyReceived_ShortDelivery(t *testing.T) {
	line := LineItem{
		QuantityOrdered: decimal.NewFromInt(10),
		UnitPrice:       types.MustMoney("25"),
	}
	line.ApplyReceived(decimal.NewFromInt(6))

	assert.True(t, decimal.NewFromInt(6).Equal(line.QuantityAccepted))
	assert.True(t, decimal.NewFromInt(4).Equal(line.QuantityRejected))
	assert.True(t, types.MustMoney("150").Equal(line.LineTotal))
}

func TestApplyReceived_OverReceipt(t *testing.T) {
	line := LineItem{
		QuantityOrdered: decimal.NewFromInt(10),
		UnitPrice:       types.MustMoney("25"),
	}
	line.ApplyReceived(decimal.NewFromInt(12))

	// Rejected going negative is the over-receipt signal, not an error.
	assert.True(t, decimal.NewFromInt(-2).Equal(line.QuantityRejected))
	assert.True(t, types.MustMoney("300").Equal(line.LineTotal))
}

func TestApplyReceived_Rewrite(t *testing.T) {
	line := LineItem{
		QuantityOrdered: decimal.NewFromInt(10),
		UnitPrice:       types.MustMoney("25"),
	}
	line.ApplyReceived(decimal.NewFromInt(6))
	line.ApplyReceived(decimal.NewFromInt(10))

	// The dependent fields always reflect the latest received quantity.
	assert.True(t, line.QuantityRejected.IsZero())
	assert.True(t, types.MustMoney("250").Equal(line.LineTotal))
}

func TestAddLine(t *testing.T) {
	gr := NewGoodsReceipt(id.New(), "user-1", "User One")
	poItemID := id.New()

	gr.AddLine(poItemID, "Laptop", decimal.NewFromInt(5), decimal.NewFromInt(5),
		types.MustMoney("100"), "", "")

	require.Len(t, gr.Items, 1)
	line := gr.Items[0]
	assert.Equal(t, gr.ID, line.GRID)
	assert.Equal(t, poItemID, line.POItemID)
	assert.Equal(t, DefaultInspectionStatus, line.InspectionStatus)
	assert.True(t, types.MustMoney("500").Equal(line.LineTotal))
	assert.True(t, types.MustMoney("500").Equal(gr.TotalReceivedAmount))
}

func TestRecalculateTotal(t *testing.T) {
	gr := NewGoodsReceipt(id.New(), "user-1", "User One")
	gr.AddLine(id.New(), "Laptop", decimal.NewFromInt(5), decimal.NewFromInt(5),
		types.MustMoney("100"), "pass", "")
	gr.AddLine(id.New(), "Monitor", decimal.NewFromInt(3), decimal.NewFromInt(2),
		types.MustMoney("150"), "pass", "scratched box")

	assert.True(t, types.MustMoney("800").Equal(gr.TotalReceivedAmount))

	gr.Items = gr.Items[:1]
	gr.RecalculateTotal()
	assert.True(t, types.MustMoney("500").Equal(gr.TotalReceivedAmount))

	gr.Items = nil
	gr.RecalculateTotal()
	assert.True(t, gr.TotalReceivedAmount.IsZero())
}

func TestGoodsReceiptValidate(t *testing.T) {
	ctx := context.Background()

	gr := NewGoodsReceipt(id.New(), "user-1", "User One")
	gr.AddLine(id.New(), "Laptop", decimal.NewFromInt(5), decimal.NewFromInt(5),
		types.MustMoney("100"), "", "")
	require.NoError(t, gr.Validate(ctx))

	noPO := NewGoodsReceipt(id.Nil(), "user-1", "User One")
	noPO.AddLine(id.New(), "Laptop", decimal.NewFromInt(1), decimal.NewFromInt(1),
		types.MustMoney("1"), "", "")
	assert.True(t, apperror.IsValidation(noPO.Validate(ctx)))

	noReceiver := NewGoodsReceipt(id.New(), "", "")
	noReceiver.AddLine(id.New(), "Laptop", decimal.NewFromInt(1), decimal.NewFromInt(1),
		types.MustMoney("1"), "", "")
	assert.True(t, apperror.IsValidation(noReceiver.Validate(ctx)))

	empty := NewGoodsReceipt(id.New(), "user-1", "User One")
	assert.True(t, apperror.IsValidation(empty.Validate(ctx)))
}

func TestGoodsReceiptValidate_NegativeReceived(t *testing.T) {
	gr := NewGoodsReceipt(id.New(), "user-1", "User One")
	gr.AddLine(id.New(), "Laptop", decimal.NewFromInt(5), decimal.NewFromInt(-1),
		types.MustMoney("100"), "", "")

	err := gr.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPartial, StatusComplete,
		StatusAccepted, StatusRejected} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("returned").Valid())
	assert.False(t, Status("").Valid())
}
