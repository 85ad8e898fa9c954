package purchase_order

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

func TestNewPurchaseOrder(t *testing.T) {
	reqID := id.New()
	po := NewPurchaseOrder(reqID, "Acme Corp", "user-1", "User One")

	assert.Equal(t, StatusDraft, po.Status)
	assert.Equal(t, reqID, po.RequestID)
	assert.True(t, po.TotalAmount.IsZero())
	assert.NotNil(t, po.Items)
	assert.Empty(t, po.Items)
}

func TestPurchaseOrderValidate(t *testing.T) {
	ctx := context.Background()

	po := NewPurchaseOrder(id.New(), "Acme Corp", "user-1", "User One")
	require.NoError(t, po.Validate(ctx))

	missing := NewPurchaseOrder(id.Nil(), "Acme Corp", "user-1", "User One")
	err := missing.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	noSupplier := NewPurchaseOrder(id.New(), "", "user-1", "User One")
	assert.True(t, apperror.IsValidation(noSupplier.Validate(ctx)))

	noCreator := NewPurchaseOrder(id.New(), "Acme Corp", "", "")
	assert.True(t, apperror.IsValidation(noCreator.Validate(ctx)))
}

func TestPurchaseOrderValidate_BadLineReportsLineNo(t *testing.T) {
	po := NewPurchaseOrder(id.New(), "Acme Corp", "user-1", "User One")
	po.Items = append(po.Items,
		LineItem{AssetName: "Laptop", Quantity: decimal.NewFromInt(1), UnitPrice: types.MustMoney("10")},
		LineItem{AssetName: "", Quantity: decimal.NewFromInt(1), UnitPrice: types.MustMoney("10")},
	)

	err := po.Validate(context.Background())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 2, appErr.Details["lineNo"])
}

func TestLineItemValidate(t *testing.T) {
	ctx := context.Background()

	item := LineItem{AssetName: "Laptop", Quantity: decimal.NewFromInt(2), UnitPrice: types.MustMoney("500")}
	require.NoError(t, item.Validate(ctx))

	negQty := LineItem{AssetName: "Laptop", Quantity: decimal.NewFromInt(-1), UnitPrice: types.MustMoney("500")}
	assert.True(t, apperror.IsValidation(negQty.Validate(ctx)))

	negPrice := LineItem{AssetName: "Laptop", Quantity: decimal.NewFromInt(1), UnitPrice: types.MustMoney("-500")}
	assert.True(t, apperror.IsValidation(negPrice.Validate(ctx)))
}

func TestLineItemRecalculate(t *testing.T) {
	item := LineItem{
		Quantity:  decimal.NewFromInt(3),
		UnitPrice: types.MustMoney("33.333"),
		LineTotal: types.MustMoney("1.00"), // stale, must be overwritten
	}
	item.Recalculate()

	assert.True(t, types.MustMoney("100.00").Equal(item.LineTotal))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusGenerated, StatusSent,
		StatusAcknowledged, StatusPartial, StatusReceived, StatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}

func TestDeriveStatus(t *testing.T) {
	total := types.MustMoney("1000")

	assert.Equal(t, StatusReceived, DeriveStatus(StatusSent, types.MustMoney("1000"), total))
	assert.Equal(t, StatusReceived, DeriveStatus(StatusSent, types.MustMoney("1200"), total))
	assert.Equal(t, StatusPartial, DeriveStatus(StatusSent, types.MustMoney("400"), total))

	// Nothing received keeps the current status.
	assert.Equal(t, StatusSent, DeriveStatus(StatusSent, types.Zero(), total))
	assert.Equal(t, StatusDraft, DeriveStatus(StatusDraft, types.Zero(), total))
}

func TestDeriveStatus_ZeroTotalKeepsCurrent(t *testing.T) {
	// Percentage is undefined against a zero total; the status must not move.
	assert.Equal(t, StatusDraft, DeriveStatus(StatusDraft, types.MustMoney("500"), types.Zero()))
	assert.Equal(t, StatusSent, DeriveStatus(StatusSent, types.Zero(), types.Zero()))
}
