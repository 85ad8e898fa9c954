package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"procura/internal/core/id"
	"procura/internal/core/types"
	"procura/internal/domain/purchase_order"
)

func TestExtractDBColumns_PurchaseOrder(t *testing.T) {
	cols := ExtractDBColumns[purchase_order.PurchaseOrder]()

	expectedCols := []string{
		"id", "po_number", "request_id", "supplier_name", "supplier_email",
		"created_by", "created_by_name", "department", "expected_delivery",
		"total_amount", "payment_terms", "delivery_address", "notes",
		"status", "created_at", "updated_at",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}

	// Items carries db:"-" and must never leak into column lists.
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap_LineItem(t *testing.T) {
	now := time.Now().UTC()
	item := purchase_order.LineItem{
		ID:        id.New(),
		POID:      id.New(),
		AssetName: "Laptop",
		Quantity:  types.MustMoney("10"),
		UnitPrice: types.MustMoney("999.99"),
		LineTotal: types.MustMoney("9999.90"),
		UOM:       purchase_order.DefaultUOM,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m := StructToMap(item)

	assert.Equal(t, item.ID, m["id"])
	assert.Equal(t, item.POID, m["po_id"])
	assert.Equal(t, "Laptop", m["asset_name"])
	assert.Equal(t, item.Quantity, m["quantity"])
	assert.Equal(t, item.UnitPrice, m["unit_price"])
	assert.Equal(t, item.LineTotal, m["line_total"])
	assert.Equal(t, "Unit", m["uom"])
	assert.Equal(t, now, m["created_at"])
}

func TestStructToMap_SkipsIgnoredFields(t *testing.T) {
	po := purchase_order.NewPurchaseOrder(id.New(), "Acme Corp", "user-1", "User One")

	m := StructToMap(po)

	assert.Equal(t, po.ID, m["id"])
	assert.Equal(t, "Acme Corp", m["supplier_name"])
	_, hasItems := m["-"]
	assert.False(t, hasItems)
	assert.Len(t, m, 16)
}
