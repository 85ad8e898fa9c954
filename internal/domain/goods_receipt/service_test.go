package goods_receipt

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/types"
	"procura/internal/domain/activity"
	"procura/internal/domain/purchase_order"
	"procura/internal/domain/reconciliation"
	"procura/pkg/docnum"
)

// fakeRecorder captures activity entries in order.
type fakeRecorder struct {
	entries []activity.Entry
}

func (r *fakeRecorder) Record(_ context.Context, entry activity.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

type stubTx struct{}

func (stubTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeGRRepo is an in-memory Repository; the aggregate methods mirror
// the SQL sums over stored line items.
type fakeGRRepo struct {
	receipts map[id.ID]*GoodsReceipt
	items    map[id.ID]LineItem

	lastListLimit int
}

func newFakeGRRepo() *fakeGRRepo {
	return &fakeGRRepo{
		receipts: make(map[id.ID]*GoodsReceipt),
		items:    make(map[id.ID]LineItem),
	}
}

func (r *fakeGRRepo) Create(_ context.Context, gr *GoodsReceipt) error {
	stored := *gr
	stored.Items = nil
	r.receipts[gr.ID] = &stored
	return nil
}

func (r *fakeGRRepo) GetByID(_ context.Context, grID id.ID) (*GoodsReceipt, error) {
	gr, ok := r.receipts[grID]
	if !ok {
		return nil, apperror.NewNotFound("goods receipt", grID.String())
	}
	cp := *gr
	return &cp, nil
}

func (r *fakeGRRepo) SetStatus(_ context.Context, grID id.ID, status Status) error {
	gr, ok := r.receipts[grID]
	if !ok {
		return apperror.NewNotFound("goods receipt", grID.String())
	}
	gr.Status = status
	return nil
}

func (r *fakeGRRepo) InsertItems(_ context.Context, items []LineItem) error {
	for _, item := range items {
		r.items[item.ID] = item
	}
	return nil
}

func (r *fakeGRRepo) GetItem(_ context.Context, itemID id.ID) (*LineItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("receipt line item", itemID.String())
	}
	cp := item
	return &cp, nil
}

func (r *fakeGRRepo) GetItems(_ context.Context, grID id.ID) ([]LineItem, error) {
	var out []LineItem
	for _, item := range r.items {
		if item.GRID == grID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeGRRepo) UpdateItem(_ context.Context, item *LineItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return apperror.NewNotFound("receipt line item", item.ID.String())
	}
	r.items[item.ID] = *item
	return nil
}

func (r *fakeGRRepo) ListByPO(_ context.Context, poID id.ID) ([]Summary, error) {
	var out []Summary
	for _, gr := range r.receipts {
		if gr.POID == poID {
			out = append(out, Summary{ID: gr.ID, GRNumber: gr.GRNumber, POID: gr.POID,
				Status: gr.Status, TotalReceivedAmount: gr.TotalReceivedAmount})
		}
	}
	return out, nil
}

func (r *fakeGRRepo) ListRecent(_ context.Context, limit int) ([]Summary, error) {
	r.lastListLimit = limit
	var out []Summary
	for _, gr := range r.receipts {
		out = append(out, Summary{ID: gr.ID, GRNumber: gr.GRNumber, POID: gr.POID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GRNumber > out[j].GRNumber })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeGRRepo) RecomputeTotal(_ context.Context, grID id.ID) (types.Money, error) {
	gr, ok := r.receipts[grID]
	if !ok {
		return types.Zero(), apperror.NewNotFound("goods receipt", grID.String())
	}
	sum := types.Zero()
	for _, item := range r.items {
		if item.GRID == grID {
			sum = sum.Add(item.LineTotal)
		}
	}
	gr.TotalReceivedAmount = sum
	return sum, nil
}

func (r *fakeGRRepo) SumReceivedByPO(_ context.Context, poID id.ID) (types.Money, error) {
	sum := types.Zero()
	for _, item := range r.items {
		gr, ok := r.receipts[item.GRID]
		if ok && gr.POID == poID {
			sum = sum.Add(item.LineTotal)
		}
	}
	return sum, nil
}

// fakePORepo is the in-memory purchase order side, enough to seed orders
// and observe the derived status.
type fakePORepo struct {
	orders map[id.ID]*purchase_order.PurchaseOrder
	items  map[id.ID]purchase_order.LineItem
}

func newFakePORepo() *fakePORepo {
	return &fakePORepo{
		orders: make(map[id.ID]*purchase_order.PurchaseOrder),
		items:  make(map[id.ID]purchase_order.LineItem),
	}
}

func (r *fakePORepo) Create(_ context.Context, po *purchase_order.PurchaseOrder) error {
	r.orders[po.ID] = po
	return nil
}

func (r *fakePORepo) GetByID(_ context.Context, poID id.ID) (*purchase_order.PurchaseOrder, error) {
	po, ok := r.orders[poID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", poID.String())
	}
	cp := *po
	return &cp, nil
}

func (r *fakePORepo) List(_ context.Context, _ purchase_order.ListFilter) ([]*purchase_order.PurchaseOrder, error) {
	return nil, nil
}

func (r *fakePORepo) SetStatus(_ context.Context, poID id.ID, status purchase_order.Status) error {
	po, ok := r.orders[poID]
	if !ok {
		return apperror.NewNotFound("purchase order", poID.String())
	}
	po.Status = status
	return nil
}

func (r *fakePORepo) InsertItem(_ context.Context, item *purchase_order.LineItem) error {
	r.items[item.ID] = *item
	return nil
}

func (r *fakePORepo) GetItem(_ context.Context, itemID id.ID) (*purchase_order.LineItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("line item", itemID.String())
	}
	cp := item
	return &cp, nil
}

func (r *fakePORepo) GetItems(_ context.Context, poID id.ID) ([]purchase_order.LineItem, error) {
	var out []purchase_order.LineItem
	for _, item := range r.items {
		if item.POID == poID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePORepo) UpdateItem(_ context.Context, item *purchase_order.LineItem) error {
	r.items[item.ID] = *item
	return nil
}

func (r *fakePORepo) DeleteItem(_ context.Context, itemID id.ID) error {
	delete(r.items, itemID)
	return nil
}

func (r *fakePORepo) RecomputeTotal(_ context.Context, poID id.ID) (types.Money, error) {
	po := r.orders[poID]
	sum := types.Zero()
	for _, item := range r.items {
		if item.POID == poID {
			sum = sum.Add(item.LineTotal)
		}
	}
	po.TotalAmount = sum
	return sum, nil
}

type fixture struct {
	svc    *Service
	grRepo *fakeGRRepo
	poRepo *fakePORepo
	poID   id.ID
	// item ids in insertion order
	poItems []id.ID
}

// newFixture seeds one sent purchase order with lines 5*100 and 3*100,
// total 800.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	grRepo := newFakeGRRepo()
	poRepo := newFakePORepo()

	poID := id.New()
	poRepo.orders[poID] = &purchase_order.PurchaseOrder{
		ID:          poID,
		PONumber:    "PO-1",
		Status:      purchase_order.StatusSent,
		TotalAmount: types.MustMoney("800"),
	}

	var itemIDs []id.ID
	now := time.Now().UTC()
	for i, spec := range []struct {
		name string
		qty  int64
	}{{"Laptop", 5}, {"Monitor", 3}} {
		item := purchase_order.LineItem{
			ID:        id.New(),
			POID:      poID,
			AssetName: spec.name,
			Quantity:  decimal.NewFromInt(spec.qty),
			UnitPrice: types.MustMoney("100"),
			LineTotal: types.MustMoney("100").Mul(decimal.NewFromInt(spec.qty)),
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		poRepo.items[item.ID] = item
		itemIDs = append(itemIDs, item.ID)
	}

	reconciler := reconciliation.NewService(grRepo, poRepo, stubTx{})
	svc := NewService(grRepo, poRepo, reconciler, stubTx{}, docnum.New(), nil)
	return &fixture{svc: svc, grRepo: grRepo, poRepo: poRepo, poID: poID, poItems: itemIDs}
}

func TestServiceCreate_FullReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	report, err := f.svc.Create(ctx, gr, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(5)},
		{POItemID: f.poItems[1], QuantityReceived: decimal.NewFromInt(3)},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gr.GRNumber, "GR-"))
	assert.Equal(t, reconciliation.MatchStatusMatched, report.Status)
	assert.True(t, types.MustMoney("800").Equal(report.ReceivedAmount))

	// Lines snapshot the ordered quantity and unit price from the order.
	require.Len(t, gr.Items, 2)
	assert.Equal(t, "Laptop", gr.Items[0].AssetName)
	assert.True(t, decimal.NewFromInt(5).Equal(gr.Items[0].QuantityOrdered))
	assert.True(t, types.MustMoney("100").Equal(gr.Items[0].UnitPrice))

	assert.Equal(t, purchase_order.StatusReceived, f.poRepo.orders[f.poID].Status)
	assert.True(t, types.MustMoney("800").Equal(f.grRepo.receipts[gr.ID].TotalReceivedAmount))
}

func TestServiceCreate_PartialReceipt(t *testing.T) {
	f := newFixture(t)

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	report, err := f.svc.Create(context.Background(), gr, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(2)},
	})
	require.NoError(t, err)

	assert.Equal(t, reconciliation.MatchStatusPartial, report.Status)
	require.NotNil(t, report.MatchPercentage)
	assert.True(t, types.MustMoney("25").Equal(*report.MatchPercentage))
	assert.Equal(t, purchase_order.StatusPartial, f.poRepo.orders[f.poID].Status)
}

func TestServiceCreate_SecondReceiptAccumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := NewGoodsReceipt(f.poID, "user-2", "User Two")
	_, err := f.svc.Create(ctx, first, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, purchase_order.StatusPartial, f.poRepo.orders[f.poID].Status)

	second := NewGoodsReceipt(f.poID, "user-2", "User Two")
	report, err := f.svc.Create(ctx, second, []ItemInput{
		{POItemID: f.poItems[1], QuantityReceived: decimal.NewFromInt(3)},
	})
	require.NoError(t, err)

	// The match spans every receipt of the order, not just the new one.
	assert.Equal(t, reconciliation.MatchStatusMatched, report.Status)
	assert.True(t, types.MustMoney("800").Equal(report.ReceivedAmount))
	assert.Equal(t, purchase_order.StatusReceived, f.poRepo.orders[f.poID].Status)

	// Each receipt keeps its own total.
	assert.True(t, types.MustMoney("500").Equal(f.grRepo.receipts[first.ID].TotalReceivedAmount))
	assert.True(t, types.MustMoney("300").Equal(f.grRepo.receipts[second.ID].TotalReceivedAmount))
}

func TestServiceCreate_MissingOrder(t *testing.T) {
	f := newFixture(t)

	gr := NewGoodsReceipt(id.New(), "user-2", "User Two")
	_, err := f.svc.Create(context.Background(), gr, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(1)},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.grRepo.receipts)
}

func TestServiceCreate_UnknownOrderLine(t *testing.T) {
	f := newFixture(t)

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	_, err := f.svc.Create(context.Background(), gr, []ItemInput{
		{POItemID: id.New(), QuantityReceived: decimal.NewFromInt(1)},
	})
	require.Error(t, err)
	require.True(t, apperror.IsNotFound(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 1, appErr.Details["lineNo"])
}

func TestServiceCreate_NoLines(t *testing.T) {
	f := newFixture(t)

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	_, err := f.svc.Create(context.Background(), gr, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestServiceUpdateItem_ReappliesReceived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	_, err := f.svc.Create(ctx, gr, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(5)},
		{POItemID: f.poItems[1], QuantityReceived: decimal.NewFromInt(3)},
	})
	require.NoError(t, err)
	require.Equal(t, purchase_order.StatusReceived, f.poRepo.orders[f.poID].Status)

	// Correct the first line down to 2 received.
	qty := decimal.NewFromInt(2)
	updated, err := f.svc.UpdateItem(ctx, gr.Items[0].ID, ItemUpdate{QuantityReceived: &qty})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(2).Equal(updated.QuantityAccepted))
	assert.True(t, decimal.NewFromInt(3).Equal(updated.QuantityRejected))
	assert.True(t, types.MustMoney("200").Equal(updated.LineTotal))

	// Receipt total and order status follow the correction.
	assert.True(t, types.MustMoney("500").Equal(f.grRepo.receipts[gr.ID].TotalReceivedAmount))
	assert.Equal(t, purchase_order.StatusPartial, f.poRepo.orders[f.poID].Status)
}

func TestServiceUpdateItem_RejectsNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	_, err := f.svc.Create(ctx, gr, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)

	qty := decimal.NewFromInt(-1)
	_, err = f.svc.UpdateItem(ctx, gr.Items[0].ID, ItemUpdate{QuantityReceived: &qty})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestServiceUpdateStatus_RejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	_, err := f.svc.Create(ctx, gr, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)

	err = f.svc.UpdateStatus(ctx, gr.ID, Status("returned"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	require.NoError(t, f.svc.UpdateStatus(ctx, gr.ID, StatusAccepted))
	assert.Equal(t, StatusAccepted, f.grRepo.receipts[gr.ID].Status)
}

func TestServiceGetByID_ItemsNeverNil(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	f.grRepo.receipts[gr.ID] = gr

	got, err := f.svc.GetByID(ctx, gr.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestServiceListRecent_CapsLimit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, f.grRepo.lastListLimit)

	_, err = f.svc.ListRecent(context.Background(), MaxListLimit+1)
	require.NoError(t, err)
	assert.Equal(t, MaxListLimit, f.grRepo.lastListLimit)

	_, err = f.svc.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, f.grRepo.lastListLimit)
}

func TestServiceActivityDetails(t *testing.T) {
	f := newFixture(t)
	rec := &fakeRecorder{}
	reconciler := reconciliation.NewService(f.grRepo, f.poRepo, stubTx{})
	svc := NewService(f.grRepo, f.poRepo, reconciler, stubTx{}, docnum.New(), rec)
	ctx := context.Background()

	gr := NewGoodsReceipt(f.poID, "user-2", "User Two")
	report, err := svc.Create(ctx, gr, []ItemInput{
		{POItemID: f.poItems[0], QuantityReceived: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, gr.ID, StatusComplete))

	require.Len(t, rec.entries, 2)

	created := rec.entries[0]
	assert.Equal(t, "created", created.Action)
	createdDetails, ok := created.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, gr.GRNumber, createdDetails["grNumber"])
	assert.Equal(t, report.Status, createdDetails["matchStatus"])

	transition := rec.entries[1]
	assert.Equal(t, "status:complete", transition.Action)
	transitionDetails, ok := transition.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(StatusPending), transitionDetails["from"])
	assert.Equal(t, string(StatusComplete), transitionDetails["to"])
}
