package procurement_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/types"
	"procura/internal/domain/goods_receipt"
	"procura/internal/domain/reconciliation"
	"procura/internal/infrastructure/storage/postgres"
)

const (
	grTable     = "goods_receipts"
	grItemTable = "gr_items"
)

// Columns that exist on the read model only (joined from purchase_orders).
var grJoinedCols = map[string]bool{
	"po_number":       true,
	"supplier_name":   true,
	"po_total_amount": true,
}

// Compile-time checks: the repo serves both the goods receipt domain
// and the reconciliation orchestrator.
var (
	_ goods_receipt.Repository     = (*GoodsReceiptRepo)(nil)
	_ reconciliation.ReceiptTotals = (*GoodsReceiptRepo)(nil)
)

// GoodsReceiptRepo persists goods receipts and their line items.
type GoodsReceiptRepo struct {
	txm        *postgres.TxManager
	insertCols []string
	itemCols   []string
}

// NewGoodsReceiptRepo creates a goods receipt repository.
func NewGoodsReceiptRepo(txm *postgres.TxManager) *GoodsReceiptRepo {
	all := postgres.ExtractDBColumns[goods_receipt.GoodsReceipt]()
	insertCols := make([]string, 0, len(all))
	for _, col := range all {
		if grJoinedCols[col] {
			continue
		}
		insertCols = append(insertCols, col)
	}

	return &GoodsReceiptRepo{
		txm:        txm,
		insertCols: insertCols,
		itemCols:   postgres.ExtractDBColumns[goods_receipt.LineItem](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *GoodsReceiptRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the receipt header.
func (r *GoodsReceiptRepo) Create(ctx context.Context, gr *goods_receipt.GoodsReceipt) error {
	data := postgres.StructToMap(gr)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.insertCols))
	for _, col := range r.insertCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(grTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", grTable, err)
	}

	return nil
}

// grSelect joins the originating order so reads carry its number,
// supplier and total.
func (r *GoodsReceiptRepo) grSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.insertCols)+3)
	for _, col := range r.insertCols {
		cols = append(cols, "g."+col)
	}
	cols = append(cols,
		"p.po_number AS po_number",
		"p.supplier_name AS supplier_name",
		"p.total_amount AS po_total_amount",
	)

	return r.Builder().
		Select(cols...).
		From(grTable + " g").
		Join(poTable + " p ON p.id = g.po_id")
}

// GetByID retrieves the receipt with its line items and order context.
func (r *GoodsReceiptRepo) GetByID(ctx context.Context, grID id.ID) (*goods_receipt.GoodsReceipt, error) {
	q := r.grSelect().
		Where(squirrel.Eq{"g.id": grID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var gr goods_receipt.GoodsReceipt
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &gr, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(grTable, grID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	items, err := r.GetItems(ctx, grID)
	if err != nil {
		return nil, err
	}
	gr.Items = items

	return &gr, nil
}

// SetStatus updates the receipt status and stamps updated_at.
func (r *GoodsReceiptRepo) SetStatus(ctx context.Context, grID id.ID, status goods_receipt.Status) error {
	q := r.Builder().
		Update(grTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": grID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(grTable, grID.String())
	}

	return nil
}

// InsertItems inserts the receipt lines in one statement.
func (r *GoodsReceiptRepo) InsertItems(ctx context.Context, items []goods_receipt.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(grItemTable).
		Columns(r.itemCols...)

	for i := range items {
		data := postgres.StructToMap(items[i])
		values := make([]any, len(r.itemCols))
		for j, col := range r.itemCols {
			values[j] = data[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", grItemTable, err)
	}

	return nil
}

// GetItem retrieves one receipt line by ID.
func (r *GoodsReceiptRepo) GetItem(ctx context.Context, itemID id.ID) (*goods_receipt.LineItem, error) {
	q := r.Builder().
		Select(r.itemCols...).
		From(grItemTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item goods_receipt.LineItem
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(grItemTable, itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

// GetItems retrieves all lines of the receipt in insertion order.
func (r *GoodsReceiptRepo) GetItems(ctx context.Context, grID id.ID) ([]goods_receipt.LineItem, error) {
	q := r.Builder().
		Select(r.itemCols...).
		From(grItemTable).
		Where(squirrel.Eq{"gr_id": grID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]goods_receipt.LineItem, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// UpdateItem overwrites a receipt line. ID, parent reference and
// created_at are immutable; updated_at is stamped by the repo.
func (r *GoodsReceiptRepo) UpdateItem(ctx context.Context, item *goods_receipt.LineItem) error {
	data := postgres.StructToMap(item)

	filteredData := make(map[string]any, len(r.itemCols))
	for _, col := range r.itemCols {
		if col == "id" || col == "gr_id" || col == "created_at" || col == "updated_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(grItemTable).
		SetMap(filteredData).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": item.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", grItemTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(grItemTable, item.ID.String())
	}

	return nil
}

// summarySelect is the listing projection with order context and a
// per-receipt item count.
func (r *GoodsReceiptRepo) summarySelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(
			"g.id", "g.gr_number", "g.po_id", "g.status", "g.receipt_date",
			"g.total_received_amount",
			"(SELECT COUNT(*) FROM "+grItemTable+" i WHERE i.gr_id = g.id) AS item_count",
			"p.po_number AS po_number",
			"p.supplier_name AS supplier_name",
		).
		From(grTable + " g").
		Join(poTable + " p ON p.id = g.po_id")
}

// ListByPO retrieves receipt summaries for one order, newest first.
func (r *GoodsReceiptRepo) ListByPO(ctx context.Context, poID id.ID) ([]goods_receipt.Summary, error) {
	q := r.summarySelect().
		Where(squirrel.Eq{"g.po_id": poID}).
		OrderBy("g.receipt_date DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]goods_receipt.Summary, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list by po: %w", err)
	}

	return rows, nil
}

// ListRecent retrieves the most recent receipt summaries across all orders.
func (r *GoodsReceiptRepo) ListRecent(ctx context.Context, limit int) ([]goods_receipt.Summary, error) {
	q := r.summarySelect().
		OrderBy("g.receipt_date DESC")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows := make([]goods_receipt.Summary, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}

	return rows, nil
}

// RecomputeTotal rewrites total_received_amount from the receipt's line
// totals and returns the new value.
func (r *GoodsReceiptRepo) RecomputeTotal(ctx context.Context, grID id.ID) (types.Money, error) {
	sql := `
		UPDATE goods_receipts
		SET total_received_amount = COALESCE(
			(SELECT SUM(line_total) FROM gr_items WHERE gr_id = $1), 0
		),
		updated_at = NOW()
		WHERE id = $1
		RETURNING total_received_amount
	`

	var total types.Money
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, grID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), apperror.NewNotFound(grTable, grID.String())
		}
		return types.Zero(), fmt.Errorf("recompute total: %w", err)
	}

	return total, nil
}

// SumReceivedByPO sums line totals across every receipt of the order.
func (r *GoodsReceiptRepo) SumReceivedByPO(ctx context.Context, poID id.ID) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(i.line_total), 0)
		FROM gr_items i
		JOIN goods_receipts g ON g.id = i.gr_id
		WHERE g.po_id = $1
	`

	var total types.Money
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, poID).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum received by po: %w", err)
	}

	return total, nil
}
