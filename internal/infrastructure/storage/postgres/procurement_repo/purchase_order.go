// Package procurement_repo provides PostgreSQL implementations for the
// purchase order and goods receipt repositories.
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
	"procura/internal/domain/purchase_order"
	"procura/internal/infrastructure/storage/postgres"
)

const (
	poTable     = "purchase_orders"
	poItemTable = "po_items"
)

// Compile-time check that the repo satisfies the domain interface.
var _ purchase_order.Repository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo persists purchase orders and their line items.
type PurchaseOrderRepo struct {
	txm        *postgres.TxManager
	headerCols []string
	itemCols   []string
}

// NewPurchaseOrderRepo creates a purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		txm:        txm,
		headerCols: postgres.ExtractDBColumns[purchase_order.PurchaseOrder](),
		itemCols:   postgres.ExtractDBColumns[purchase_order.LineItem](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *PurchaseOrderRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the order header. Line items are inserted separately
// so the service controls transaction boundaries.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *purchase_order.PurchaseOrder) error {
	data := postgres.StructToMap(po)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.headerCols))
	for _, col := range r.headerCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(poTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", poTable, err)
	}

	return nil
}

// GetByID retrieves the order header with its line items.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, poID id.ID) (*purchase_order.PurchaseOrder, error) {
	q := r.Builder().
		Select(r.headerCols...).
		From(poTable).
		Where(squirrel.Eq{"id": poID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var po purchase_order.PurchaseOrder
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &po, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(poTable, poID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	items, err := r.GetItems(ctx, poID)
	if err != nil {
		return nil, err
	}
	po.Items = items

	return &po, nil
}

// List retrieves order headers matching the filter, newest first.
// Line items are not loaded.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchase_order.ListFilter) ([]*purchase_order.PurchaseOrder, error) {
	q := r.Builder().
		Select(r.headerCols...).
		From(poTable).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CreatedBy != "" {
		q = q.Where(squirrel.Eq{"created_by": filter.CreatedBy})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []*purchase_order.PurchaseOrder
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", poTable, err)
	}

	for _, po := range orders {
		po.Items = make([]purchase_order.LineItem, 0)
	}

	return orders, nil
}

// SetStatus updates the order status and stamps updated_at.
func (r *PurchaseOrderRepo) SetStatus(ctx context.Context, poID id.ID, status purchase_order.Status) error {
	q := r.Builder().
		Update(poTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": poID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(poTable, poID.String())
	}

	return nil
}

// InsertItem inserts one line item.
func (r *PurchaseOrderRepo) InsertItem(ctx context.Context, item *purchase_order.LineItem) error {
	data := postgres.StructToMap(item)

	filteredData := make(map[string]any, len(r.itemCols))
	for _, col := range r.itemCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(poItemTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", poItemTable, err)
	}

	return nil
}

// GetItem retrieves one line item by ID.
func (r *PurchaseOrderRepo) GetItem(ctx context.Context, itemID id.ID) (*purchase_order.LineItem, error) {
	q := r.Builder().
		Select(r.itemCols...).
		From(poItemTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item purchase_order.LineItem
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(poItemTable, itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

// GetItems retrieves all line items of the order in insertion order.
func (r *PurchaseOrderRepo) GetItems(ctx context.Context, poID id.ID) ([]purchase_order.LineItem, error) {
	q := r.Builder().
		Select(r.itemCols...).
		From(poItemTable).
		Where(squirrel.Eq{"po_id": poID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]purchase_order.LineItem, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// UpdateItem overwrites a line item. ID, parent reference and created_at
// are immutable; updated_at is stamped by the repo.
func (r *PurchaseOrderRepo) UpdateItem(ctx context.Context, item *purchase_order.LineItem) error {
	data := postgres.StructToMap(item)

	filteredData := make(map[string]any, len(r.itemCols))
	for _, col := range r.itemCols {
		if col == "id" || col == "po_id" || col == "created_at" || col == "updated_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(poItemTable).
		SetMap(filteredData).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": item.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", poItemTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(poItemTable, item.ID.String())
	}

	return nil
}

// DeleteItem removes a line item.
func (r *PurchaseOrderRepo) DeleteItem(ctx context.Context, itemID id.ID) error {
	q := r.Builder().
		Delete(poItemTable).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", poItemTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(poItemTable, itemID.String())
	}

	return nil
}

// RecomputeTotal rewrites total_amount from the surviving line totals
// and returns the new value. COALESCE covers the no-lines case.
func (r *PurchaseOrderRepo) RecomputeTotal(ctx context.Context, poID id.ID) (types.Money, error) {
	sql := `
		UPDATE purchase_orders
		SET total_amount = COALESCE(
			(SELECT SUM(line_total) FROM po_items WHERE po_id = $1), 0
		),
		updated_at = NOW()
		WHERE id = $1
		RETURNING total_amount
	`

	var total types.Money
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, poID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Zero(), apperror.NewNotFound(poTable, poID.String())
		}
		return types.Zero(), fmt.Errorf("recompute total: %w", err)
	}

	return total, nil
}
