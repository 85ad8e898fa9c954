// Package request_repo provides the PostgreSQL implementation for the
// asset request repository.
package request_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/requests"
	"procura/internal/infrastructure/storage/postgres"
)

const requestTable = "asset_requests"

// Compile-time check that the repo satisfies the domain interface.
var _ requests.Repository = (*AssetRequestRepo)(nil)

// AssetRequestRepo persists asset requests.
type AssetRequestRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewAssetRequestRepo creates an asset request repository.
func NewAssetRequestRepo(txm *postgres.TxManager) *AssetRequestRepo {
	return &AssetRequestRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[requests.AssetRequest](),
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *AssetRequestRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new asset request using its "db" tags.
func (r *AssetRequestRepo) Create(ctx context.Context, req *requests.AssetRequest) error {
	data := postgres.StructToMap(req)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(requestTable).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", requestTable, err)
	}

	return nil
}

// GetByID retrieves a request by ID.
func (r *AssetRequestRepo) GetByID(ctx context.Context, reqID id.ID) (*requests.AssetRequest, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(requestTable).
		Where(squirrel.Eq{"id": reqID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var req requests.AssetRequest
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &req, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(requestTable, reqID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &req, nil
}

// List retrieves requests matching the filter, newest first.
func (r *AssetRequestRepo) List(ctx context.Context, filter requests.ListFilter) ([]*requests.AssetRequest, error) {
	q := r.Builder().
		Select(r.selectCols...).
		From(requestTable).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.RequestedBy != "" {
		q = q.Where(squirrel.Eq{"requested_by": filter.RequestedBy})
	}
	if filter.Department != "" {
		q = q.Where(squirrel.Eq{"department": filter.Department})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*requests.AssetRequest
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", requestTable, err)
	}

	return items, nil
}

// SetStatus updates the request status and stamps updated_at.
func (r *AssetRequestRepo) SetStatus(ctx context.Context, reqID id.ID, status requests.Status) error {
	q := r.Builder().
		Update(requestTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": reqID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(requestTable, reqID.String())
	}

	return nil
}
