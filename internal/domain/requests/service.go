package requests

import (
	"context"
	"fmt"
	"time"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/core/tx"
	"procura/internal/domain/activity"
	"procura/pkg/docnum"
	"procura/pkg/logger"
)

// MaxListLimit caps unbounded list queries.
const MaxListLimit = 100

// Service provides business operations for asset requests.
type Service struct {
	repo     Repository
	txm      tx.Manager
	numbers  *docnum.Generator
	activity activity.Recorder
}

// NewService creates a new asset request service.
func NewService(repo Repository, txm tx.Manager, numbers *docnum.Generator, rec activity.Recorder) *Service {
	return &Service{repo: repo, txm: txm, numbers: numbers, activity: rec}
}

// Create validates and persists a new asset request in pending state.
func (s *Service) Create(ctx context.Context, req *AssetRequest) error {
	req.ID = id.New()
	req.Status = StatusPending
	req.RequestNumber = s.numbers.Next(docnum.PrefixAssetRequest)
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	if err := req.Validate(ctx); err != nil {
		return err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, req); err != nil {
			return fmt.Errorf("create asset request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, req.ID, "created", req.RequestedBy, req.RequestedByName, map[string]any{
		"requestNumber": req.RequestNumber,
		"assetName":     req.AssetName,
	})
	logger.Info(ctx, "asset request created", "id", req.ID, "number", req.RequestNumber)
	return nil
}

// GetByID retrieves a single request.
func (s *Service) GetByID(ctx context.Context, reqID id.ID) (*AssetRequest, error) {
	return s.repo.GetByID(ctx, reqID)
}

// List retrieves requests with filtering; limit is capped.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*AssetRequest, error) {
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus performs a manual status transition.
func (s *Service) UpdateStatus(ctx context.Context, reqID id.ID, status Status) error {
	if !status.Valid() {
		return apperror.NewValidation("invalid status value").
			WithDetail("field", "status").
			WithDetail("value", string(status))
	}

	req, err := s.repo.GetByID(ctx, reqID)
	if err != nil {
		return err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetStatus(ctx, reqID, status)
	})
	if err != nil {
		return err
	}

	s.record(ctx, reqID, "status:"+string(status), "", "", map[string]any{
		"from": string(req.Status),
		"to":   string(status),
	})
	return nil
}

func (s *Service) record(ctx context.Context, entityID id.ID, action, actorID, actorName string, details map[string]any) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, activity.Entry{
		EntityType: "asset_request",
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		ActorName:  actorName,
		Details:    details,
	})
	if err != nil {
		logger.Warn(ctx, "activity record failed", "error", err)
	}
}
