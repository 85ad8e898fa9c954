package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"procura/internal/core/appctx"
	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/activity"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// ActivityRecord is a persisted activity log row.
type ActivityRecord struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            string          `db:"action"`
	ActorID           string          `db:"actor_id"`
	ActorName         string          `db:"actor_name"`
	Details           json.RawMessage `db:"details"`
	DetailsCompressed []byte          `db:"details_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// Compile-time check that ActivityStore implements the domain port.
var _ activity.Recorder = (*ActivityStore)(nil)

// ActivityStore persists activity entries to the activity_log table.
// Large detail payloads are zstd-compressed before storage.
type ActivityStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes, default 10KB
}

// NewActivityStore creates a new activity store.
func NewActivityStore(txManager *TxManager) (*ActivityStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ActivityStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Record persists an activity entry.
func (s *ActivityStore) Record(ctx context.Context, entry activity.Entry) error {
	rec := ActivityRecord{
		ID:         id.New(),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		CreatedAt:  time.Now().UTC(),
	}

	// Fall back to the authenticated user when the entry carries no actor
	if rec.ActorID == "" {
		if user := appctx.GetUser(ctx); user != nil {
			rec.ActorID = user.UserID
			rec.ActorName = user.Name
		}
	}

	if entry.Details != nil {
		detailsJSON, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		rec.Details = detailsJSON
	}

	s.compressDetails(&rec)

	sql := `
		INSERT INTO activity_log (
			id, entity_type, entity_id, action, actor_id, actor_name,
			details, details_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		rec.ID, rec.EntityType, rec.EntityID, rec.Action,
		rec.ActorID, rec.ActorName,
		rec.Details, rec.DetailsCompressed, rec.CompressionAlgo,
		rec.CreatedAt,
	)

	return err
}

// EntityHistory retrieves the activity trail for an entity, newest first.
// The read runs in a read-only transaction.
func (s *ActivityStore) EntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]ActivityRecord, error) {
	sql := `
		SELECT id, entity_type, entity_id, action, actor_id, actor_name,
			   details, details_compressed, compression_algo, created_at
		FROM activity_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	var records []ActivityRecord
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r ActivityRecord
			err := rows.Scan(
				&r.ID, &r.EntityType, &r.EntityID, &r.Action, &r.ActorID, &r.ActorName,
				&r.Details, &r.DetailsCompressed, &r.CompressionAlgo, &r.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("scan record: %w", err)
			}
			if err := s.decompressRecord(&r); err != nil {
				return err
			}
			records = append(records, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// compressDetails moves the details payload into the compressed column
// when it exceeds the threshold.
func (s *ActivityStore) compressDetails(rec *ActivityRecord) {
	rec.CompressionAlgo = CompressionNone
	if len(rec.Details) > s.compressThreshold {
		rec.DetailsCompressed = s.encoder.EncodeAll(rec.Details, nil)
		rec.Details = nil
		rec.CompressionAlgo = CompressionZstd
	}
}

// decompressRecord restores the details payload of a compressed record.
// A payload that no longer decodes is a stored-state fault, reported as
// a consistency error.
func (s *ActivityStore) decompressRecord(r *ActivityRecord) error {
	if r.CompressionAlgo != CompressionZstd || len(r.DetailsCompressed) == 0 {
		return nil
	}
	decompressed, err := s.decoder.DecodeAll(r.DetailsCompressed, nil)
	if err != nil {
		return apperror.NewConsistency("activity details cannot be decompressed").
			WithDetail("record_id", r.ID.String()).
			WithCause(err)
	}
	r.Details = decompressed
	r.DetailsCompressed = nil
	return nil
}
