package repository

import (
	"context"

	"github.com/google/uuid"

	"visit-service/internal/model"
)

// ListEvents returns a request's events newest first by insertion order,
// optionally narrowed to kinds.
func (r *RequestRepository) ListEvents(ctx context.Context, requestID uuid.UUID, kinds ...model.EventKind) ([]model.RequestEvent, error) {
	query := r.db.WithContext(ctx).
		Model(&model.RequestEvent{}).
		Where("request_id = ?", requestID)
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kinds)
	}

	var events []model.RequestEvent
	if err := query.Order("seq DESC, created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// LatestEvent returns the newest event of kind, or gorm.ErrRecordNotFound.
func (r *RequestRepository) LatestEvent(ctx context.Context, requestID uuid.UUID, kind model.EventKind) (*model.RequestEvent, error) {
	var event model.RequestEvent
	if err := r.db.WithContext(ctx).
		Where("request_id = ? AND kind = ?", requestID, kind).
		Order("seq DESC, created_at DESC").
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// LatestEventsByRequestIDs maps each request id to its newest event of kind.
// Requests without such an event are absent from the map.
func (r *RequestRepository) LatestEventsByRequestIDs(ctx context.Context, ids []uuid.UUID, kind model.EventKind) (map[uuid.UUID]model.RequestEvent, error) {
	result := make(map[uuid.UUID]model.RequestEvent)
	if len(ids) == 0 {
		return result, nil
	}

	var events []model.RequestEvent
	if err := r.db.WithContext(ctx).
		Model(&model.RequestEvent{}).
		Where("request_id IN ? AND kind = ?", ids, kind).
		Order("request_id, seq DESC, created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	for _, event := range events {
		if _, seen := result[event.RequestID]; !seen {
			result[event.RequestID] = event
		}
	}
	return result, nil
}

// CountEvents reports how many events a request already has. The notes
// importer uses it to skip requests that were imported before.
func (r *RequestRepository) CountEvents(ctx context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.RequestEvent{}).
		Where("request_id = ?", requestID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
