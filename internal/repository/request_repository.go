package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"visit-service/internal/model"
)

// ErrStaleVersion is returned when a save lost the race against another writer.
var ErrStaleVersion = errors.New("request was modified concurrently")

type RequestRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db, now: time.Now}
}

type RequestFilter struct {
	Scope      model.Scope
	Statuses   []model.RequestStatus
	VisitTypes []model.VisitType
	AssignedTo *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int
	Offset     int
}

func (r *RequestRepository) List(ctx context.Context, filter RequestFilter) ([]model.VisitRequest, error) {
	query := r.db.WithContext(ctx).Model(&model.VisitRequest{})

	query = applyScopeFilter(query, filter.Scope)

	if len(filter.Statuses) > 0 {
		query = query.Where("visit_requests.status IN ?", filter.Statuses)
	}
	if len(filter.VisitTypes) > 0 {
		query = query.Where("visit_requests.visit_type IN ?", filter.VisitTypes)
	}
	if filter.AssignedTo != nil {
		query = query.Where("visit_requests.assigned_to = ?", *filter.AssignedTo)
	}
	if filter.DateFrom != nil {
		query = query.Where("visit_requests.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("visit_requests.created_at <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("(LOWER(visit_requests.visitor_name) LIKE LOWER(?) OR visit_requests.phone LIKE ?)", search, search)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var requests []model.VisitRequest
	if err := query.Order("visit_requests.created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.VisitRequest, error) {
	var req model.VisitRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a new request together with its initial events.
func (r *RequestRepository) Create(ctx context.Context, req *model.VisitRequest, events []model.RequestEvent) error {
	now := r.now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = now
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		return r.appendEvents(tx, req.ID, events)
	})
}

// Save writes next over the stored row only if the stored version still equals
// fromVersion, and appends events in the same transaction. On success next
// carries the bumped version.
func (r *RequestRepository) Save(ctx context.Context, next *model.VisitRequest, fromVersion int64, events []model.RequestEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := *next
		row.Version = fromVersion + 1
		row.UpdatedAt = r.now().UTC()

		res := tx.Model(&model.VisitRequest{}).
			Where("id = ? AND version = ?", next.ID, fromVersion).
			Select(model.MutableColumns).
			Updates(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}
		if err := r.appendEvents(tx, next.ID, events); err != nil {
			return err
		}
		next.Version = row.Version
		next.UpdatedAt = row.UpdatedAt
		return nil
	})
}

// appendEvents numbers events after the request's current last seq. Callers
// hold the request row (fresh insert or version-checked update), so numbers
// never collide. Unstamped events get strictly increasing times; preset times
// are kept.
func (r *RequestRepository) appendEvents(tx *gorm.DB, requestID uuid.UUID, events []model.RequestEvent) error {
	if len(events) == 0 {
		return nil
	}
	var last int64
	if err := tx.Model(&model.RequestEvent{}).
		Where("request_id = ?", requestID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	base := r.now().UTC()
	for i := range events {
		events[i].RequestID = requestID
		events[i].Seq = last + int64(i) + 1
		if events[i].CreatedAt.IsZero() {
			events[i].CreatedAt = base.Add(time.Duration(i) * time.Microsecond)
		}
	}
	return tx.Create(&events).Error
}

// ListWithLegacyNotes pages through requests that still carry admin_notes text,
// ordered by id. Pass uuid.Nil to start from the beginning.
func (r *RequestRepository) ListWithLegacyNotes(ctx context.Context, after uuid.UUID, limit int) ([]model.VisitRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.db.WithContext(ctx).
		Model(&model.VisitRequest{}).
		Where("admin_notes IS NOT NULL AND admin_notes <> ''")
	if after != uuid.Nil {
		query = query.Where("id > ?", after)
	}

	var requests []model.VisitRequest
	if err := query.Order("id ASC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
