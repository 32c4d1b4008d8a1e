package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"visit-service/internal/model"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

type TripFilter struct {
	Direction model.Direction
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
}

// ListUpcoming returns active trips ordered by date and departure time.
func (r *TripRepository) ListUpcoming(ctx context.Context, filter TripFilter) ([]model.Trip, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Trip{}).
		Where("trips.is_active = ?", true)

	if filter.Direction != "" {
		query = query.Where("trips.direction = ?", filter.Direction)
	}
	if filter.DateFrom != nil {
		query = query.Where("trips.trip_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("trips.trip_date <= ?", *filter.DateTo)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	} else {
		query = query.Limit(200)
	}

	var trips []model.Trip
	if err := query.
		Order("trips.trip_date ASC").
		Order("trips.departure_time ASC").
		Preload("Route").
		Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	var trip model.Trip
	if err := r.db.WithContext(ctx).
		Preload("Route").
		First(&trip, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

// ListTripStops returns the stops attached to the trip itself.
func (r *TripRepository) ListTripStops(ctx context.Context, tripID uuid.UUID) ([]model.StopPoint, error) {
	var stops []model.StopPoint
	if err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("order_index ASC").
		Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}

// ListRouteStops returns the default stops of a route.
func (r *TripRepository) ListRouteStops(ctx context.Context, routeID uuid.UUID) ([]model.StopPoint, error) {
	var stops []model.StopPoint
	if err := r.db.WithContext(ctx).
		Where("route_id = ? AND trip_id IS NULL", routeID).
		Order("order_index ASC").
		Find(&stops).Error; err != nil {
		return nil, err
	}
	return stops, nil
}
