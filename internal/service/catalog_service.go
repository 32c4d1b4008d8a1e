package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"visit-service/internal/model"
	"visit-service/internal/repository"
	"visit-service/internal/workflow"
)

// CatalogService is the read-only trip catalog.
type CatalogService struct {
	trips   TripStore
	machine workflow.Machine
	now     func() time.Time
}

func NewCatalogService(trips TripStore, machine workflow.Machine) *CatalogService {
	return &CatalogService{trips: trips, machine: machine, now: time.Now}
}

type ListTripsOptions struct {
	Direction model.Direction
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
}

// ListUpcoming lists active trips; without a lower bound the window starts today.
func (s *CatalogService) ListUpcoming(ctx context.Context, opts ListTripsOptions) ([]model.Trip, error) {
	if opts.Direction != "" && !opts.Direction.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, opts.Direction)
	}
	from := opts.DateFrom
	if from == nil {
		today := s.machine.Today(s.now())
		from = &today
	}
	if opts.DateTo != nil && opts.DateTo.Before(*from) {
		return nil, fmt.Errorf("%w: date_to before date_from", ErrInvalidInput)
	}
	return s.trips.ListUpcoming(ctx, repository.TripFilter{
		Direction: opts.Direction,
		DateFrom:  from,
		DateTo:    opts.DateTo,
		Limit:     opts.Limit,
	})
}

func (s *CatalogService) GetTrip(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return trip, nil
}

// ListStops returns the stops offered on a trip for a leg. The leg defaults to
// the trip's own direction.
func (s *CatalogService) ListStops(ctx context.Context, tripID uuid.UUID, leg model.Direction) ([]model.StopPoint, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if leg == "" {
		leg = trip.Direction
	}
	if !leg.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, leg)
	}
	return s.stopsFor(ctx, trip, leg)
}

// DepartureWindow is the range of dates a return trip is offered in.
func (s *CatalogService) DepartureWindow(arrival time.Time) model.DateWindow {
	return workflow.DepartureWindow(arrival, s.machine.DepartureWindowDays)
}

func (s *CatalogService) stopsFor(ctx context.Context, trip *model.Trip, leg model.Direction) ([]model.StopPoint, error) {
	own, err := s.trips.ListTripStops(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	var defaults []model.StopPoint
	if len(own) == 0 && trip.RouteID != nil {
		defaults, err = s.trips.ListRouteStops(ctx, *trip.RouteID)
		if err != nil {
			return nil, err
		}
	}
	return workflow.ResolveStops(own, defaults, leg), nil
}
