package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"visit-service/internal/metrics"
	"visit-service/internal/model"
	"visit-service/internal/repository"
	"visit-service/internal/workflow"
)

// BookingService binds approved requests to trips.
type BookingService struct {
	committer
	catalog *CatalogService
	machine workflow.Machine
	log     zerolog.Logger
	now     func() time.Time
}

func NewBookingService(requests RequestStore, catalog *CatalogService, notifier Notifier, machine workflow.Machine, log zerolog.Logger) *BookingService {
	return &BookingService{
		committer: committer{requests: requests, notifier: notifier},
		catalog:   catalog,
		machine:   machine,
		log:       log,
		now:       time.Now,
	}
}

type BookLegInput struct {
	TripID uuid.UUID
	StopID *uuid.UUID
	Leg    model.Direction
}

func (s *BookingService) BookLeg(ctx context.Context, principal model.Principal, requestID uuid.UUID, input BookLegInput) (*model.BookingResult, error) {
	if !input.Leg.Valid() {
		return nil, fmt.Errorf("%w: unknown leg %q", ErrInvalidInput, input.Leg)
	}
	req, err := loadRequest(ctx, s.requests, principal, requestID)
	if err != nil {
		return nil, err
	}
	trip, err := s.catalog.GetTrip(ctx, input.TripID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown trip", ErrInvalidInput)
		}
		return nil, err
	}
	offered, err := s.catalog.stopsFor(ctx, trip, input.Leg)
	if err != nil {
		return nil, err
	}

	out, err := s.machine.Book(*req, principal, workflow.BookingCommand{
		Trip:    *trip,
		Leg:     input.Leg,
		StopID:  input.StopID,
		Offered: offered,
	}, s.now())
	if err != nil {
		return nil, err
	}

	next, err := s.save(ctx, req.Version, &out.Outcome)
	if err != nil {
		return nil, err
	}

	initiator := "staff"
	if principal.IsApplicant() {
		initiator = "applicant"
	}
	metrics.IncBooking(string(input.Leg), initiator)
	s.log.Info().
		Str("request_id", next.ID.String()).
		Str("trip_id", trip.ID.String()).
		Str("leg", string(input.Leg)).
		Str("initiator", initiator).
		Msg("trip booked")

	return &model.BookingResult{
		Request:           *next,
		Trip:              *trip,
		Stop:              out.Stop,
		ExpectedDeparture: out.ExpectedDeparture,
		DepartureWindow:   out.DepartureWindow,
	}, nil
}

// ConfirmBooking makes the current booking final; later booking changes fail.
func (s *BookingService) ConfirmBooking(ctx context.Context, principal model.Principal, requestID uuid.UUID) (*model.VisitRequest, error) {
	req, err := loadRequest(ctx, s.requests, principal, requestID)
	if err != nil {
		return nil, err
	}
	out, err := s.machine.Confirm(*req, principal, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.save(ctx, req.Version, out)
}

// DepartureOptions lists return trips around the expected departure of a
// booked arrival. Trips already in the past are left out.
func (s *BookingService) DepartureOptions(ctx context.Context, principal model.Principal, requestID uuid.UUID) (*model.DepartureOptions, error) {
	req, err := visibleRequest(ctx, s.requests, principal, requestID)
	if err != nil {
		return nil, err
	}
	if req.ArrivalDate == nil {
		return nil, fmt.Errorf("%w: arrival is not booked", ErrInvalidStatus)
	}

	expected := workflow.ExpectedDeparture(*req.ArrivalDate)
	window := s.catalog.DepartureWindow(*req.ArrivalDate)

	from := window.From
	if today := s.machine.Today(s.now()); from.Before(today) {
		from = today
	}
	options := &model.DepartureOptions{ExpectedDeparture: expected, Window: window, Trips: []model.Trip{}}
	if from.After(window.To) {
		return options, nil
	}

	trips, err := s.catalog.trips.ListUpcoming(ctx, repository.TripFilter{
		Direction: model.DirectionDeparture,
		DateFrom:  &from,
		DateTo:    &window.To,
	})
	if err != nil {
		return nil, err
	}
	options.Trips = trips
	return options, nil
}
