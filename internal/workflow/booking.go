package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"visit-service/internal/model"
)

const dateLayout = "2006-01-02"

// ExpectedDeparture is one calendar month after arrival.
func ExpectedDeparture(arrival time.Time) time.Time {
	return arrival.AddDate(0, 1, 0)
}

// DepartureWindow spans days on each side of the expected departure.
func DepartureWindow(arrival time.Time, days int) model.DateWindow {
	expected := ExpectedDeparture(arrival)
	return model.DateWindow{
		From: expected.AddDate(0, 0, -days),
		To:   expected.AddDate(0, 0, days),
	}
}

// ResolveStops returns the stops offered for a leg: the trip's own stops when it
// has any, otherwise the route defaults filtered by kind. An empty result means
// the trip has no selectable stop.
func ResolveStops(tripStops, routeStops []model.StopPoint, leg model.Direction) []model.StopPoint {
	if len(tripStops) > 0 {
		return tripStops
	}
	offered := make([]model.StopPoint, 0, len(routeStops))
	for _, stop := range routeStops {
		if stop.Kind.ServesLeg(leg) {
			offered = append(offered, stop)
		}
	}
	return offered
}

type BookingCommand struct {
	Trip model.Trip
	Leg  model.Direction
	// StopID is optional; when set it must be one of Offered.
	StopID  *uuid.UUID
	Offered []model.StopPoint
}

type BookingOutcome struct {
	Outcome
	Stop              *model.StopPoint
	ExpectedDeparture *time.Time
	DepartureWindow   *model.DateWindow
}

// Book binds one leg of a request to a trip.
func (m Machine) Book(req model.VisitRequest, principal model.Principal, cmd BookingCommand, now time.Time) (*BookingOutcome, error) {
	selfService := principal.IsApplicant()
	if selfService {
		if !authorized(actorOwner, req, principal) {
			return nil, ErrForbidden
		}
	} else if !authorized(actorStaff, req, principal) {
		return nil, ErrForbidden
	}
	if req.IsDraft || (req.Status != model.RequestStatusApproved && req.Status != model.RequestStatusCompleted) {
		return nil, ErrInvalidTransition
	}
	if req.BookingConfirmed() {
		return nil, ErrBookingConfirmed
	}
	if !cmd.Leg.Valid() || cmd.Trip.Direction != cmd.Leg || !cmd.Trip.IsActive {
		return nil, ErrInvalidInput
	}
	if m.isPast(cmd.Trip.TripDate, now) {
		return nil, ErrStaleTrip
	}

	var stop *model.StopPoint
	if cmd.StopID != nil {
		for i := range cmd.Offered {
			if cmd.Offered[i].ID == *cmd.StopID {
				s := cmd.Offered[i]
				stop = &s
				break
			}
		}
		if stop == nil {
			return nil, ErrInvalidInput
		}
	}

	next := req
	tripID := cmd.Trip.ID
	tripDate := civilDate(cmd.Trip.TripDate)
	var stopID *uuid.UUID
	if stop != nil {
		id := stop.ID
		stopID = &id
	}

	var priorTrip, priorStop *uuid.UUID
	switch cmd.Leg {
	case model.DirectionArrival:
		priorTrip, priorStop = req.ArrivalTripID, req.SelectedDropoffStopID
		next.ArrivalTripID = &tripID
		next.ArrivalDate = &tripDate
		next.SelectedDropoffStopID = stopID
	case model.DirectionDeparture:
		priorTrip, priorStop = req.DepartureTripID, req.SelectedPickupStopID
		next.DepartureTripID = &tripID
		next.DepartureDate = &tripDate
		next.SelectedPickupStopID = stopID
	}
	switch {
	case req.VisitType != model.VisitTypeVisit:
		// Single-leg types hold one trip whichever leg it is; booking a leg
		// replaces it and clears the other leg.
		priorTrip, priorStop = req.TripID, singleLegStop(req)
		if cmd.Leg == model.DirectionArrival {
			next.DepartureTripID, next.DepartureDate, next.SelectedPickupStopID = nil, nil, nil
		} else {
			next.ArrivalTripID, next.ArrivalDate, next.SelectedDropoffStopID = nil, nil, nil
		}
	case priorTrip == nil && req.ArrivalTripID == nil && req.DepartureTripID == nil:
		// Rows booked before per-leg columns existed only carry trip_id.
		priorTrip = req.TripID
	}
	next.TripID = &tripID
	next.TripStatus = model.TripStatusScheduledPendingApproval

	out := &BookingOutcome{Outcome: Outcome{From: req.Status, To: req.Status}, Stop: stop}
	payload := model.BookingPayload{
		Leg:       cmd.Leg,
		OldTripID: priorTrip,
		NewTripID: tripID,
		StopID:    stopID,
		TripDate:  tripDate.Format(dateLayout),
	}
	if stop != nil {
		payload.StopName = stop.Name
	}
	actorID := principal.UserID
	dateText := tripDate.Format(dateLayout)

	if selfService {
		changed := priorTrip != nil && (*priorTrip != tripID || !sameID(priorStop, stopID))
		if changed {
			body := fmt.Sprintf("%s: %s -> %s", cmd.Leg, priorTrip.String(), tripID.String())
			if payload.StopName != "" {
				body += " (" + payload.StopName + ")"
			}
			if err := out.addEvent(req.ID, model.EventBookingModification, body, &actorID, payload); err != nil {
				return nil, err
			}
		}
		out.Notices = append(out.Notices, adminNotice(titleNewBooking, fmt.Sprintf(msgApplicantBooked, req.VisitorName, dateText), model.NotificationBooking))

		if cmd.Leg == model.DirectionArrival && req.VisitType == model.VisitTypeVisit {
			expected := ExpectedDeparture(tripDate)
			window := DepartureWindow(tripDate, m.DepartureWindowDays)
			out.ExpectedDeparture = &expected
			out.DepartureWindow = &window
		}
	} else {
		body := fmt.Sprintf(msgAdminBooked, dateText)
		if payload.StopName != "" {
			body += " - " + payload.StopName
		}
		if err := out.addEvent(req.ID, model.EventAdminBooking, body, &actorID, payload); err != nil {
			return nil, err
		}
		out.Notices = append(out.Notices, applicantNotice(req, titleBooking, body, model.NotificationBooking))
	}

	out.Request = next
	return out, nil
}

// Confirm makes the current booking final. Afterwards Book always fails.
func (m Machine) Confirm(req model.VisitRequest, principal model.Principal, now time.Time) (*Outcome, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if req.BookingConfirmed() {
		return nil, ErrBookingConfirmed
	}
	if req.TripID == nil || (req.Status != model.RequestStatusApproved && req.Status != model.RequestStatusCompleted) {
		return nil, ErrInvalidTransition
	}

	next := req
	confirmedAt := now
	next.BookingConfirmedAt = &confirmedAt
	next.TripStatus = model.TripStatusPendingArrival

	dateText := ""
	switch {
	case req.ArrivalDate != nil:
		dateText = req.ArrivalDate.Format(dateLayout)
	case req.DepartureDate != nil:
		dateText = req.DepartureDate.Format(dateLayout)
	}
	body := fmt.Sprintf(msgBookingConfirmed, dateText)

	out := &Outcome{From: req.Status, To: req.Status}
	actorID := principal.UserID
	if err := out.addEvent(req.ID, model.EventAdminResponse, body, &actorID, nil); err != nil {
		return nil, err
	}
	out.Notices = append(out.Notices, applicantNotice(req, titleBooking, body, model.NotificationBooking))
	out.Request = next
	return out, nil
}

// Today is the civil date of now in the machine's location, at UTC midnight.
func (m Machine) Today(now time.Time) time.Time {
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (m Machine) isPast(tripDate, now time.Time) bool {
	return civilDate(tripDate).Before(m.Today(now))
}

// civilDate drops the clock part of a stored date column.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// singleLegStop is the stop chosen for the leg trip_id currently points at.
func singleLegStop(req model.VisitRequest) *uuid.UUID {
	if req.TripID != nil && req.DepartureTripID != nil && *req.DepartureTripID == *req.TripID {
		return req.SelectedPickupStopID
	}
	return req.SelectedDropoffStopID
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
