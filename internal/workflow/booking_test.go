package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visit-service/internal/model"
)

var now = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func approvedRequest() model.VisitRequest {
	req := pendingRequest(1)
	req.Status = model.RequestStatusApproved
	return req
}

func trip(dir model.Direction, date time.Time) model.Trip {
	return model.Trip{ID: uuid.New(), Direction: dir, TripDate: date, IsActive: true}
}

func stop(name string, kind model.StopKind) model.StopPoint {
	routeID := uuid.New()
	return model.StopPoint{ID: uuid.New(), RouteID: &routeID, Name: name, Kind: kind}
}

func TestExpectedDepartureAndWindow(t *testing.T) {
	arrival := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), ExpectedDeparture(arrival))

	w := DepartureWindow(arrival, 7)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2024, 4, 17, 0, 0, 0, 0, time.UTC), w.To)
	assert.True(t, w.Contains(w.From))
	assert.True(t, w.Contains(w.To))
	assert.False(t, w.Contains(w.To.AddDate(0, 0, 1)))

	// Month overflow normalizes forward.
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), ExpectedDeparture(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)))
}

func TestResolveStops(t *testing.T) {
	own := []model.StopPoint{{ID: uuid.New(), Name: "gate"}}
	defaults := []model.StopPoint{
		stop("airport", model.StopKindDropoff),
		stop("hotel", model.StopKindPickup),
		stop("square", model.StopKindBoth),
		stop("station", ""),
	}

	assert.Equal(t, own, ResolveStops(own, defaults, model.DirectionArrival))

	arrival := ResolveStops(nil, defaults, model.DirectionArrival)
	require.Len(t, arrival, 3)
	assert.Equal(t, "airport", arrival[0].Name)

	departure := ResolveStops(nil, defaults, model.DirectionDeparture)
	require.Len(t, departure, 3)
	assert.Equal(t, "hotel", departure[0].Name)

	assert.Empty(t, ResolveStops(nil, nil, model.DirectionArrival))
}

func TestSelfServiceArrivalReturnsDepartureWindow(t *testing.T) {
	m := newMachine()
	tr := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	offered := []model.StopPoint{stop("airport", model.StopKindDropoff)}

	out, err := m.Book(approvedRequest(), applicant, BookingCommand{Trip: tr, Leg: model.DirectionArrival, StopID: &offered[0].ID, Offered: offered}, now)
	require.NoError(t, err)

	next := out.Request
	require.NotNil(t, next.ArrivalTripID)
	assert.Equal(t, tr.ID, *next.ArrivalTripID)
	assert.Equal(t, tr.ID, *next.TripID)
	assert.Equal(t, offered[0].ID, *next.SelectedDropoffStopID)
	assert.Equal(t, model.TripStatusScheduledPendingApproval, next.TripStatus)
	require.NotNil(t, out.ExpectedDeparture)
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), *out.ExpectedDeparture)
	require.NotNil(t, out.DepartureWindow)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), out.DepartureWindow.From)

	// First booking is not a modification.
	assert.Empty(t, out.Events)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, model.UserRoleAdmin, out.Notices[0].Audience)
}

func TestUmrahArrivalHasNoDepartureWindow(t *testing.T) {
	req := approvedRequest()
	req.VisitType = model.VisitTypeUmrah
	tr := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	out, err := newMachine().Book(req, applicant, BookingCommand{Trip: tr, Leg: model.DirectionArrival}, now)
	require.NoError(t, err)
	assert.Nil(t, out.ExpectedDeparture)
	assert.Nil(t, out.DepartureWindow)
	assert.Nil(t, out.Request.SelectedDropoffStopID)
}

func TestRebookingAppendsOneModification(t *testing.T) {
	m := newMachine()
	first := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	second := trip(model.DirectionArrival, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))

	out, err := m.Book(approvedRequest(), applicant, BookingCommand{Trip: first, Leg: model.DirectionArrival}, now)
	require.NoError(t, err)

	same, err := m.Book(out.Request, applicant, BookingCommand{Trip: first, Leg: model.DirectionArrival}, now)
	require.NoError(t, err)
	assert.Empty(t, same.Events)

	changed, err := m.Book(out.Request, applicant, BookingCommand{Trip: second, Leg: model.DirectionArrival}, now)
	require.NoError(t, err)
	require.Len(t, changed.Events, 1)
	event := changed.Events[0]
	assert.Equal(t, model.EventBookingModification, event.Kind)

	var payload model.BookingPayload
	require.NoError(t, event.DecodePayload(&payload))
	require.NotNil(t, payload.OldTripID)
	assert.Equal(t, first.ID, *payload.OldTripID)
	assert.Equal(t, second.ID, payload.NewTripID)
	assert.Equal(t, "2024-03-12", payload.TripDate)
}

func TestDepartureLegDoesNotCountAsArrivalChange(t *testing.T) {
	m := newMachine()
	arrival := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	departure := trip(model.DirectionDeparture, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	out, err := m.Book(approvedRequest(), applicant, BookingCommand{Trip: arrival, Leg: model.DirectionArrival}, now)
	require.NoError(t, err)

	out, err = m.Book(out.Request, applicant, BookingCommand{Trip: departure, Leg: model.DirectionDeparture}, now)
	require.NoError(t, err)
	assert.Empty(t, out.Events)
	assert.Equal(t, arrival.ID, *out.Request.ArrivalTripID)
	assert.Equal(t, departure.ID, *out.Request.DepartureTripID)
	assert.Equal(t, departure.ID, *out.Request.TripID)
}

func TestSingleLegRebookingAcrossLegsRecordsModification(t *testing.T) {
	m := newMachine()
	req := approvedRequest()
	req.VisitType = model.VisitTypeUmrah
	arrival := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	departure := trip(model.DirectionDeparture, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))

	out, err := m.Book(req, applicant, BookingCommand{Trip: arrival, Leg: model.DirectionArrival}, now)
	require.NoError(t, err)
	assert.Empty(t, out.Events)

	out, err = m.Book(out.Request, applicant, BookingCommand{Trip: departure, Leg: model.DirectionDeparture}, now)
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, model.EventBookingModification, out.Events[0].Kind)

	var payload model.BookingPayload
	require.NoError(t, out.Events[0].DecodePayload(&payload))
	require.NotNil(t, payload.OldTripID)
	assert.Equal(t, arrival.ID, *payload.OldTripID)
	assert.Equal(t, departure.ID, payload.NewTripID)

	next := out.Request
	assert.Equal(t, departure.ID, *next.TripID)
	assert.Equal(t, departure.ID, *next.DepartureTripID)
	assert.Nil(t, next.ArrivalTripID)
	assert.Nil(t, next.ArrivalDate)

	// Rebooking the same trip is still not a change.
	same, err := m.Book(next, applicant, BookingCommand{Trip: departure, Leg: model.DirectionDeparture}, now)
	require.NoError(t, err)
	assert.Empty(t, same.Events)
}

func TestStaffBookingAppendsAdminBooking(t *testing.T) {
	tr := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	offered := []model.StopPoint{stop("airport", model.StopKindDropoff)}

	out, err := newMachine().Book(approvedRequest(), admin, BookingCommand{Trip: tr, Leg: model.DirectionArrival, StopID: &offered[0].ID, Offered: offered}, now)
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, model.EventAdminBooking, out.Events[0].Kind)
	assert.Contains(t, out.Events[0].Body, "airport")
	require.Len(t, out.Notices, 1)
	assert.Equal(t, applicant.UserID, *out.Notices[0].UserID)
	assert.Nil(t, out.ExpectedDeparture)
}

func TestBookingPreconditions(t *testing.T) {
	m := newMachine()
	tr := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	cmd := BookingCommand{Trip: tr, Leg: model.DirectionArrival}

	stranger := model.Principal{UserID: uuid.New(), Role: model.UserRoleApplicant}
	_, err := m.Book(approvedRequest(), stranger, cmd, now)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = m.Book(approvedRequest(), supervisor, cmd, now)
	assert.ErrorIs(t, err, ErrForbidden)

	pending := approvedRequest()
	pending.Status = model.RequestStatusUnderReview
	_, err = m.Book(pending, applicant, cmd, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	wrongLeg := cmd
	wrongLeg.Leg = model.DirectionDeparture
	_, err = m.Book(approvedRequest(), applicant, wrongLeg, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	unknownStop := cmd
	id := uuid.New()
	unknownStop.StopID = &id
	_, err = m.Book(approvedRequest(), applicant, unknownStop, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	stale := BookingCommand{Trip: trip(model.DirectionArrival, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)), Leg: model.DirectionArrival}
	_, err = m.Book(approvedRequest(), applicant, stale, now)
	assert.ErrorIs(t, err, ErrStaleTrip)

	today := BookingCommand{Trip: trip(model.DirectionArrival, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), Leg: model.DirectionArrival}
	_, err = m.Book(approvedRequest(), applicant, today, now)
	assert.NoError(t, err)
}

func TestStaleTripUsesConfiguredLocation(t *testing.T) {
	m := NewMachine(10, 7, time.FixedZone("UTC+3", 3*60*60))

	// 23:30 UTC on Mar 1 is already Mar 2 at UTC+3.
	late := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	tr := trip(model.DirectionArrival, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	_, err := m.Book(approvedRequest(), applicant, BookingCommand{Trip: tr, Leg: model.DirectionArrival}, late)
	assert.ErrorIs(t, err, ErrStaleTrip)
}

func TestConfirmLocksBooking(t *testing.T) {
	m := newMachine()
	tr := trip(model.DirectionArrival, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	_, err := m.Confirm(approvedRequest(), admin, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	booked, err := m.Book(approvedRequest(), applicant, BookingCommand{Trip: tr, Leg: model.DirectionArrival}, now)
	require.NoError(t, err)

	_, err = m.Confirm(booked.Request, supervisor, now)
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := m.Confirm(booked.Request, admin, now)
	require.NoError(t, err)
	assert.True(t, confirmed.Request.BookingConfirmed())
	assert.Equal(t, model.TripStatusPendingArrival, confirmed.Request.TripStatus)
	require.Len(t, confirmed.Events, 1)
	assert.Contains(t, confirmed.Events[0].Body, "تم تأكيد الحجز")
	assert.Contains(t, confirmed.Events[0].Body, "2024-03-10")

	other := trip(model.DirectionArrival, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	out, err := m.Book(confirmed.Request, applicant, BookingCommand{Trip: other, Leg: model.DirectionArrival}, now)
	assert.ErrorIs(t, err, ErrBookingConfirmed)
	assert.Nil(t, out)
	assert.Equal(t, tr.ID, *confirmed.Request.ArrivalTripID)

	_, err = m.Confirm(confirmed.Request, admin, now)
	assert.ErrorIs(t, err, ErrBookingConfirmed)
}
