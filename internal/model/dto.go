package model

import (
	"time"

	"github.com/google/uuid"
)

type ResponseBrief struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type RequestRecord struct {
	Request        VisitRequest   `json:"request"`
	LatestResponse *ResponseBrief `json:"latest_response"`
}

type DateWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains is inclusive on both ends.
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

type BookingResult struct {
	Request           VisitRequest `json:"request"`
	Trip              Trip         `json:"trip"`
	Stop              *StopPoint   `json:"stop"`
	ExpectedDeparture *time.Time   `json:"expected_departure,omitempty"`
	DepartureWindow   *DateWindow  `json:"departure_window,omitempty"`
}

type DepartureOptions struct {
	ExpectedDeparture time.Time  `json:"expected_departure"`
	Window            DateWindow `json:"window"`
	Trips             []Trip     `json:"trips"`
}

func NewResponseBrief(e RequestEvent) *ResponseBrief {
	return &ResponseBrief{ID: e.ID, Body: e.Body, CreatedAt: e.CreatedAt}
}
