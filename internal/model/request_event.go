package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventKind string

const (
	EventAdminResponse       EventKind = "admin_response"
	EventAdminBooking        EventKind = "admin_booking"
	EventBookingModification EventKind = "booking_modification"
	EventAdminCreated        EventKind = "admin_created"
	EventPaymentImage        EventKind = "payment_image"
	EventApplicantNote       EventKind = "applicant_note"
)

// ApplicantVisible reports whether the applicant may read events of this kind.
func (k EventKind) ApplicantVisible() bool {
	switch k {
	case EventAdminResponse, EventBookingModification, EventPaymentImage, EventApplicantNote:
		return true
	}
	return false
}

// RequestEvent is one immutable row of a request's journal.
type RequestEvent struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID  `gorm:"type:uuid;not null;index:idx_request_events_order,priority:1" json:"request_id"`
	Kind      EventKind  `gorm:"type:varchar(32);not null;index:idx_request_events_order,priority:2" json:"kind"`
	Body      string     `gorm:"type:text" json:"body"`
	Payload   string     `gorm:"type:text" json:"payload,omitempty"`
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	// Seq orders a request's events by insertion; it is assigned inside the
	// version-checked write, so it does not depend on any server clock.
	Seq       int64      `gorm:"not null;default:0;index:idx_request_events_order,priority:3" json:"seq"`
	CreatedAt time.Time  `json:"created_at"`
}

func (RequestEvent) TableName() string {
	return "request_events"
}

func (e *RequestEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// BookingPayload is stored with admin_booking and booking_modification events.
type BookingPayload struct {
	Leg       Direction  `json:"leg"`
	OldTripID *uuid.UUID `json:"old_trip_id,omitempty"`
	NewTripID uuid.UUID  `json:"new_trip_id"`
	StopID    *uuid.UUID `json:"stop_id,omitempty"`
	StopName  string     `json:"stop_name,omitempty"`
	TripDate  string     `json:"trip_date"`
}

type PaymentPayload struct {
	ImageURL string `json:"image_url"`
}

type NotePayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewEvent builds an unsaved event; a nil payload leaves Payload empty.
func NewEvent(requestID uuid.UUID, kind EventKind, body string, actor *uuid.UUID, payload interface{}) (RequestEvent, error) {
	event := RequestEvent{
		RequestID: requestID,
		Kind:      kind,
		Body:      body,
		ActorID:   actor,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return RequestEvent{}, err
		}
		event.Payload = string(raw)
	}
	return event, nil
}

// DecodePayload unmarshals the event payload into dst.
func (e RequestEvent) DecodePayload(dst interface{}) error {
	if e.Payload == "" {
		return nil
	}
	return json.Unmarshal([]byte(e.Payload), dst)
}
