package model

import (
	"time"

	"github.com/google/uuid"
)

// Direction is both a trip direction and a booking leg.
type Direction string

const (
	DirectionArrival   Direction = "arrival"
	DirectionDeparture Direction = "departure"
)

func (d Direction) Valid() bool {
	return d == DirectionArrival || d == DirectionDeparture
}

type StopKind string

const (
	StopKindPickup  StopKind = "pickup"
	StopKindDropoff StopKind = "dropoff"
	StopKindBoth    StopKind = "both"
)

// ServesLeg reports whether a stop of this kind is offered for the leg.
// Untyped stops are offered for both legs.
func (k StopKind) ServesLeg(leg Direction) bool {
	switch k {
	case "", StopKindBoth:
		return true
	case StopKindDropoff:
		return leg == DirectionArrival
	case StopKindPickup:
		return leg == DirectionDeparture
	}
	return false
}

type Route struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	IsActive bool      `gorm:"not null;default:true" json:"is_active"`
}

func (Route) TableName() string {
	return "routes"
}

type Trip struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RouteID       *uuid.UUID `gorm:"type:uuid;index" json:"route_id"`
	Direction     Direction  `gorm:"type:varchar(16);not null" json:"direction"`
	TripDate      time.Time  `gorm:"type:date;not null;index" json:"trip_date"`
	MeetingTime   string     `gorm:"type:varchar(8)" json:"meeting_time"`
	DepartureTime string     `gorm:"type:varchar(8)" json:"departure_time"`
	StartLocation string     `gorm:"type:varchar(255)" json:"start_location"`
	EndLocation   string     `gorm:"type:varchar(255)" json:"end_location"`
	StartLat      *float64   `json:"start_lat"`
	StartLng      *float64   `json:"start_lng"`
	EndLat        *float64   `json:"end_lat"`
	EndLng        *float64   `json:"end_lng"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Route *Route `gorm:"foreignKey:RouteID" json:"route,omitempty"`
}

func (Trip) TableName() string {
	return "trips"
}

// StopPoint is either a trip's own stop (TripID set) or a route default (RouteID set, TripID nil).
type StopPoint struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TripID     *uuid.UUID `gorm:"type:uuid;index" json:"trip_id"`
	RouteID    *uuid.UUID `gorm:"type:uuid;index" json:"route_id"`
	Name       string     `gorm:"type:varchar(255);not null" json:"name"`
	OrderIndex int        `gorm:"not null;default:0" json:"order_index"`
	Lat        *float64   `json:"lat"`
	Lng        *float64   `json:"lng"`
	Kind       StopKind   `gorm:"type:varchar(16)" json:"kind"`
}

func (StopPoint) TableName() string {
	return "stop_points"
}
