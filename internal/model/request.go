package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending     RequestStatus = "pending"
	RequestStatusUnderReview RequestStatus = "under_review"
	RequestStatusApproved    RequestStatus = "approved"
	RequestStatusRejected    RequestStatus = "rejected"
	RequestStatusCompleted   RequestStatus = "completed"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusUnderReview, RequestStatusApproved, RequestStatusRejected, RequestStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no forward transition leaves the status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusRejected || s == RequestStatusCompleted
}

type VisitType string

const (
	VisitTypeVisit   VisitType = "visit"
	VisitTypeUmrah   VisitType = "umrah"
	VisitTypeTourism VisitType = "tourism"
	VisitTypeOther   VisitType = "other"
)

func (t VisitType) Valid() bool {
	switch t {
	case VisitTypeVisit, VisitTypeUmrah, VisitTypeTourism, VisitTypeOther:
		return true
	}
	return false
}

type TripStatus string

const (
	TripStatusNone                     TripStatus = ""
	TripStatusScheduledPendingApproval TripStatus = "scheduled_pending_approval"
	TripStatusPendingArrival           TripStatus = "pending_arrival"
)

type VisitRequest struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	VisitorName     string        `gorm:"type:varchar(255);not null" json:"visitor_name"`
	VisitType       VisitType     `gorm:"type:varchar(32);not null" json:"visit_type"`
	CompanionsCount int           `gorm:"not null;default:0" json:"companions_count"`
	Phone           string        `gorm:"type:varchar(32)" json:"phone"`
	Purpose         string        `gorm:"type:text" json:"purpose"`
	Status          RequestStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	RejectionReason *string       `gorm:"type:text" json:"rejection_reason"`
	IsDraft         bool          `gorm:"not null;default:false" json:"is_draft"`

	DepositPaid     bool     `gorm:"not null;default:false" json:"deposit_paid"`
	DepositAmount   *float64 `json:"deposit_amount"`
	PaymentVerified bool     `gorm:"not null;default:false" json:"payment_verified"`
	RemainingAmount *float64 `json:"remaining_amount"`
	TotalAmount     *float64 `json:"total_amount"`

	AssignedTo *uuid.UUID `gorm:"type:uuid;index" json:"assigned_to"`

	TripID                *uuid.UUID `gorm:"type:uuid" json:"trip_id"`
	ArrivalTripID         *uuid.UUID `gorm:"type:uuid" json:"arrival_trip_id"`
	DepartureTripID       *uuid.UUID `gorm:"type:uuid" json:"departure_trip_id"`
	ArrivalDate           *time.Time `gorm:"type:date" json:"arrival_date"`
	DepartureDate         *time.Time `gorm:"type:date" json:"departure_date"`
	TripStatus            TripStatus `gorm:"type:varchar(64)" json:"trip_status"`
	SelectedDropoffStopID *uuid.UUID `gorm:"type:uuid" json:"selected_dropoff_stop_id"`
	SelectedPickupStopID  *uuid.UUID `gorm:"type:uuid" json:"selected_pickup_stop_id"`
	BookingConfirmedAt    *time.Time `json:"booking_confirmed_at"`

	// AdminNotes is the legacy free-text journal; only the notes importer reads it.
	AdminNotes string `gorm:"type:text" json:"-"`

	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	// UpdatedAt is stamped by the repository on every write.
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (VisitRequest) TableName() string {
	return "visit_requests"
}

func (r *VisitRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}

// PartySize counts the applicant together with the companions.
func (r *VisitRequest) PartySize() int {
	if r.CompanionsCount < 0 {
		return 1
	}
	return r.CompanionsCount + 1
}

func (r *VisitRequest) BookingConfirmed() bool {
	return r.BookingConfirmedAt != nil
}

func (r *VisitRequest) IsAssignedTo(userID uuid.UUID) bool {
	return r.AssignedTo != nil && *r.AssignedTo == userID
}

// MutableColumns lists the columns a version-checked save rewrites.
var MutableColumns = []string{
	"status",
	"rejection_reason",
	"is_draft",
	"deposit_paid",
	"deposit_amount",
	"payment_verified",
	"remaining_amount",
	"total_amount",
	"assigned_to",
	"trip_id",
	"arrival_trip_id",
	"departure_trip_id",
	"arrival_date",
	"departure_date",
	"trip_status",
	"selected_dropoff_stop_id",
	"selected_pickup_stop_id",
	"booking_confirmed_at",
	"phone",
	"purpose",
	"version",
	"updated_at",
}
