package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	NotificationStatusChange NotificationKind = "status_change"
	NotificationBooking      NotificationKind = "booking"
	NotificationAssignment   NotificationKind = "assignment"
	NotificationMessage      NotificationKind = "message"
	NotificationPayment      NotificationKind = "payment"
)

// Notification targets either one user (UserID) or every user of a role (Audience).
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	Audience  UserRole         `gorm:"type:varchar(32)" json:"audience,omitempty"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Kind      NotificationKind `gorm:"type:varchar(32);not null" json:"kind"`
	RequestID *uuid.UUID       `gorm:"type:uuid" json:"request_id"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
