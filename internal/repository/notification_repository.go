package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"visit-service/internal/model"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListForPrincipal returns notifications addressed to the user directly or to
// their role, newest first.
func (r *NotificationRepository) ListForPrincipal(ctx context.Context, principal model.Principal, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("(user_id = ? OR audience = ?)", principal.UserID, principal.Role)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if limit <= 0 {
		limit = 50
	}

	var items []model.Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead flags a notification addressed directly to userID as read.
// Role broadcasts cannot be marked read per user.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
