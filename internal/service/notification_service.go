package service

import (
	"context"

	"github.com/google/uuid"

	"visit-service/internal/model"
)

type NotificationInbox interface {
	ListForPrincipal(ctx context.Context, principal model.Principal, unreadOnly bool, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

type NotificationService struct {
	inbox NotificationInbox
}

func NewNotificationService(inbox NotificationInbox) *NotificationService {
	return &NotificationService{inbox: inbox}
}

func (s *NotificationService) List(ctx context.Context, principal model.Principal, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := s.inbox.ListForPrincipal(ctx, principal, unreadOnly, limit)
	if err != nil {
		return nil, storeError(err)
	}
	return items, nil
}

// MarkRead only touches notifications addressed to the caller personally.
func (s *NotificationService) MarkRead(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	return storeError(s.inbox.MarkRead(ctx, principal.UserID, id))
}
