// Package notify delivers request notifications. Delivery is best effort:
// the Dispatcher logs and counts failures and never reports them to callers.
package notify

import (
	"context"

	"visit-service/internal/model"
)

type Gateway interface {
	Name() string
	Notify(ctx context.Context, n model.Notification) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// StoreGateway persists notifications so clients can list them later.
type StoreGateway struct {
	store NotificationStore
}

func NewStoreGateway(store NotificationStore) *StoreGateway {
	return &StoreGateway{store: store}
}

func (g *StoreGateway) Name() string {
	return "store"
}

func (g *StoreGateway) Notify(ctx context.Context, n model.Notification) error {
	return g.store.Create(ctx, &n)
}
