package service

import (
	"context"

	"github.com/google/uuid"

	"visit-service/internal/model"
	"visit-service/internal/repository"
	"visit-service/internal/workflow"
)

type RequestStore interface {
	List(ctx context.Context, filter repository.RequestFilter) ([]model.VisitRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.VisitRequest, error)
	Create(ctx context.Context, req *model.VisitRequest, events []model.RequestEvent) error
	Save(ctx context.Context, next *model.VisitRequest, fromVersion int64, events []model.RequestEvent) error
	ListEvents(ctx context.Context, requestID uuid.UUID, kinds ...model.EventKind) ([]model.RequestEvent, error)
	LatestEvent(ctx context.Context, requestID uuid.UUID, kind model.EventKind) (*model.RequestEvent, error)
	LatestEventsByRequestIDs(ctx context.Context, ids []uuid.UUID, kind model.EventKind) (map[uuid.UUID]model.RequestEvent, error)
}

type TripStore interface {
	ListUpcoming(ctx context.Context, filter repository.TripFilter) ([]model.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Trip, error)
	ListTripStops(ctx context.Context, tripID uuid.UUID) ([]model.StopPoint, error)
	ListRouteStops(ctx context.Context, routeID uuid.UUID) ([]model.StopPoint, error)
}

type Notifier interface {
	Send(ctx context.Context, items ...model.Notification)
}

// committer writes a workflow outcome and then hands its notices to the notifier.
type committer struct {
	requests RequestStore
	notifier Notifier
}

func (c committer) create(ctx context.Context, out *workflow.Outcome) (*model.VisitRequest, error) {
	req := out.Request
	if err := c.requests.Create(ctx, &req, out.Events); err != nil {
		return nil, storeError(err)
	}
	c.notify(ctx, req.ID, out.Notices)
	return &req, nil
}

func (c committer) save(ctx context.Context, fromVersion int64, out *workflow.Outcome) (*model.VisitRequest, error) {
	next := out.Request
	if err := c.requests.Save(ctx, &next, fromVersion, out.Events); err != nil {
		return nil, storeError(err)
	}
	c.notify(ctx, next.ID, out.Notices)
	return &next, nil
}

func (c committer) notify(ctx context.Context, requestID uuid.UUID, notices []workflow.Notice) {
	if c.notifier == nil || len(notices) == 0 {
		return
	}
	items := make([]model.Notification, 0, len(notices))
	for _, n := range notices {
		id := requestID
		items = append(items, model.Notification{
			UserID:    n.UserID,
			Audience:  n.Audience,
			Title:     n.Title,
			Message:   n.Message,
			Kind:      n.Kind,
			RequestID: &id,
		})
	}
	c.notifier.Send(ctx, items...)
}
