package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"visit-service/internal/model"
	"visit-service/internal/repository"
)

type mockRequestStore struct {
	mock.Mock
}

func (m *mockRequestStore) List(ctx context.Context, filter repository.RequestFilter) ([]model.VisitRequest, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]model.VisitRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*model.VisitRequest, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		// Hand out a copy so the service cannot mutate the fixture.
		req := *v.(*model.VisitRequest)
		return &req, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestStore) Create(ctx context.Context, req *model.VisitRequest, events []model.RequestEvent) error {
	args := m.Called(ctx, req, events)
	return args.Error(0)
}

func (m *mockRequestStore) Save(ctx context.Context, next *model.VisitRequest, fromVersion int64, events []model.RequestEvent) error {
	args := m.Called(ctx, next, fromVersion, events)
	if err := args.Error(0); err != nil {
		return err
	}
	next.Version = fromVersion + 1
	return nil
}

func (m *mockRequestStore) ListEvents(ctx context.Context, requestID uuid.UUID, kinds ...model.EventKind) ([]model.RequestEvent, error) {
	args := m.Called(ctx, requestID, kinds)
	if v := args.Get(0); v != nil {
		return v.([]model.RequestEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestStore) LatestEvent(ctx context.Context, requestID uuid.UUID, kind model.EventKind) (*model.RequestEvent, error) {
	args := m.Called(ctx, requestID, kind)
	if v := args.Get(0); v != nil {
		return v.(*model.RequestEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRequestStore) LatestEventsByRequestIDs(ctx context.Context, ids []uuid.UUID, kind model.EventKind) (map[uuid.UUID]model.RequestEvent, error) {
	args := m.Called(ctx, ids, kind)
	if v := args.Get(0); v != nil {
		return v.(map[uuid.UUID]model.RequestEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockTripStore struct {
	mock.Mock
}

func (m *mockTripStore) ListUpcoming(ctx context.Context, filter repository.TripFilter) ([]model.Trip, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]model.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTripStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Trip, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Trip), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTripStore) ListTripStops(ctx context.Context, tripID uuid.UUID) ([]model.StopPoint, error) {
	args := m.Called(ctx, tripID)
	if v := args.Get(0); v != nil {
		return v.([]model.StopPoint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTripStore) ListRouteStops(ctx context.Context, routeID uuid.UUID) ([]model.StopPoint, error) {
	args := m.Called(ctx, routeID)
	if v := args.Get(0); v != nil {
		return v.([]model.StopPoint), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []model.Notification
}

func (n *recordingNotifier) Send(_ context.Context, items ...model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, items...)
}

func (n *recordingNotifier) sent() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.items...)
}
