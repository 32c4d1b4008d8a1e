package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visit-service/internal/model"
	"visit-service/internal/noteslog"
)

type mockLegacyStore struct {
	mock.Mock
}

func (m *mockLegacyStore) ListWithLegacyNotes(ctx context.Context, after uuid.UUID, limit int) ([]model.VisitRequest, error) {
	args := m.Called(ctx, after, limit)
	if v := args.Get(0); v != nil {
		return v.([]model.VisitRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLegacyStore) CountEvents(ctx context.Context, requestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLegacyStore) Save(ctx context.Context, next *model.VisitRequest, fromVersion int64, events []model.RequestEvent) error {
	args := m.Called(ctx, next, fromVersion, events)
	return args.Error(0)
}

func legacyLog() string {
	ts := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	log := "رقم الهاتف: 0791234567\nصورة الدفع: https://cdn.example.com/receipt.jpg"
	log = noteslog.Append(log, noteslog.MarkerAdminResponse, "received", ts)
	log = noteslog.Append(log, noteslog.MarkerAdminBooking, "trip on 2024-03-10", ts.Add(time.Hour))
	log = noteslog.Append(log, noteslog.MarkerAdminResponse, "تم تأكيد الحجز", ts.Add(2*time.Hour))
	return log
}

func TestConvertLegacyNotes(t *testing.T) {
	im := NewNotesImporter(&mockLegacyStore{}, time.UTC, zerolog.Nop(), false)
	tripID := uuid.New()
	req := model.VisitRequest{
		ID:         uuid.New(),
		Status:     model.RequestStatusApproved,
		TripID:     &tripID,
		AdminNotes: legacyLog(),
		CreatedAt:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
	}

	next, events, err := im.Convert(req)
	require.NoError(t, err)

	assert.Equal(t, "0791234567", next.Phone)
	require.NotNil(t, next.BookingConfirmedAt)
	assert.Equal(t, req.UpdatedAt, *next.BookingConfirmedAt)
	assert.Equal(t, model.TripStatusPendingArrival, next.TripStatus)
	assert.False(t, next.IsDraft)

	require.Len(t, events, 5)
	assert.Equal(t, model.EventApplicantNote, events[0].Kind)
	var note model.NotePayload
	require.NoError(t, events[0].DecodePayload(&note))
	assert.Equal(t, noteslog.KeyPhone, note.Key)

	assert.Equal(t, model.EventPaymentImage, events[1].Kind)
	assert.Equal(t, model.EventAdminResponse, events[2].Kind)
	assert.Equal(t, "received", events[2].Body)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), events[2].CreatedAt.Truncate(time.Minute))
	assert.Equal(t, model.EventAdminBooking, events[3].Kind)
	assert.Equal(t, model.EventAdminResponse, events[4].Kind)
	assert.True(t, events[4].CreatedAt.After(events[3].CreatedAt))
}

func TestConvertKeepsPhysicalOrderForUndatedSections(t *testing.T) {
	im := NewNotesImporter(&mockLegacyStore{}, time.UTC, zerolog.Nop(), false)
	ts := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	log := noteslog.Append("", noteslog.MarkerAdminResponse, "first", ts)
	log = noteslog.Append(log, noteslog.MarkerAdminResponse, "second", time.Time{})
	log = noteslog.Append(log, noteslog.MarkerAdminResponse, "third", ts.AddDate(0, 0, -1))
	log = noteslog.Append(log, noteslog.MarkerAdminResponse, "fourth", ts.Add(time.Hour))

	req := model.VisitRequest{
		ID:         uuid.New(),
		AdminNotes: log,
		CreatedAt:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	_, events, err := im.Convert(req)
	require.NoError(t, err)
	require.Len(t, events, 4)

	for i := 1; i < len(events); i++ {
		assert.True(t, events[i].CreatedAt.After(events[i-1].CreatedAt), "event %d", i)
	}
	assert.Equal(t, ts, events[0].CreatedAt)
	assert.Equal(t, ts.Add(time.Microsecond), events[1].CreatedAt)
	assert.Equal(t, ts.Add(2*time.Microsecond), events[2].CreatedAt)
	assert.Equal(t, ts.Add(time.Hour), events[3].CreatedAt)

	// The newest imported event agrees with the log's own latest entry.
	legacyLatest, ok := noteslog.ExtractLatest(log, noteslog.MarkerAdminResponse)
	require.True(t, ok)
	newest := events[0]
	for _, e := range events[1:] {
		if e.CreatedAt.After(newest.CreatedAt) {
			newest = e
		}
	}
	assert.Equal(t, legacyLatest.Body, newest.Body)

	// Same check when the undated entry is the last one.
	log = noteslog.Append(noteslog.Append("", noteslog.MarkerAdminResponse, "dated", ts), noteslog.MarkerAdminResponse, "undated", time.Time{})
	_, events, err = im.Convert(model.VisitRequest{ID: uuid.New(), AdminNotes: log, CreatedAt: req.CreatedAt})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "undated", events[1].Body)
	assert.True(t, events[1].CreatedAt.After(events[0].CreatedAt))
}

func TestConvertDraft(t *testing.T) {
	im := NewNotesImporter(&mockLegacyStore{}, nil, zerolog.Nop(), false)
	next, events, err := im.Convert(model.VisitRequest{ID: uuid.New(), AdminNotes: "[DRAFT]"})
	require.NoError(t, err)
	assert.True(t, next.IsDraft)
	assert.Empty(t, events)
}

func TestImporterRun(t *testing.T) {
	store := &mockLegacyStore{}
	im := NewNotesImporter(store, time.UTC, zerolog.Nop(), false)

	fresh := model.VisitRequest{ID: uuid.New(), Version: 2, AdminNotes: legacyLog()}
	done := model.VisitRequest{ID: uuid.New(), Version: 5, AdminNotes: legacyLog()}
	empty := model.VisitRequest{ID: uuid.New(), Version: 1, AdminNotes: "free text"}

	store.On("ListWithLegacyNotes", mock.Anything, uuid.Nil, 100).Return([]model.VisitRequest{fresh, done, empty}, nil)
	store.On("CountEvents", mock.Anything, fresh.ID).Return(int64(0), nil)
	store.On("CountEvents", mock.Anything, done.ID).Return(int64(3), nil)
	store.On("CountEvents", mock.Anything, empty.ID).Return(int64(0), nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(r *model.VisitRequest) bool { return r.ID == fresh.ID }), int64(2), mock.Anything).Return(nil).Once()

	stats, err := im.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Scanned)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 5, stats.Events)
	store.AssertExpectations(t)
}

func TestImporterDryRun(t *testing.T) {
	store := &mockLegacyStore{}
	im := NewNotesImporter(store, time.UTC, zerolog.Nop(), true)
	req := model.VisitRequest{ID: uuid.New(), AdminNotes: legacyLog()}

	store.On("ListWithLegacyNotes", mock.Anything, uuid.Nil, 100).Return([]model.VisitRequest{req}, nil)
	store.On("CountEvents", mock.Anything, req.ID).Return(int64(0), nil)

	stats, err := im.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Imported)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
