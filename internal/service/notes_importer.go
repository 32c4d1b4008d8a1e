package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"visit-service/internal/model"
	"visit-service/internal/noteslog"
)

type LegacyNotesStore interface {
	ListWithLegacyNotes(ctx context.Context, after uuid.UUID, limit int) ([]model.VisitRequest, error)
	CountEvents(ctx context.Context, requestID uuid.UUID) (int64, error)
	Save(ctx context.Context, next *model.VisitRequest, fromVersion int64, events []model.RequestEvent) error
}

var markerKinds = map[noteslog.Marker]model.EventKind{
	noteslog.MarkerAdminResponse:       model.EventAdminResponse,
	noteslog.MarkerAdminBooking:        model.EventAdminBooking,
	noteslog.MarkerBookingModification: model.EventBookingModification,
	noteslog.MarkerAdminCreated:        model.EventAdminCreated,
}

type ImportStats struct {
	Scanned  int
	Imported int
	Skipped  int
	Failed   int
	Events   int
}

// NotesImporter turns legacy admin_notes text into typed request events.
// Requests that already have events are skipped, so reruns are safe.
type NotesImporter struct {
	store    LegacyNotesStore
	loc      *time.Location
	log      zerolog.Logger
	pageSize int
	dryRun   bool
}

func NewNotesImporter(store LegacyNotesStore, loc *time.Location, log zerolog.Logger, dryRun bool) *NotesImporter {
	if loc == nil {
		loc = time.UTC
	}
	return &NotesImporter{store: store, loc: loc, log: log, pageSize: 100, dryRun: dryRun}
}

func (im *NotesImporter) Run(ctx context.Context) (ImportStats, error) {
	var stats ImportStats
	after := uuid.Nil
	for {
		page, err := im.store.ListWithLegacyNotes(ctx, after, im.pageSize)
		if err != nil {
			return stats, err
		}
		for i := range page {
			req := page[i]
			stats.Scanned++
			n, err := im.importOne(ctx, &req)
			switch {
			case err != nil:
				stats.Failed++
				im.log.Error().Err(err).Str("request_id", req.ID.String()).Msg("import legacy notes")
			case n < 0:
				stats.Skipped++
			default:
				stats.Imported++
				stats.Events += n
			}
		}
		if len(page) < im.pageSize {
			return stats, nil
		}
		after = page[len(page)-1].ID
	}
}

// importOne returns the number of events written, or -1 when the request was skipped.
func (im *NotesImporter) importOne(ctx context.Context, req *model.VisitRequest) (int, error) {
	count, err := im.store.CountEvents(ctx, req.ID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return -1, nil
	}

	next, events, err := im.Convert(*req)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 && !changed(*req, next) {
		return -1, nil
	}
	if im.dryRun {
		return len(events), nil
	}
	if err := im.store.Save(ctx, &next, req.Version, events); err != nil {
		return 0, storeError(err)
	}
	return len(events), nil
}

// Convert derives the typed events and column updates a legacy log implies.
func (im *NotesImporter) Convert(req model.VisitRequest) (model.VisitRequest, []model.RequestEvent, error) {
	notes := req.AdminNotes
	next := req
	var events []model.RequestEvent

	// Event times follow the log's physical order: each one is at least a
	// microsecond after the previous, and undated entries take exactly that.
	var prev time.Time
	add := func(kind model.EventKind, body string, payload interface{}, at time.Time, dated bool) error {
		e, err := model.NewEvent(req.ID, kind, body, nil, payload)
		if err != nil {
			return err
		}
		at = at.UTC()
		if !prev.IsZero() && (!dated || !at.After(prev)) {
			at = prev.Add(time.Microsecond)
		}
		e.CreatedAt = at
		prev = at
		events = append(events, e)
		return nil
	}

	for _, key := range []string{noteslog.KeyPhone, noteslog.KeyPurpose} {
		value := noteslog.Field(notes, key)
		if value == "" {
			continue
		}
		if err := add(model.EventApplicantNote, key+": "+value, model.NotePayload{Key: key, Value: value}, req.CreatedAt, true); err != nil {
			return req, nil, err
		}
		switch key {
		case noteslog.KeyPhone:
			if next.Phone == "" {
				next.Phone = value
			}
		case noteslog.KeyPurpose:
			if next.Purpose == "" {
				next.Purpose = value
			}
		}
	}

	for _, url := range noteslog.PaymentImageURLs(notes) {
		if err := add(model.EventPaymentImage, url, model.PaymentPayload{ImageURL: url}, req.CreatedAt, true); err != nil {
			return req, nil, err
		}
	}

	for _, section := range noteslog.Parse(notes) {
		kind, ok := markerKinds[section.Marker]
		if !ok || section.Body == "" {
			continue
		}
		at, dated := im.sectionTime(section.DateText)
		if !dated {
			at = req.CreatedAt
		}
		if err := add(kind, section.Body, nil, at, dated); err != nil {
			return req, nil, err
		}
	}

	if noteslog.IsDraft(notes) {
		next.IsDraft = true
	}
	if noteslog.IsBookingConfirmed(notes) && next.BookingConfirmedAt == nil && next.TripID != nil {
		at := req.UpdatedAt
		if at.IsZero() {
			at = req.CreatedAt
		}
		next.BookingConfirmedAt = &at
		if next.TripStatus == model.TripStatusNone {
			next.TripStatus = model.TripStatusPendingArrival
		}
	}
	return next, events, nil
}

// sectionTime parses a section's date line; it reports false when the line is
// missing or unreadable.
func (im *NotesImporter) sectionTime(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{noteslog.TimestampLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, text, im.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func changed(a, b model.VisitRequest) bool {
	return a.IsDraft != b.IsDraft ||
		a.Phone != b.Phone ||
		a.Purpose != b.Purpose ||
		(a.BookingConfirmedAt == nil) != (b.BookingConfirmedAt == nil)
}
