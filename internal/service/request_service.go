package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"visit-service/internal/export"
	"visit-service/internal/metrics"
	"visit-service/internal/model"
	"visit-service/internal/repository"
	"visit-service/internal/workflow"
)

type RequestService struct {
	committer
	machine workflow.Machine
	log     zerolog.Logger
}

func NewRequestService(requests RequestStore, notifier Notifier, machine workflow.Machine, log zerolog.Logger) *RequestService {
	return &RequestService{
		committer: committer{requests: requests, notifier: notifier},
		machine:   machine,
		log:       log,
	}
}

type ListRequestsOptions struct {
	Statuses   []model.RequestStatus
	VisitTypes []model.VisitType
	AssignedTo *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Limit      int
	Offset     int
}

type CreateRequestInput struct {
	VisitorName     string
	VisitType       model.VisitType
	CompanionsCount int
	Phone           string
	Purpose         string
	Draft           bool
}

func (in CreateRequestInput) draft() workflow.Draft {
	return workflow.Draft{
		VisitorName:     in.VisitorName,
		VisitType:       in.VisitType,
		CompanionsCount: in.CompanionsCount,
		Phone:           in.Phone,
		Purpose:         in.Purpose,
		AsDraft:         in.Draft,
	}
}

func (s *RequestService) List(ctx context.Context, principal model.Principal, opts ListRequestsOptions) ([]model.RequestRecord, error) {
	scope, err := model.ResolveScope(principal)
	if err != nil {
		return nil, ErrPermissionDenied
	}

	requests, err := s.requests.List(ctx, repository.RequestFilter{
		Scope:      scope,
		Statuses:   opts.Statuses,
		VisitTypes: opts.VisitTypes,
		AssignedTo: opts.AssignedTo,
		DateFrom:   opts.DateFrom,
		DateTo:     opts.DateTo,
		Search:     opts.Search,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}
	latest, err := s.requests.LatestEventsByRequestIDs(ctx, ids, model.EventAdminResponse)
	if err != nil {
		return nil, err
	}

	records := make([]model.RequestRecord, 0, len(requests))
	for _, r := range requests {
		record := model.RequestRecord{Request: r}
		if e, ok := latest[r.ID]; ok {
			record.LatestResponse = model.NewResponseBrief(e)
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *RequestService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.RequestRecord, error) {
	req, err := s.visible(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	brief, err := s.latestResponse(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &model.RequestRecord{Request: *req, LatestResponse: brief}, nil
}

// Events returns the request timeline newest first. Applicants only see the
// kinds addressed to them.
func (s *RequestService) Events(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.RequestEvent, error) {
	req, err := s.visible(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	events, err := s.requests.ListEvents(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !principal.IsApplicant() {
		return events, nil
	}
	visible := make([]model.RequestEvent, 0, len(events))
	for _, e := range events {
		if e.Kind.ApplicantVisible() {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

// LatestResponse returns nil without error when no administrator reply exists.
func (s *RequestService) LatestResponse(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ResponseBrief, error) {
	req, err := s.visible(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return s.latestResponse(ctx, req.ID)
}

func (s *RequestService) Create(ctx context.Context, principal model.Principal, input CreateRequestInput) (*model.VisitRequest, error) {
	out, err := s.machine.Create(principal, input.draft())
	if err != nil {
		return nil, err
	}
	return s.create(ctx, out)
}

func (s *RequestService) AdminCreate(ctx context.Context, principal model.Principal, owner uuid.UUID, input CreateRequestInput, note string) (*model.VisitRequest, error) {
	out, err := s.machine.AdminCreate(principal, owner, input.draft(), note)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, out)
}

func (s *RequestService) Submit(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.VisitRequest, error) {
	return s.Act(ctx, principal, id, workflow.Command{Action: workflow.ActionSubmit})
}

// Act runs a status action. A rejected action leaves the request untouched and
// sends nothing.
func (s *RequestService) Act(ctx context.Context, principal model.Principal, id uuid.UUID, cmd workflow.Command) (*model.VisitRequest, error) {
	req, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	out, err := s.machine.Apply(*req, principal, cmd)
	if err != nil {
		return nil, err
	}
	next, err := s.save(ctx, req.Version, out)
	if err != nil {
		return nil, err
	}
	metrics.IncTransition(string(cmd.Action), string(next.Status))
	s.log.Info().
		Str("request_id", next.ID.String()).
		Str("action", string(cmd.Action)).
		Str("from", string(out.From)).
		Str("to", string(out.To)).
		Str("actor", principal.UserID.String()).
		Msg("request status changed")
	return next, nil
}

func (s *RequestService) Assign(ctx context.Context, principal model.Principal, id uuid.UUID, supervisorID *uuid.UUID) (*model.VisitRequest, error) {
	req, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	out, err := s.machine.Assign(*req, principal, supervisorID)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, req.Version, out)
}

func (s *RequestService) Respond(ctx context.Context, principal model.Principal, id uuid.UUID, message string) (*model.VisitRequest, error) {
	req, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	out, err := s.machine.Respond(*req, principal, message)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, req.Version, out)
}

func (s *RequestService) AttachPayment(ctx context.Context, principal model.Principal, id uuid.UUID, imageURL string) (*model.VisitRequest, error) {
	req, err := s.load(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	out, err := s.machine.AttachPayment(*req, principal, imageURL)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, req.Version, out)
}

// Export writes the administrator's queue as an xlsx workbook.
func (s *RequestService) Export(ctx context.Context, principal model.Principal, opts ListRequestsOptions, w io.Writer) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if opts.Limit <= 0 {
		opts.Limit = 5000
	}
	records, err := s.List(ctx, principal, opts)
	if err != nil {
		return err
	}
	return export.WriteRequests(w, records, s.machine.Location)
}

// load fetches a request for a write under the same scope as reads, so a
// request the caller cannot see is reported missing rather than forbidden.
func (s *RequestService) load(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.VisitRequest, error) {
	return loadRequest(ctx, s.requests, principal, id)
}

func (s *RequestService) visible(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.VisitRequest, error) {
	return visibleRequest(ctx, s.requests, principal, id)
}

func (s *RequestService) latestResponse(ctx context.Context, requestID uuid.UUID) (*model.ResponseBrief, error) {
	e, err := s.requests.LatestEvent(ctx, requestID, model.EventAdminResponse)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.NewResponseBrief(*e), nil
}

func loadRequest(ctx context.Context, requests RequestStore, principal model.Principal, id uuid.UUID) (*model.VisitRequest, error) {
	return visibleRequest(ctx, requests, principal, id)
}

// visibleRequest applies the principal's read scope; requests outside it look absent.
func visibleRequest(ctx context.Context, requests RequestStore, principal model.Principal, id uuid.UUID) (*model.VisitRequest, error) {
	scope, err := model.ResolveScope(principal)
	if err != nil {
		return nil, ErrPermissionDenied
	}
	req, err := requests.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !scope.AllowsRequest(req) {
		return nil, ErrNotFound
	}
	return req, nil
}
