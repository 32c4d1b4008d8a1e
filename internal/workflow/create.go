package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"visit-service/internal/model"
)

const maxCompanions = 50

// Draft describes a new request before it is stored.
type Draft struct {
	VisitorName     string
	VisitType       model.VisitType
	CompanionsCount int
	Phone           string
	Purpose         string
	// AsDraft keeps the request hidden from staff until the applicant submits it.
	AsDraft bool
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.VisitorName) == "" {
		return fmt.Errorf("%w: visitor name is required", ErrInvalidInput)
	}
	if !d.VisitType.Valid() {
		return fmt.Errorf("%w: unknown visit type %q", ErrInvalidInput, d.VisitType)
	}
	if d.CompanionsCount < 0 || d.CompanionsCount > maxCompanions {
		return fmt.Errorf("%w: companions count out of range", ErrInvalidInput)
	}
	return nil
}

func (d Draft) request(owner uuid.UUID) model.VisitRequest {
	return model.VisitRequest{
		ID:              uuid.New(),
		UserID:          owner,
		VisitorName:     strings.TrimSpace(d.VisitorName),
		VisitType:       d.VisitType,
		CompanionsCount: d.CompanionsCount,
		Phone:           strings.TrimSpace(d.Phone),
		Purpose:         strings.TrimSpace(d.Purpose),
		Status:          model.RequestStatusPending,
		IsDraft:         d.AsDraft,
		Version:         1,
	}
}

// Create opens a request owned by the applicant.
func (m Machine) Create(principal model.Principal, d Draft) (*Outcome, error) {
	if !principal.IsApplicant() {
		return nil, ErrForbidden
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	req := d.request(principal.UserID)
	out := &Outcome{To: req.Status, Request: req}
	if !req.IsDraft {
		out.Notices = append(out.Notices, adminNotice(titleNewRequest, fmt.Sprintf(msgNewRequest, req.VisitorName), model.NotificationStatusChange))
	}
	return out, nil
}

// AdminCreate opens an already submitted request on behalf of an applicant.
func (m Machine) AdminCreate(principal model.Principal, owner uuid.UUID, d Draft, note string) (*Outcome, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if owner == uuid.Nil {
		return nil, fmt.Errorf("%w: applicant id is required", ErrInvalidInput)
	}
	d.AsDraft = false
	if err := d.validate(); err != nil {
		return nil, err
	}
	req := d.request(owner)
	out := &Outcome{To: req.Status, Request: req}
	actorID := principal.UserID
	body := withDefault(strings.TrimSpace(note), msgAdminCreated)
	if err := out.addEvent(req.ID, model.EventAdminCreated, body, &actorID, nil); err != nil {
		return nil, err
	}
	out.Notices = append(out.Notices, applicantNotice(req, titleNewRequest, body, model.NotificationStatusChange))
	return out, nil
}
