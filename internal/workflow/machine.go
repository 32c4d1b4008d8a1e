// Package workflow holds the request lifecycle rules. Every function here is
// pure: it takes a loaded request and returns the next version of it together
// with the journal events and notices the change produces. Persistence and
// delivery happen in the service layer.
package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"visit-service/internal/model"
)

var (
	ErrForbidden         = errors.New("permission denied")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrBookingConfirmed  = errors.New("booking already confirmed")
	ErrStaleTrip         = errors.New("trip date is in the past")
)

type Action string

const (
	ActionSubmit          Action = "submit"
	ActionReceiveWithFee  Action = "receive_with_fee"
	ActionReceivePayLater Action = "receive_pay_later"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionComplete        Action = "complete"
	ActionReopen          Action = "reopen"
)

var allowedTransitions = map[model.RequestStatus]map[model.RequestStatus]bool{
	model.RequestStatusPending:     {model.RequestStatusUnderReview: true, model.RequestStatusRejected: true},
	model.RequestStatusUnderReview: {model.RequestStatusApproved: true, model.RequestStatusRejected: true},
	model.RequestStatusApproved:    {model.RequestStatusCompleted: true, model.RequestStatusRejected: true},
	model.RequestStatusRejected:    {model.RequestStatusUnderReview: true},
	model.RequestStatusCompleted:   {},
}

func CanTransition(from, to model.RequestStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

type actor int

const (
	actorOwner actor = iota
	actorAdmin
	actorStaff
)

type rule struct {
	from []model.RequestStatus
	to   model.RequestStatus
	who  actor
}

var rules = map[Action]rule{
	ActionSubmit:          {from: []model.RequestStatus{model.RequestStatusPending}, to: model.RequestStatusPending, who: actorOwner},
	ActionReceiveWithFee:  {from: []model.RequestStatus{model.RequestStatusPending}, to: model.RequestStatusUnderReview, who: actorAdmin},
	ActionReceivePayLater: {from: []model.RequestStatus{model.RequestStatusPending}, to: model.RequestStatusUnderReview, who: actorAdmin},
	ActionApprove:         {from: []model.RequestStatus{model.RequestStatusUnderReview}, to: model.RequestStatusApproved, who: actorStaff},
	ActionReject: {
		from: []model.RequestStatus{model.RequestStatusPending, model.RequestStatusUnderReview, model.RequestStatusApproved},
		to:   model.RequestStatusRejected,
		who:  actorStaff,
	},
	ActionComplete: {from: []model.RequestStatus{model.RequestStatusApproved}, to: model.RequestStatusCompleted, who: actorAdmin},
	ActionReopen:   {from: []model.RequestStatus{model.RequestStatusRejected}, to: model.RequestStatusUnderReview, who: actorAdmin},
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rules[a]; !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
	return a, nil
}

type Command struct {
	Action  Action
	Message string
}

// Notice is a notification the caller should deliver after a successful save.
type Notice struct {
	UserID   *uuid.UUID
	Audience model.UserRole
	Title    string
	Message  string
	Kind     model.NotificationKind
}

type Outcome struct {
	From    model.RequestStatus
	To      model.RequestStatus
	Request model.VisitRequest
	Events  []model.RequestEvent
	Notices []Notice
}

type Machine struct {
	PerPersonFee        float64
	DepartureWindowDays int
	Location            *time.Location
}

func NewMachine(perPersonFee float64, departureWindowDays int, loc *time.Location) Machine {
	if loc == nil {
		loc = time.UTC
	}
	return Machine{PerPersonFee: perPersonFee, DepartureWindowDays: departureWindowDays, Location: loc}
}

// Apply is the single authoritative status transition function.
func (m Machine) Apply(req model.VisitRequest, principal model.Principal, cmd Command) (*Outcome, error) {
	r, ok := rules[cmd.Action]
	if !ok {
		return nil, ErrInvalidInput
	}
	if !authorized(r.who, req, principal) {
		return nil, ErrForbidden
	}
	if !containsStatus(r.from, req.Status) {
		return nil, ErrInvalidTransition
	}
	if r.to != req.Status && !CanTransition(req.Status, r.to) {
		return nil, ErrInvalidTransition
	}
	if cmd.Action == ActionSubmit {
		if !req.IsDraft {
			return nil, ErrInvalidTransition
		}
	} else if req.IsDraft {
		return nil, ErrInvalidTransition
	}

	next := req
	out := &Outcome{From: req.Status, To: r.to}
	message := strings.TrimSpace(cmd.Message)
	actorID := principal.UserID

	switch cmd.Action {
	case ActionSubmit:
		next.IsDraft = false
		out.Notices = append(out.Notices, adminNotice(titleNewRequest, fmt.Sprintf(msgNewRequest, req.VisitorName), model.NotificationStatusChange))
	case ActionReceiveWithFee:
		amount := float64(req.PartySize()) * m.PerPersonFee
		remaining := 0.0
		next.DepositPaid = true
		next.DepositAmount = &amount
		next.TotalAmount = &amount
		next.RemainingAmount = &remaining
		body := withDefault(message, fmt.Sprintf(msgReceivedWithFee, formatAmount(amount)))
		if err := out.addEvent(req.ID, model.EventAdminResponse, body, &actorID, nil); err != nil {
			return nil, err
		}
		out.Notices = append(out.Notices, applicantNotice(req, titleStatusChanged, body, model.NotificationStatusChange))
	case ActionReceivePayLater:
		body := withDefault(message, msgReceivedPayLater)
		if err := out.addEvent(req.ID, model.EventAdminResponse, body, &actorID, nil); err != nil {
			return nil, err
		}
		out.Notices = append(out.Notices, applicantNotice(req, titleStatusChanged, body, model.NotificationStatusChange))
	case ActionApprove:
		next.PaymentVerified = true
		body := withDefault(message, msgApproved)
		if err := out.addEvent(req.ID, model.EventAdminResponse, body, &actorID, nil); err != nil {
			return nil, err
		}
		out.Notices = append(out.Notices, applicantNotice(req, titleStatusChanged, body, model.NotificationStatusChange))
	case ActionReject:
		reason := message
		next.RejectionReason = &reason
		body := msgRejected
		if reason != "" {
			body = fmt.Sprintf(msgRejectedWithReason, reason)
			if err := out.addEvent(req.ID, model.EventAdminResponse, body, &actorID, nil); err != nil {
				return nil, err
			}
		}
		out.Notices = append(out.Notices, applicantNotice(req, titleStatusChanged, body, model.NotificationStatusChange))
	case ActionComplete:
		body := withDefault(message, msgCompleted)
		if err := out.addEvent(req.ID, model.EventAdminResponse, body, &actorID, nil); err != nil {
			return nil, err
		}
		out.Notices = append(out.Notices, applicantNotice(req, titleStatusChanged, body, model.NotificationStatusChange))
	case ActionReopen:
		body := withDefault(message, msgReopened)
		if err := out.addEvent(req.ID, model.EventAdminResponse, body, &actorID, nil); err != nil {
			return nil, err
		}
		out.Notices = append(out.Notices, applicantNotice(req, titleStatusChanged, body, model.NotificationStatusChange))
	}

	next.Status = r.to
	if next.Status != model.RequestStatusRejected {
		next.RejectionReason = nil
	}
	out.Request = next
	return out, nil
}

// Assign sets or clears the supervisor of a request.
func (m Machine) Assign(req model.VisitRequest, principal model.Principal, supervisorID *uuid.UUID) (*Outcome, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	if req.IsDraft || req.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	next := req
	next.AssignedTo = supervisorID
	out := &Outcome{From: req.Status, To: req.Status, Request: next}
	if supervisorID != nil {
		id := *supervisorID
		out.Notices = append(out.Notices, Notice{
			UserID:  &id,
			Title:   titleAssigned,
			Message: fmt.Sprintf(msgAssigned, req.VisitorName),
			Kind:    model.NotificationAssignment,
		})
	}
	return out, nil
}

// Respond appends a free-form administrator reply.
func (m Machine) Respond(req model.VisitRequest, principal model.Principal, message string) (*Outcome, error) {
	if !authorized(actorStaff, req, principal) {
		return nil, ErrForbidden
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrInvalidInput
	}
	if req.IsDraft {
		return nil, ErrInvalidTransition
	}
	out := &Outcome{From: req.Status, To: req.Status, Request: req}
	actorID := principal.UserID
	if err := out.addEvent(req.ID, model.EventAdminResponse, message, &actorID, nil); err != nil {
		return nil, err
	}
	out.Notices = append(out.Notices, applicantNotice(req, titleNewResponse, message, model.NotificationMessage))
	return out, nil
}

// AttachPayment records a payment receipt image uploaded by the applicant.
func (m Machine) AttachPayment(req model.VisitRequest, principal model.Principal, imageURL string) (*Outcome, error) {
	if !authorized(actorOwner, req, principal) {
		return nil, ErrForbidden
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" || !(strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://")) {
		return nil, ErrInvalidInput
	}
	if req.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	out := &Outcome{From: req.Status, To: req.Status, Request: req}
	actorID := principal.UserID
	if err := out.addEvent(req.ID, model.EventPaymentImage, msgPaymentUploaded, &actorID, model.PaymentPayload{ImageURL: imageURL}); err != nil {
		return nil, err
	}
	if !req.IsDraft {
		out.Notices = append(out.Notices, adminNotice(titlePayment, fmt.Sprintf(msgPaymentForAdmin, req.VisitorName), model.NotificationPayment))
	}
	return out, nil
}

func (o *Outcome) addEvent(requestID uuid.UUID, kind model.EventKind, body string, actorID *uuid.UUID, payload interface{}) error {
	event, err := model.NewEvent(requestID, kind, body, actorID, payload)
	if err != nil {
		return err
	}
	o.Events = append(o.Events, event)
	return nil
}

func authorized(who actor, req model.VisitRequest, principal model.Principal) bool {
	switch who {
	case actorOwner:
		return principal.IsApplicant() && req.UserID == principal.UserID
	case actorAdmin:
		return principal.IsAdmin()
	case actorStaff:
		return principal.IsAdmin() || (principal.IsSupervisor() && req.IsAssignedTo(principal.UserID))
	}
	return false
}

func containsStatus(list []model.RequestStatus, s model.RequestStatus) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func applicantNotice(req model.VisitRequest, title, message string, kind model.NotificationKind) Notice {
	id := req.UserID
	return Notice{UserID: &id, Title: title, Message: message, Kind: kind}
}

func adminNotice(title, message string, kind model.NotificationKind) Notice {
	return Notice{Audience: model.UserRoleAdmin, Title: title, Message: message, Kind: kind}
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
