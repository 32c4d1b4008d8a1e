package model

import (
	"errors"

	"github.com/google/uuid"
)

type ScopeType string

const (
	ScopeAll       ScopeType = "ALL"
	ScopeAssigned  ScopeType = "ASSIGNED"
	ScopeApplicant ScopeType = "APPLICANT"
)

var ErrScopeUnsupported = errors.New("principal role is not allowed")

// Scope narrows which requests a principal can see.
type Scope struct {
	Type   ScopeType
	UserID uuid.UUID
}

func ResolveScope(principal Principal) (Scope, error) {
	switch {
	case principal.IsAdmin():
		return Scope{Type: ScopeAll, UserID: principal.UserID}, nil
	case principal.IsSupervisor():
		return Scope{Type: ScopeAssigned, UserID: principal.UserID}, nil
	case principal.IsApplicant():
		return Scope{Type: ScopeApplicant, UserID: principal.UserID}, nil
	default:
		return Scope{}, ErrScopeUnsupported
	}
}

// AllowsRequest applies the scope to a single loaded request.
// Staff never see drafts; applicants see only their own requests.
func (s Scope) AllowsRequest(r *VisitRequest) bool {
	switch s.Type {
	case ScopeAll:
		return !r.IsDraft
	case ScopeAssigned:
		return !r.IsDraft && r.IsAssignedTo(s.UserID)
	case ScopeApplicant:
		return r.UserID == s.UserID
	}
	return false
}
