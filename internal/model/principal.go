package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleSupervisor UserRole = "SUPERVISOR"
	UserRoleApplicant  UserRole = "APPLICANT"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleSupervisor, UserRoleApplicant:
		return true
	}
	return false
}

type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsSupervisor() bool {
	return p.Role == UserRoleSupervisor
}

func (p Principal) IsApplicant() bool {
	return p.Role == UserRoleApplicant
}

// IsStaff covers both administrators and supervisors.
func (p Principal) IsStaff() bool {
	return p.IsAdmin() || p.IsSupervisor()
}
