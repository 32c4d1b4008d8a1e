package repository

import (
	"gorm.io/gorm"

	"visit-service/internal/model"
)

func applyScopeFilter(query *gorm.DB, scope model.Scope) *gorm.DB {
	switch scope.Type {
	case model.ScopeAll:
		return query.Where("visit_requests.is_draft = ?", false)
	case model.ScopeAssigned:
		return query.Where("visit_requests.is_draft = ? AND visit_requests.assigned_to = ?", false, scope.UserID)
	case model.ScopeApplicant:
		return query.Where("visit_requests.user_id = ?", scope.UserID)
	default:
		return query.Where("1=0")
	}
}
