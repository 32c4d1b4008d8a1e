package service

import (
	"errors"

	"gorm.io/gorm"

	"visit-service/internal/metrics"
	"visit-service/internal/repository"
	"visit-service/internal/workflow"
)

var (
	ErrPermissionDenied = workflow.ErrForbidden
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = workflow.ErrInvalidInput
	ErrConflict         = errors.New("conflict")
	ErrInvalidStatus    = workflow.ErrInvalidTransition
	ErrBookingConfirmed = workflow.ErrBookingConfirmed
	ErrStaleTrip        = workflow.ErrStaleTrip
)

// storeError maps repository sentinels onto service errors. Anything else
// passes through unchanged.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrStaleVersion):
		metrics.IncConflict()
		return ErrConflict
	}
	return err
}
