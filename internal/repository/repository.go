// Package repository owns the schedule and the registration log.
// Both are held in memory and mirrored to a durable backend: flat files by
// default, or PostgreSQL through pgx.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
)

// ErrNotFound is returned when a requested class does not exist.
var ErrNotFound = errors.New("not found")

// ErrClassFull is returned when a class has no remaining capacity.
var ErrClassFull = errors.New("class is fully booked")

// ErrPersistence is returned when a durable write could not complete.
var ErrPersistence = errors.New("persistence failure")

// ErrDocumentMissing is returned by a ScheduleBackend that has never been written.
var ErrDocumentMissing = errors.New("schedule document does not exist")

// ErrDocumentCorrupt is returned by a ScheduleBackend whose document cannot be parsed.
var ErrDocumentCorrupt = errors.New("schedule document is corrupt")

// ValidationError reports malformed input. Nothing is changed when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ScheduleBackend stores the full schedule as a single document.
//
// LoadSchedule returns ErrDocumentMissing when nothing was ever saved and an
// error wrapping ErrDocumentCorrupt when the stored document cannot be parsed.
// SaveSchedule replaces the document so that readers never see a partial write.
type ScheduleBackend interface {
	LoadSchedule(ctx context.Context) ([]model.FitnessClass, error)
	SaveSchedule(ctx context.Context, classes []model.FitnessClass) error
}

// RegistrationBackend is an append-only store of registrations.
//
// AppendRegistration must not return until the record is durable.
type RegistrationBackend interface {
	LoadRegistrations(ctx context.Context) ([]model.Registration, error)
	AppendRegistration(ctx context.Context, reg model.Registration) error
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
