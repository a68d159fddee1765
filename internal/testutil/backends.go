// Package testutil provides in-memory storage backends with failure injection
// and a PostgreSQL pool helper for integration tests.
package testutil

import (
	"context"
	"sync"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/repository"
)

// MemorySchedule is a repository.ScheduleBackend held in memory.
type MemorySchedule struct {
	mu      sync.Mutex
	exists  bool
	corrupt bool
	saved   []model.FitnessClass
	saves   int
	saveErr error
}

// NewMemorySchedule returns a backend that reports a missing document.
func NewMemorySchedule() *MemorySchedule {
	return &MemorySchedule{}
}

// NewMemoryScheduleWith returns a backend already holding classes.
func NewMemoryScheduleWith(classes ...model.FitnessClass) *MemorySchedule {
	b := &MemorySchedule{exists: true}
	b.saved = append([]model.FitnessClass{}, classes...)
	return b
}

// NewCorruptMemorySchedule returns a backend whose document cannot be parsed.
func NewCorruptMemorySchedule() *MemorySchedule {
	return &MemorySchedule{exists: true, corrupt: true}
}

func (b *MemorySchedule) LoadSchedule(context.Context) ([]model.FitnessClass, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.exists {
		return nil, repository.ErrDocumentMissing
	}
	if b.corrupt {
		return nil, repository.ErrDocumentCorrupt
	}
	return append([]model.FitnessClass{}, b.saved...), nil
}

func (b *MemorySchedule) SaveSchedule(_ context.Context, classes []model.FitnessClass) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.exists = true
	b.corrupt = false
	b.saved = append([]model.FitnessClass{}, classes...)
	b.saves++
	return nil
}

// Saved returns the last successfully saved document.
func (b *MemorySchedule) Saved() []model.FitnessClass {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.FitnessClass{}, b.saved...)
}

// Saves returns the number of successful SaveSchedule calls.
func (b *MemorySchedule) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// SetSaveErr makes every following SaveSchedule fail with err; nil restores
// normal behaviour.
func (b *MemorySchedule) SetSaveErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveErr = err
}

// MemoryRegistrations is a repository.RegistrationBackend held in memory.
type MemoryRegistrations struct {
	mu        sync.Mutex
	records   []model.Registration
	appendErr error
}

// NewMemoryRegistrations returns a backend holding records.
func NewMemoryRegistrations(records ...model.Registration) *MemoryRegistrations {
	return &MemoryRegistrations{records: append([]model.Registration{}, records...)}
}

func (b *MemoryRegistrations) LoadRegistrations(context.Context) ([]model.Registration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Registration{}, b.records...), nil
}

func (b *MemoryRegistrations) AppendRegistration(_ context.Context, reg model.Registration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.appendErr != nil {
		return b.appendErr
	}
	b.records = append(b.records, reg)
	return nil
}

// SetAppendErr makes every following AppendRegistration fail with err; nil
// restores normal behaviour.
func (b *MemoryRegistrations) SetAppendErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendErr = err
}

// Records returns everything appended so far.
func (b *MemoryRegistrations) Records() []model.Registration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Registration{}, b.records...)
}
