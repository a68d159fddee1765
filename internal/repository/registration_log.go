package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"go.uber.org/zap"
)

// RegistrationLog is the append-only record of bookings.
type RegistrationLog struct {
	mu      sync.RWMutex
	backend RegistrationBackend
	logger  *zap.Logger
	records []model.Registration
}

// NewRegistrationLog constructs an empty RegistrationLog. Call Load before use.
func NewRegistrationLog(backend RegistrationBackend, logger *zap.Logger) *RegistrationLog {
	return &RegistrationLog{backend: backend, logger: logger}
}

// Load replaces the in-memory records with the persisted ones, in stored order.
func (l *RegistrationLog) Load(ctx context.Context) ([]model.Registration, error) {
	records, err := l.backend.LoadRegistrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = records
	l.logger.Info("loaded registrations", zap.Int("registrations", len(records)))
	return l.snapshotLocked(), nil
}

// Append assigns the next registration id, writes reg durably and only then
// records it in memory.
//
// The id is the record count plus one, raised past the highest id seen so that
// skipped log lines never cause an id to be reused.
func (l *RegistrationLog) Append(ctx context.Context, reg model.Registration) (model.Registration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg.ID = l.nextIDLocked()
	if err := l.backend.AppendRegistration(ctx, reg); err != nil {
		return model.Registration{}, persistenceError("append registration", err)
	}
	l.records = append(l.records, reg)
	return reg, nil
}

// All returns a copy of every registration in log order.
func (l *RegistrationLog) All() []model.Registration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

// ForClass returns the registrations for one class in log order.
func (l *RegistrationLog) ForClass(classID int) []model.Registration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []model.Registration
	for _, r := range l.records {
		if r.ClassID == classID {
			out = append(out, r)
		}
	}
	return out
}

// CountForClass returns the number of registrations for one class.
func (l *RegistrationLog) CountForClass(classID int) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, r := range l.records {
		if r.ClassID == classID {
			n++
		}
	}
	return n
}

func (l *RegistrationLog) snapshotLocked() []model.Registration {
	out := make([]model.Registration, len(l.records))
	copy(out, l.records)
	return out
}

func (l *RegistrationLog) nextIDLocked() int {
	next := len(l.records)
	for _, r := range l.records {
		next = max(next, r.ID)
	}
	return next + 1
}
