package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"go.uber.org/zap"
)

// DefaultSchedule is installed when no schedule document exists yet.
func DefaultSchedule() []model.FitnessClass {
	day := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	return []model.FitnessClass{
		{ID: 1, Name: "Yoga", Instructor: "Anna Ivanova", StartTime: day.Add(10 * time.Hour), Capacity: 20, Registered: 15},
		{ID: 2, Name: "Pilates", Instructor: "Igor Smirnov", StartTime: day.Add(12 * time.Hour), Capacity: 15, Registered: 10},
		{ID: 3, Name: "Cardio", Instructor: "Maria Petrova", StartTime: day.Add(14 * time.Hour), Capacity: 25, Registered: 20},
	}
}

// ScheduleStore is the in-memory authoritative set of classes, mirrored to a
// ScheduleBackend on every mutation.
type ScheduleStore struct {
	mu      sync.RWMutex
	backend ScheduleBackend
	logger  *zap.Logger
	classes []model.FitnessClass
}

// NewScheduleStore constructs an empty ScheduleStore. Call Load before use.
func NewScheduleStore(backend ScheduleBackend, logger *zap.Logger) *ScheduleStore {
	return &ScheduleStore{backend: backend, logger: logger}
}

// Load replaces the in-memory schedule with the persisted one.
//
// A missing document is replaced by DefaultSchedule, which is persisted.
// A corrupt document yields an empty schedule and is left untouched on disk.
func (s *ScheduleStore) Load(ctx context.Context) ([]model.FitnessClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	classes, err := s.backend.LoadSchedule(ctx)
	switch {
	case errors.Is(err, ErrDocumentMissing):
		s.classes = DefaultSchedule()
		if err := s.persistLocked(ctx); err != nil {
			s.logger.Error("failed to persist default schedule", zap.Error(err))
		} else {
			s.logger.Info("installed default schedule", zap.Int("classes", len(s.classes)))
		}
	case errors.Is(err, ErrDocumentCorrupt):
		s.logger.Warn("schedule document is corrupt, starting with an empty schedule", zap.Error(err))
		s.classes = []model.FitnessClass{}
	case err != nil:
		return nil, fmt.Errorf("load schedule: %w", err)
	default:
		s.classes = classes
		s.logger.Info("loaded schedule", zap.Int("classes", len(classes)))
	}

	return s.snapshotLocked(), nil
}

// Persist writes the current schedule to the backend.
func (s *ScheduleStore) Persist(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

// List returns a copy of all classes in insertion order.
func (s *ScheduleStore) List() []model.FitnessClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Find returns the class with the given id or ErrNotFound.
func (s *ScheduleStore) Find(id int) (model.FitnessClass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.classes[i], nil
	}
	return model.FitnessClass{}, fmt.Errorf("class %d: %w", id, ErrNotFound)
}

// Add validates req, appends a new class with the next id and persists.
//
// A persist failure is logged and the class is kept in memory.
func (s *ScheduleStore) Add(ctx context.Context, req model.CreateClassRequest) (model.FitnessClass, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.FitnessClass{}, NewValidationError("name", "name is required")
	}
	instructor := strings.TrimSpace(req.Instructor)
	if instructor == "" {
		return model.FitnessClass{}, NewValidationError("instructor", "instructor is required")
	}
	startTime, err := ParseStartTime(req.When())
	if err != nil {
		return model.FitnessClass{}, err
	}
	if req.Capacity <= 0 {
		return model.FitnessClass{}, NewValidationError("capacity", "capacity must be a positive integer")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	class := model.FitnessClass{
		ID:         s.nextIDLocked(),
		Name:       name,
		Instructor: instructor,
		StartTime:  startTime,
		Capacity:   req.Capacity,
		Registered: 0,
	}
	s.classes = append(s.classes, class)

	if err := s.persistLocked(ctx); err != nil {
		s.logger.Error("class added but schedule not persisted",
			zap.Int("class_id", class.ID), zap.Error(err))
	}
	return class, nil
}

// Update applies fn to the class with the given id and persists the result.
//
// If fn fails, or leaves the class with a registered count outside
// [0, capacity], the class is restored and the error returned. If only the
// persist fails, the mutation is kept, the updated class is returned, and the
// error wraps ErrPersistence.
func (s *ScheduleStore) Update(ctx context.Context, id int, fn func(*model.FitnessClass) error) (model.FitnessClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return model.FitnessClass{}, fmt.Errorf("class %d: %w", id, ErrNotFound)
	}

	before := s.classes[i]
	if err := fn(&s.classes[i]); err != nil {
		s.classes[i] = before
		return before, err
	}
	after := s.classes[i]
	if after.ID != before.ID || after.Registered < 0 || after.Registered > after.Capacity {
		s.classes[i] = before
		return before, fmt.Errorf("class %d: registered %d outside [0, %d]", id, after.Registered, after.Capacity)
	}

	return after, s.persistLocked(ctx)
}

func (s *ScheduleStore) persistLocked(ctx context.Context) error {
	if err := s.backend.SaveSchedule(ctx, s.snapshotLocked()); err != nil {
		return persistenceError("save schedule", err)
	}
	return nil
}

func (s *ScheduleStore) snapshotLocked() []model.FitnessClass {
	out := make([]model.FitnessClass, len(s.classes))
	copy(out, s.classes)
	return out
}

func (s *ScheduleStore) indexLocked(id int) int {
	for i := range s.classes {
		if s.classes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ScheduleStore) nextIDLocked() int {
	maxID := 0
	for _, c := range s.classes {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	return maxID + 1
}
