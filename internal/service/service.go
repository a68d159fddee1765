// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/clock"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// BookingService is the only component that changes a class's registered
// counter. It keeps the counter and the registration log consistent.
type BookingService struct {
	schedule      *repository.ScheduleStore
	registrations *repository.RegistrationLog
	clock         clock.Clock
	logger        *zap.Logger
	tracer        trace.Tracer
	locks         classLocks
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(
	schedule *repository.ScheduleStore,
	registrations *repository.RegistrationLog,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		schedule:      schedule,
		registrations: registrations,
		clock:         clk,
		logger:        logger,
		tracer:        otel.Tracer("fitness-class-booking/service"),
		locks:         classLocks{m: make(map[int]*sync.Mutex)},
	}
}

// ListClasses returns the schedule in insertion order.
func (s *BookingService) ListClasses(_ context.Context) []model.FitnessClass {
	return s.schedule.List()
}

// GetClass returns a single class by id.
func (s *BookingService) GetClass(_ context.Context, id int) (*model.FitnessClass, error) {
	class, err := s.schedule.Find(id)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// AddClass validates req and appends a new class to the schedule.
func (s *BookingService) AddClass(ctx context.Context, req model.CreateClassRequest) (*model.FitnessClass, error) {
	ctx, span := s.tracer.Start(ctx, "booking.add_class")
	defer span.End()

	class, err := s.schedule.Add(ctx, req)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("class.id", class.ID))
	s.logger.Info("class added",
		zap.Int("class_id", class.ID),
		zap.String("name", class.Name),
		zap.Int("capacity", class.Capacity))
	return &class, nil
}

// Register books one seat. The phone number is optional.
func (s *BookingService) Register(ctx context.Context, req model.RegisterRequest) (*model.Registration, error) {
	return s.register(ctx, req, false)
}

// RegisterWeb books one seat on behalf of the web form, which must supply a
// phone number.
func (s *BookingService) RegisterWeb(ctx context.Context, req model.RegisterRequest) (*model.Registration, error) {
	return s.register(ctx, req, true)
}

// register reserves a seat before writing the registration log and releases
// it again if the write fails. A crash between the two steps leaves a reserved
// seat without a record; CheckConsistency reports such drift.
func (s *BookingService) register(ctx context.Context, req model.RegisterRequest, requirePhone bool) (*model.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "booking.register",
		trace.WithAttributes(attribute.Int("class.id", req.ClassID)),
	)
	defer span.End()

	req.UserName = strings.TrimSpace(req.UserName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := validateRegistration(req, requirePhone); err != nil {
		recordError(span, err)
		return nil, err
	}

	// Classes are never deleted, so a lock is only created for ids that exist.
	if _, err := s.schedule.Find(req.ClassID); err != nil {
		recordError(span, err)
		return nil, err
	}
	unlock := s.locks.lock(req.ClassID)
	defer unlock()

	class, err := s.schedule.Update(ctx, req.ClassID, func(c *model.FitnessClass) error {
		if c.IsFull() {
			return repository.ErrClassFull
		}
		c.Registered++
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrPersistence) {
			recordError(span, err)
			return nil, err
		}
		s.logger.Error("seat reserved but schedule not persisted",
			zap.Int("class_id", req.ClassID), zap.Error(err))
	}

	reg, err := s.registrations.Append(ctx, model.Registration{
		ClassID:          req.ClassID,
		UserName:         req.UserName,
		PhoneNumber:      req.PhoneNumber,
		RegisteredAt:     s.clock.Now().UTC(),
		ConfirmationCode: uuid.NewString(),
	})
	if err != nil {
		s.release(ctx, req.ClassID)
		recordError(span, err)
		return nil, fmt.Errorf("register for class %d: %w", req.ClassID, err)
	}

	span.SetAttributes(
		attribute.Int("registration.id", reg.ID),
		attribute.Int("class.registered", class.Registered),
	)
	s.logger.Info("registration created",
		zap.Int("registration_id", reg.ID),
		zap.Int("class_id", reg.ClassID),
		zap.Int("registered", class.Registered),
		zap.Int("capacity", class.Capacity))
	return &reg, nil
}

// release undoes a seat reservation after a failed log append.
func (s *BookingService) release(ctx context.Context, classID int) {
	_, err := s.schedule.Update(ctx, classID, func(c *model.FitnessClass) error {
		c.Registered--
		return nil
	})
	if err != nil {
		s.logger.Error("failed to persist released seat",
			zap.Int("class_id", classID), zap.Error(err))
		return
	}
	s.logger.Warn("seat released after failed registration write", zap.Int("class_id", classID))
}

// ListRegistrations returns every registration, or only those for classID
// when it is positive.
func (s *BookingService) ListRegistrations(_ context.Context, classID int) ([]model.Registration, error) {
	if classID <= 0 {
		return s.registrations.All(), nil
	}
	if _, err := s.schedule.Find(classID); err != nil {
		return nil, err
	}
	regs := s.registrations.ForClass(classID)
	if regs == nil {
		regs = []model.Registration{}
	}
	return regs, nil
}

// CheckConsistency compares each class counter with the number of logged
// registrations. Only classes that disagree are returned. Each class is read
// under its booking lock, so a registration in flight is never reported.
func (s *BookingService) CheckConsistency(_ context.Context) []model.ClassDrift {
	drifts := []model.ClassDrift{}
	for _, c := range s.schedule.List() {
		if drift, ok := s.classDrift(c.ID); ok {
			drifts = append(drifts, drift)
		}
	}
	return drifts
}

func (s *BookingService) classDrift(classID int) (model.ClassDrift, bool) {
	unlock := s.locks.lock(classID)
	defer unlock()

	c, err := s.schedule.Find(classID)
	if err != nil {
		return model.ClassDrift{}, false
	}
	logged := s.registrations.CountForClass(classID)
	if logged == c.Registered {
		return model.ClassDrift{}, false
	}
	return model.ClassDrift{
		ClassID:    classID,
		Registered: c.Registered,
		Logged:     logged,
		Drift:      c.Registered - logged,
	}, true
}

func validateRegistration(req model.RegisterRequest, requirePhone bool) error {
	if req.ClassID <= 0 {
		return repository.NewValidationError("class_id", "class_id must be a positive integer")
	}
	if req.UserName == "" {
		return repository.NewValidationError("user_name", "user_name is required")
	}
	if req.PhoneNumber == "" {
		if requirePhone {
			return repository.NewValidationError("phone_number", "phone_number is required")
		}
		return nil
	}
	if !phonePattern.MatchString(req.PhoneNumber) {
		return repository.NewValidationError("phone_number",
			"phone_number must be 10 to 15 digits with an optional leading +")
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// classLocks hands out one mutex per class id.
type classLocks struct {
	mu sync.Mutex
	m  map[int]*sync.Mutex
}

func (l *classLocks) lock(id int) func() {
	l.mu.Lock()
	m, ok := l.m[id]
	if !ok {
		m = &sync.Mutex{}
		l.m[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
