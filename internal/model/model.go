// Package model defines the core domain types for the fitness class booking system.
package model

import (
	"strings"
	"time"
)

// FitnessClass is a scheduled session with a fixed number of seats.
type FitnessClass struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Instructor string    `json:"instructor"`
	StartTime  time.Time `json:"start_time"`
	Capacity   int       `json:"capacity"`
	Registered int       `json:"registered"`
}

// Remaining returns the number of available seats.
func (c *FitnessClass) Remaining() int {
	return c.Capacity - c.Registered
}

// IsFull returns true when no seats remain.
func (c *FitnessClass) IsFull() bool {
	return c.Registered >= c.Capacity
}

// Registration records that one participant booked one seat in one class.
// Registrations are append-only.
type Registration struct {
	ID               int       `json:"registration_id"`
	ClassID          int       `json:"class_id"`
	UserName         string    `json:"user_name"`
	PhoneNumber      string    `json:"phone_number,omitempty"`
	RegisteredAt     time.Time `json:"registered_at"`
	ConfirmationCode string    `json:"confirmation_code,omitempty"`
}

// CreateClassRequest is the payload for adding a class to the schedule.
type CreateClassRequest struct {
	Name       string `json:"name"`
	Instructor string `json:"instructor"`
	StartTime  string `json:"start_time"`
	// Datetime is the field name the web form sends.
	Datetime string `json:"datetime"`
	Capacity int    `json:"capacity"`
}

// When returns the requested start time, preferring start_time over datetime.
func (r CreateClassRequest) When() string {
	if s := strings.TrimSpace(r.StartTime); s != "" {
		return s
	}
	return strings.TrimSpace(r.Datetime)
}

// RegisterRequest is the payload for booking a seat.
type RegisterRequest struct {
	ClassID     int    `json:"class_id"`
	UserName    string `json:"user_name"`
	PhoneNumber string `json:"phone_number"`
}

// WebRegistrationResponse acknowledges a booking made through the web form.
type WebRegistrationResponse struct {
	Message          string `json:"message"`
	ConfirmationCode string `json:"confirmation_code"`
}

// ClassDrift compares a class counter with the registration log.
type ClassDrift struct {
	ClassID    int `json:"class_id"`
	Registered int `json:"registered"`
	Logged     int `json:"logged"`
	Drift      int `json:"drift"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
