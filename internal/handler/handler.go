// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/repository"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ClassHandler holds all HTTP handlers for the booking API.
type ClassHandler struct {
	svc    *service.BookingService
	logger *zap.Logger
}

// NewClassHandler constructs a ClassHandler.
func NewClassHandler(svc *service.BookingService, logger *zap.Logger) *ClassHandler {
	return &ClassHandler{svc: svc, logger: logger}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: http.StatusText(status), Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps the repository error taxonomy onto HTTP statuses.
func (h *ClassHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *repository.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "class not found")
	case errors.Is(err, repository.ErrClassFull):
		writeError(w, http.StatusConflict, "class is fully booked")
	case errors.Is(err, repository.ErrPersistence):
		h.logger.Error("persistence failure", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save data")
	default:
		h.logger.Error("unexpected error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func classIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// ListClasses handles GET /api/schedule
func (h *ClassHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes := h.svc.ListClasses(r.Context())
	if classes == nil {
		classes = []model.FitnessClass{}
	}
	writeJSON(w, http.StatusOK, classes)
}

// GetClass handles GET /api/schedule/{id}
func (h *ClassHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	id, ok := classIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "class id must be a positive integer")
		return
	}

	class, err := h.svc.GetClass(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

// CreateClass handles POST /api/schedule
// Adds a class with name, instructor, ISO-8601 start time and capacity.
func (h *ClassHandler) CreateClass(w http.ResponseWriter, r *http.Request) {
	var req model.CreateClassRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	class, err := h.svc.AddClass(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, class)
}

// Register handles POST /api/register
// Returns the created registration.
func (h *ClassHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// RegisterWeb handles POST /api/register_web
// Same as Register but requires a phone number and answers with an acknowledgement.
func (h *ClassHandler) RegisterWeb(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	reg, err := h.svc.RegisterWeb(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.WebRegistrationResponse{
		Message:          "Registration successful!",
		ConfirmationCode: reg.ConfirmationCode,
	})
}

// ListRegistrations handles GET /api/registrations
// An optional class_id query parameter filters by class.
func (h *ClassHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	classID := 0
	if raw := r.URL.Query().Get("class_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "class_id must be a positive integer")
			return
		}
		classID = id
	}

	regs, err := h.svc.ListRegistrations(r.Context(), classID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Consistency handles GET /api/consistency
// Lists classes whose counter disagrees with the registration log.
func (h *ClassHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CheckConsistency(r.Context()))
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
