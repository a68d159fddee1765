package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/clock"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/handler"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/repository"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/service"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type server struct {
	router http.Handler
	logDB  *testutil.MemoryRegistrations
}

func newServer(t *testing.T, opts handler.RouterOptions, classes ...model.FitnessClass) *server {
	t.Helper()
	ctx := context.Background()

	scheduleDB := testutil.NewMemoryScheduleWith(classes...)
	logDB := testutil.NewMemoryRegistrations()
	schedule := repository.NewScheduleStore(scheduleDB, zap.NewNop())
	registrations := repository.NewRegistrationLog(logDB, zap.NewNop())
	_, err := schedule.Load(ctx)
	require.NoError(t, err)
	_, err = registrations.Load(ctx)
	require.NoError(t, err)

	clk := clock.NewFixed(time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC))
	svc := service.NewBookingService(schedule, registrations, clk, zap.NewNop())
	h := handler.NewClassHandler(svc, zap.NewNop())
	return &server{router: handler.NewRouter(h, zap.NewNop(), opts), logDB: logDB}
}

func (s *server) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func yogaClass(capacity int) model.FitnessClass {
	return model.FitnessClass{
		ID:         1,
		Name:       "Yoga",
		Instructor: "Anna",
		StartTime:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Capacity:   capacity,
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	s := newServer(t, handler.RouterOptions{})

	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestScheduleEndpoints(t *testing.T) {
	s := newServer(t, handler.RouterOptions{})

	rec := s.do(t, http.MethodGet, "/api/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/schedule",
		`{"name":"Yoga","instructor":"Anna","start_time":"2024-05-01T10:00:00","capacity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.FitnessClass](t, rec)
	assert.Equal(t, 1, created.ID)
	assert.Zero(t, created.Registered)

	rec = s.do(t, http.MethodPost, "/api/schedule",
		`{"name":"Cardio","instructor":"Maria","datetime":"2024-05-01T14:00:00.000Z","capacity":25}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/schedule/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cardio", decode[model.FitnessClass](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.FitnessClass](t, rec), 2)
}

func TestCreateClass_Errors(t *testing.T) {
	s := newServer(t, handler.RouterOptions{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"unknown field", `{"name":"Yoga","instructor":"Anna","start_time":"2024-05-01T10:00:00","capacity":2,"room":"A"}`},
		{"zero capacity", `{"name":"Yoga","instructor":"Anna","start_time":"2024-05-01T10:00:00","capacity":0}`},
		{"bad time", `{"name":"Yoga","instructor":"Anna","start_time":"next tuesday","capacity":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/schedule", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[model.ErrorResponse](t, rec)
			assert.Equal(t, "Bad Request", resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestGetClass_Errors(t *testing.T) {
	s := newServer(t, handler.RouterOptions{}, yogaClass(2))

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/schedule/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/schedule/0", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/schedule/9", "").Code)
}

func TestRegister_StatusMapping(t *testing.T) {
	s := newServer(t, handler.RouterOptions{}, yogaClass(1))

	rec := s.do(t, http.MethodPost, "/api/register", `{"class_id":1,"user_name":"Bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[model.Registration](t, rec)
	assert.Equal(t, 1, reg.ID)
	assert.Equal(t, "Bob", reg.UserName)
	assert.NotEmpty(t, reg.ConfirmationCode)

	rec = s.do(t, http.MethodPost, "/api/register", `{"class_id":1,"user_name":"Carol"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", decode[model.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/api/register", `{"class_id":7,"user_name":"Carol"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/register", `{"class_id":1,"user_name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/register", `{"class_id":"one","user_name":"Carol"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_PersistenceFailureIs500(t *testing.T) {
	s := newServer(t, handler.RouterOptions{}, yogaClass(3))
	s.logDB.SetAppendErr(errors.New("disk full"))

	rec := s.do(t, http.MethodPost, "/api/register", `{"class_id":1,"user_name":"Bob"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/schedule/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[model.FitnessClass](t, rec).Registered, "seat is released")
}

func TestRegisterWeb(t *testing.T) {
	s := newServer(t, handler.RouterOptions{}, yogaClass(3))

	rec := s.do(t, http.MethodPost, "/api/register_web", `{"class_id":1,"user_name":"Bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "phone is required")

	rec = s.do(t, http.MethodPost, "/api/register_web",
		`{"class_id":1,"user_name":"Bob","phone_number":"+79876543210"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[model.WebRegistrationResponse](t, rec)
	assert.Equal(t, "Registration successful!", resp.Message)
	assert.NotEmpty(t, resp.ConfirmationCode)

	records := s.logDB.Records()
	require.Len(t, records, 1)
	assert.Equal(t, resp.ConfirmationCode, records[0].ConfirmationCode)
}

func TestListRegistrations(t *testing.T) {
	second := yogaClass(3)
	second.ID = 2
	s := newServer(t, handler.RouterOptions{}, yogaClass(3), second)

	for _, body := range []string{
		`{"class_id":1,"user_name":"Bob"}`,
		`{"class_id":2,"user_name":"Carol"}`,
		`{"class_id":1,"user_name":"Dan"}`,
	} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/register", body).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/registrations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Registration](t, rec), 3)

	rec = s.do(t, http.MethodGet, "/api/registrations?class_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	regs := decode[[]model.Registration](t, rec)
	require.Len(t, regs, 2)
	assert.Equal(t, "Dan", regs[1].UserName)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/registrations?class_id=x", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/registrations?class_id=5", "").Code)
}

func TestConsistency(t *testing.T) {
	drifted := yogaClass(3)
	drifted.Registered = 1
	s := newServer(t, handler.RouterOptions{}, drifted)

	rec := s.do(t, http.MethodGet, "/api/consistency", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"class_id":1,"registered":1,"logged":0,"drift":1}]`, rec.Body.String())
}

func TestRegister_RateLimited(t *testing.T) {
	s := newServer(t, handler.RouterOptions{RegisterLimiter: rate.NewLimiter(rate.Every(time.Hour), 1)}, yogaClass(5))

	rec := s.do(t, http.MethodPost, "/api/register", `{"class_id":1,"user_name":"Bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/register_web", `{"class_id":1,"user_name":"Carol","phone_number":"+79876543210"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/schedule", "").Code, "reads are not throttled")
}

func TestCORS(t *testing.T) {
	s := newServer(t, handler.RouterOptions{CORSOrigins: []string{"https://studio.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/schedule", nil)
	req.Header.Set("Origin", "https://studio.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://studio.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/schedule", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
