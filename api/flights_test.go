package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.FlightSegment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightSegment), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, from, to, date string) ([]domain.ScheduledFlight, error) {
	args := m.Called(ctx, from, to, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduledFlight), args.Error(1)
}

var ai101 = domain.FlightSegment{
	ID:               1,
	FlightNumber:     "AI101",
	Airline:          "Air India",
	DepartureAirport: "DEL",
	ArrivalAirport:   "BOM",
	DepartureTime:    "08:00",
	ArrivalTime:      "10:30",
	PriceCents:       500000,
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	logger, _ := test.NewNullLogger()
	handler := NewFlightHandler(mockService, logger)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	mockService.On("List", c.Request.Context()).Return([]domain.FlightSegment{ai101}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []segmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "AI101", response[0].FlightNumber)
	assert.Equal(t, "5000.00", response[0].Price)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_list_Failure(t *testing.T) {
	mockService := &MockFlightUseCase{}
	logger, hook := test.NewNullLogger()
	handler := NewFlightHandler(mockService, logger)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	mockService.On("List", mock.Anything).Return(nil, errors.New("db down"))

	handler.list(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch flights"}`, w.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	logger, _ := test.NewNullLogger()
	handler := NewFlightHandler(mockService, logger)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/search?from=del&to=bom&date=2025-05-01", nil)

	found := []domain.ScheduledFlight{{
		Segment:        ai101,
		FlightDate:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		AvailableSeats: 42,
	}}
	mockService.On("Search", c.Request.Context(), "del", "bom", "2025-05-01").Return(found, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Flights []scheduledFlightResponse `json:"flights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Flights, 1)
	assert.Equal(t, "2025-05-01", response.Flights[0].FlightDate)
	assert.Equal(t, 42, response.Flights[0].AvailableSeats)
	assert.Equal(t, "DEL", response.Flights[0].DepartureAirport)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_search_InvalidDate(t *testing.T) {
	mockService := &MockFlightUseCase{}
	logger, _ := test.NewNullLogger()
	handler := NewFlightHandler(mockService, logger)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights/search?date=tomorrow", nil)

	mockService.On("Search", mock.Anything, "", "", "tomorrow").
		Return(nil, domain.NewValidationError("date", "date must be in YYYY-MM-DD format"))

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}
