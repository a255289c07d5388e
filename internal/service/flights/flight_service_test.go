package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) ListSegments(ctx context.Context) ([]domain.FlightSegment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightSegment), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, q domain.SearchQuery) ([]domain.ScheduledFlight, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduledFlight), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSegments(ctx context.Context) ([]domain.FlightSegment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightSegment), args.Error(1)
}

func (m *MockCache) SetSegments(ctx context.Context, segments []domain.FlightSegment) error {
	args := m.Called(ctx, segments)
	return args.Error(0)
}

func (m *MockCache) GetSearch(ctx context.Context, q domain.SearchQuery) ([]domain.ScheduledFlight, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduledFlight), args.Error(1)
}

func (m *MockCache) SetSearch(ctx context.Context, q domain.SearchQuery, flights []domain.ScheduledFlight) error {
	args := m.Called(ctx, q, flights)
	return args.Error(0)
}

func TestFlightService_List_FromCache(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	logger, _ := test.NewNullLogger()
	svc := NewFlightService(repo, cache, logger)

	cached := []domain.FlightSegment{{ID: 1, FlightNumber: "AI101"}}
	cache.On("GetSegments", mock.Anything).Return(cached, nil)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	repo.AssertNotCalled(t, "ListSegments", mock.Anything)
}

func TestFlightService_List_MissFillsCache(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	logger, _ := test.NewNullLogger()
	svc := NewFlightService(repo, cache, logger)

	segments := []domain.FlightSegment{{ID: 1, FlightNumber: "AI101"}, {ID: 2, FlightNumber: "6E202"}}
	cache.On("GetSegments", mock.Anything).Return(nil, nil)
	repo.On("ListSegments", mock.Anything).Return(segments, nil)
	cache.On("SetSegments", mock.Anything, segments).Return(errors.New("redis down"))

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, segments, got)
	cache.AssertExpectations(t)
}

func TestFlightService_List_WithoutCache(t *testing.T) {
	repo := &MockFlightRepository{}
	logger, _ := test.NewNullLogger()
	svc := NewFlightService(repo, nil, logger)

	repo.On("ListSegments", mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.List(context.Background())
	assert.Error(t, err)
}

func TestFlightService_Search(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	logger, _ := test.NewNullLogger()
	svc := NewFlightService(repo, cache, logger)

	q := domain.SearchQuery{From: "DEL", To: "BOM", Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	flights := []domain.ScheduledFlight{{Segment: domain.FlightSegment{FlightNumber: "AI101"}, FlightDate: q.Date, AvailableSeats: 12}}

	cache.On("GetSearch", mock.Anything, q).Return(nil, nil)
	repo.On("Search", mock.Anything, q).Return(flights, nil)
	cache.On("SetSearch", mock.Anything, q, flights).Return(nil)

	got, err := svc.Search(context.Background(), " del", "bom ", "2025-05-01")
	require.NoError(t, err)
	assert.Equal(t, flights, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestFlightService_Search_InvalidDate(t *testing.T) {
	repo := &MockFlightRepository{}
	logger, _ := test.NewNullLogger()
	svc := NewFlightService(repo, nil, logger)

	_, err := svc.Search(context.Background(), "DEL", "BOM", "tomorrow")
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}
