package flights

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.FlightSegment, error)
	Search(ctx context.Context, from, to, date string) ([]domain.ScheduledFlight, error)
}

type FlightCache interface {
	GetSegments(ctx context.Context) ([]domain.FlightSegment, error)
	SetSegments(ctx context.Context, segments []domain.FlightSegment) error
	GetSearch(ctx context.Context, q domain.SearchQuery) ([]domain.ScheduledFlight, error)
	SetSearch(ctx context.Context, q domain.SearchQuery, flights []domain.ScheduledFlight) error
}

type FlightService struct {
	repo   repository.FlightRepository
	cache  FlightCache
	logger *logrus.Logger
}

// NewFlightService accepts a nil cache; every read then goes to the database.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, logger *logrus.Logger) *FlightService {
	return &FlightService{repo: repo, cache: cache, logger: logger}
}

func (s *FlightService) List(ctx context.Context) ([]domain.FlightSegment, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSegments(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.WithError(err).Debug("Flight cache read failed")
		}
	}

	segments, err := s.repo.ListSegments(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSegments(ctx, segments); err != nil {
			s.logger.WithError(err).Debug("Flight cache write failed")
		}
	}
	return segments, nil
}

// Search lists flights with free seats on date. Airports are matched
// case-insensitively and may be empty.
func (s *FlightService) Search(ctx context.Context, from, to, date string) ([]domain.ScheduledFlight, error) {
	day, err := time.Parse(domain.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return nil, domain.NewValidationError("date", "date must be in YYYY-MM-DD format")
	}
	q := domain.SearchQuery{
		From: strings.ToUpper(strings.TrimSpace(from)),
		To:   strings.ToUpper(strings.TrimSpace(to)),
		Date: day,
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, q); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, q, flights); err != nil {
			s.logger.WithError(err).Debug("Flight cache write failed")
		}
	}
	return flights, nil
}

var _ FlightUseCase = (*FlightService)(nil)
