package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	ListSegments(ctx context.Context) ([]domain.FlightSegment, error)
	Search(ctx context.Context, q domain.SearchQuery) ([]domain.ScheduledFlight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) ListSegments(ctx context.Context) ([]domain.FlightSegment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+segmentColumns+`
		FROM flight_segments s
		ORDER BY s.departure_time, s.flight_number`)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	segments := make([]domain.FlightSegment, 0)
	for rows.Next() {
		var seg domain.FlightSegment
		if err := scanSegment(rows, &seg); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

// Search returns scheduled flights on q.Date with at least one free seat.
func (r *PGFlightRepository) Search(ctx context.Context, q domain.SearchQuery) ([]domain.ScheduledFlight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+segmentColumns+`, fs.flight_date, fs.available_seats
		FROM flight_schedules fs
		JOIN flight_segments s ON s.id = fs.segment_id
		WHERE fs.flight_date = $1
		  AND fs.available_seats > 0
		  AND ($2 = '' OR s.departure_airport = $2)
		  AND ($3 = '' OR s.arrival_airport = $3)
		ORDER BY s.departure_time, s.flight_number`, q.Date, q.From, q.To)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.ScheduledFlight, 0)
	for rows.Next() {
		var f domain.ScheduledFlight
		seg := &f.Segment
		if err := rows.Scan(
			&seg.ID,
			&seg.FlightNumber,
			&seg.Airline,
			&seg.DepartureAirport,
			&seg.ArrivalAirport,
			&seg.DepartureTime,
			&seg.ArrivalTime,
			&seg.PriceCents,
			&seg.AircraftID,
			&seg.CreatedAt,
			&f.FlightDate,
			&f.AvailableSeats,
		); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)
