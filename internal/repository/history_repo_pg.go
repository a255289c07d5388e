package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HistoryRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.ItineraryView, error)
	FindByReservationCode(ctx context.Context, code string) (*domain.BookingView, error)
}

type HistoryRepo struct {
	db *pgxpool.Pool
}

func NewHistoryRepo(db *pgxpool.Pool) HistoryRepository {
	return &HistoryRepo{db: db}
}

// ListByUser returns the user's itineraries newest first. Legs and
// passengers are loaded with one batched query each.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID int64) ([]domain.ItineraryView, error) {
	rows, err := r.db.Query(ctx, `SELECT i.id, b.id, b.pnr, b.booking_status,
			(i.total_price * 100)::bigint,
			COALESCE(EXTRACT(EPOCH FROM i.total_duration), 0)::bigint,
			i.booked_at
		FROM itineraries i
		JOIN bookings b ON b.itinerary_id = i.id
		WHERE i.user_id = $1
		ORDER BY i.booked_at DESC, i.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list itineraries: %w", err)
	}
	defer rows.Close()

	var (
		views        []domain.ItineraryView
		itineraryIDs []int64
		bookingIDs   []int64
	)
	for rows.Next() {
		var (
			v        domain.ItineraryView
			status   string
			duration int64
		)
		if err := rows.Scan(&v.ItineraryID, &v.BookingID, &v.ReservationCode, &status,
			&v.TotalPriceCents, &duration, &v.BookedAt); err != nil {
			return nil, err
		}
		v.Status = domain.BookingStatus(status)
		v.TotalDuration = time.Duration(duration) * time.Second
		views = append(views, v)
		itineraryIDs = append(itineraryIDs, v.ItineraryID)
		bookingIDs = append(bookingIDs, v.BookingID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return []domain.ItineraryView{}, nil
	}

	legs, err := loadLegs(ctx, r.db, itineraryIDs)
	if err != nil {
		return nil, err
	}
	passengers, err := loadPassengers(ctx, r.db, bookingIDs)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].Legs = legs[views[i].ItineraryID]
		views[i].Passengers = passengers[views[i].BookingID]
	}
	return views, nil
}

func (r *HistoryRepo) FindByReservationCode(ctx context.Context, code string) (*domain.BookingView, error) {
	var (
		v           domain.BookingView
		itineraryID int64
		status      string
		duration    int64
	)
	err := r.db.QueryRow(ctx, `SELECT b.id, b.pnr, b.booking_status, b.email, b.contact_number,
			i.id, (i.total_price * 100)::bigint,
			COALESCE(EXTRACT(EPOCH FROM i.total_duration), 0)::bigint,
			b.booked_at
		FROM bookings b
		JOIN itineraries i ON i.id = b.itinerary_id
		WHERE b.pnr = $1`, code,
	).Scan(&v.BookingID, &v.ReservationCode, &status, &v.Email, &v.ContactNumber,
		&itineraryID, &v.TotalPriceCents, &duration, &v.BookedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", code, err)
	}
	v.Status = domain.BookingStatus(status)
	v.TotalDuration = time.Duration(duration) * time.Second

	legs, err := loadLegs(ctx, r.db, []int64{itineraryID})
	if err != nil {
		return nil, err
	}
	passengers, err := loadPassengers(ctx, r.db, []int64{v.BookingID})
	if err != nil {
		return nil, err
	}
	v.Legs = legs[itineraryID]
	v.Passengers = passengers[v.BookingID]
	return &v, nil
}

func loadLegs(ctx context.Context, q querier, itineraryIDs []int64) (map[int64][]domain.LegView, error) {
	rows, err := q.Query(ctx, `SELECT its.itinerary_id, its.sequence_no,
			s.flight_number, s.airline, s.departure_airport, s.arrival_airport,
			to_char(s.departure_time, 'HH24:MI'), to_char(s.arrival_time, 'HH24:MI'),
			(s.price * 100)::bigint, its.flight_date,
			COALESCE(EXTRACT(EPOCH FROM its.layover_duration), 0)::bigint,
			fs.available_seats
		FROM itinerary_segments its
		JOIN flight_segments s ON s.id = its.segment_id
		LEFT JOIN flight_schedules fs ON fs.segment_id = its.segment_id AND fs.flight_date = its.flight_date
		WHERE its.itinerary_id = ANY($1)
		ORDER BY its.itinerary_id, its.sequence_no`, itineraryIDs)
	if err != nil {
		return nil, fmt.Errorf("load legs: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.LegView, len(itineraryIDs))
	for rows.Next() {
		var (
			itineraryID int64
			leg         domain.LegView
			layover     int64
		)
		if err := rows.Scan(&itineraryID, &leg.SequenceNo,
			&leg.FlightNumber, &leg.Airline, &leg.DepartureAirport, &leg.ArrivalAirport,
			&leg.DepartureTime, &leg.ArrivalTime, &leg.PriceCents, &leg.FlightDate,
			&layover, &leg.AvailableSeats); err != nil {
			return nil, err
		}
		leg.LayoverDuration = time.Duration(layover) * time.Second
		out[itineraryID] = append(out[itineraryID], leg)
	}
	return out, rows.Err()
}

func loadPassengers(ctx context.Context, q querier, bookingIDs []int64) (map[int64][]domain.PassengerView, error) {
	rows, err := q.Query(ctx, `SELECT booking_id, name, age, gender, status
		FROM passengers
		WHERE booking_id = ANY($1)
		ORDER BY booking_id, id`, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("load passengers: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.PassengerView, len(bookingIDs))
	for rows.Next() {
		var (
			bookingID int64
			p         domain.PassengerView
			status    string
		)
		if err := rows.Scan(&bookingID, &p.Name, &p.Age, &p.Gender, &status); err != nil {
			return nil, err
		}
		p.Status = domain.PassengerStatus(status)
		out[bookingID] = append(out[bookingID], p)
	}
	return out, rows.Err()
}
