package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type pgBookingTx struct {
	*PGInventoryLedger
	tx querier
}

func newPGBookingTx(tx querier) *pgBookingTx {
	return &pgBookingTx{PGInventoryLedger: NewInventoryLedger(tx), tx: tx}
}

const segmentColumns = `s.id, s.flight_number, s.airline, s.departure_airport, s.arrival_airport,
	to_char(s.departure_time, 'HH24:MI'), to_char(s.arrival_time, 'HH24:MI'),
	(s.price * 100)::bigint, s.aircraft_id, s.created_at`

func scanSegment(row pgx.Row, seg *domain.FlightSegment) error {
	return row.Scan(
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
	)
}

func (t *pgBookingTx) SegmentByFlightNumber(ctx context.Context, flightNumber string) (*domain.FlightSegment, error) {
	var seg domain.FlightSegment
	err := scanSegment(t.tx.QueryRow(ctx, `SELECT `+segmentColumns+`
		FROM flight_segments s
		WHERE s.flight_number = $1
		ORDER BY s.id
		LIMIT 1`, flightNumber), &seg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get segment %s: %w", flightNumber, err)
	}
	return &seg, nil
}

func (t *pgBookingTx) CreateItinerary(ctx context.Context, it *domain.Itinerary) error {
	return t.tx.QueryRow(ctx, `INSERT INTO itineraries (user_id, total_price, total_duration, booked_at)
		VALUES ($1, $2::bigint / 100.0, $3::bigint * interval '1 second', $4)
		RETURNING id`,
		it.UserID, it.TotalPriceCents, int64(it.TotalDuration/time.Second), it.BookedAt,
	).Scan(&it.ID)
}

func (t *pgBookingTx) AddItinerarySegment(ctx context.Context, s *domain.ItinerarySegment) error {
	return t.tx.QueryRow(ctx, `INSERT INTO itinerary_segments
		(itinerary_id, segment_id, flight_date, sequence_no, layover_duration)
		VALUES ($1, $2, $3, $4, $5::bigint * interval '1 second')
		RETURNING id`,
		s.ItineraryID, s.SegmentID, s.FlightDate, s.SequenceNo, int64(s.LayoverDuration/time.Second),
	).Scan(&s.ID)
}

func (t *pgBookingTx) ReservationCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE pnr = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reservation code: %w", err)
	}
	return exists, nil
}

func (t *pgBookingTx) CreateBooking(ctx context.Context, b *domain.Booking) error {
	return t.tx.QueryRow(ctx, `INSERT INTO bookings
		(itinerary_id, booking_status, booked_at, email, contact_number, pnr)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		b.ItineraryID, string(b.Status), b.BookedAt, b.Email, b.ContactNumber, b.ReservationCode,
	).Scan(&b.ID)
}

func (t *pgBookingTx) CreatePayment(ctx context.Context, p *domain.Payment) error {
	return t.tx.QueryRow(ctx, `INSERT INTO payments (booking_id, amount, payment_status, paid_at)
		VALUES ($1, $2::bigint / 100.0, $3, $4)
		RETURNING id`,
		p.BookingID, p.AmountCents, string(p.Status), p.PaidAt,
	).Scan(&p.ID)
}

func (t *pgBookingTx) AddPassengers(ctx context.Context, bookingID int64, passengers []domain.Passenger) error {
	for i := range passengers {
		p := &passengers[i]
		p.BookingID = bookingID
		if p.Status == "" {
			p.Status = domain.PassengerStatusConfirmed
		}
		err := t.tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, name, age, gender, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			bookingID, p.Name, p.Age, p.Gender, string(p.Status),
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert passenger %d: %w", i, err)
		}
	}
	return nil
}

func (t *pgBookingTx) LockBookingForOwner(ctx context.Context, bookingID, userID int64) (*domain.OwnedBooking, error) {
	var (
		ob     domain.OwnedBooking
		status string
	)
	err := t.tx.QueryRow(ctx, `SELECT b.id, b.itinerary_id, b.booking_status, b.booked_at,
			b.email, b.contact_number, b.pnr, i.user_id, (i.total_price * 100)::bigint
		FROM bookings b
		JOIN itineraries i ON i.id = b.itinerary_id
		WHERE b.id = $1 AND i.user_id = $2
		FOR UPDATE OF b`, bookingID, userID,
	).Scan(
		&ob.ID,
		&ob.ItineraryID,
		&status,
		&ob.BookedAt,
		&ob.Email,
		&ob.ContactNumber,
		&ob.ReservationCode,
		&ob.UserID,
		&ob.TotalPriceCents,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock booking %d: %w", bookingID, err)
	}
	ob.Status = domain.BookingStatus(status)
	return &ob, nil
}

func (t *pgBookingTx) CountPassengers(ctx context.Context, bookingID int64) (int, error) {
	var n int
	if err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM passengers WHERE booking_id = $1`, bookingID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count passengers: %w", err)
	}
	return n, nil
}

func (t *pgBookingTx) ItinerarySegments(ctx context.Context, itineraryID int64) ([]domain.ItinerarySegment, error) {
	rows, err := t.tx.Query(ctx, `SELECT id, itinerary_id, segment_id, flight_date, sequence_no,
			COALESCE(EXTRACT(EPOCH FROM layover_duration), 0)::bigint
		FROM itinerary_segments
		WHERE itinerary_id = $1
		ORDER BY sequence_no`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("list itinerary segments: %w", err)
	}
	defer rows.Close()

	var out []domain.ItinerarySegment
	for rows.Next() {
		var (
			s       domain.ItinerarySegment
			layover int64
		)
		if err := rows.Scan(&s.ID, &s.ItineraryID, &s.SegmentID, &s.FlightDate, &s.SequenceNo, &layover); err != nil {
			return nil, err
		}
		s.LayoverDuration = time.Duration(layover) * time.Second
		out = append(out, s)
	}
	return out, rows.Err()
}

func (t *pgBookingTx) CancelPassengers(ctx context.Context, bookingID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE passengers SET status = $2 WHERE booking_id = $1`,
		bookingID, string(domain.PassengerStatusCancelled))
	if err != nil {
		return fmt.Errorf("cancel passengers: %w", err)
	}
	return nil
}

func (t *pgBookingTx) SetBookingStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE bookings SET booking_status = $2 WHERE id = $1`, bookingID, string(status))
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

var _ BookingTx = (*pgBookingTx)(nil)
