package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// InventoryLedger owns the per-(segment, date) seat counters.
type InventoryLedger interface {
	// ReserveSeats checks and decrements in one statement. It returns
	// domain.ErrScheduleNotFound or *domain.InsufficientInventoryError.
	ReserveSeats(ctx context.Context, segmentID int64, date time.Time, count int) error
	// ReleaseSeats increments unconditionally, bounded by aircraft capacity.
	ReleaseSeats(ctx context.Context, segmentID int64, date time.Time, count int) error
}

// BookingTx is the set of writes and locked reads available inside one
// booking or cancellation unit of work.
type BookingTx interface {
	InventoryLedger

	SegmentByFlightNumber(ctx context.Context, flightNumber string) (*domain.FlightSegment, error)
	CreateItinerary(ctx context.Context, itinerary *domain.Itinerary) error
	AddItinerarySegment(ctx context.Context, segment *domain.ItinerarySegment) error
	ReservationCodeExists(ctx context.Context, code string) (bool, error)
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	AddPassengers(ctx context.Context, bookingID int64, passengers []domain.Passenger) error

	// LockBookingForOwner returns domain.ErrBookingNotFound unless the booking
	// exists and its itinerary belongs to userID.
	LockBookingForOwner(ctx context.Context, bookingID, userID int64) (*domain.OwnedBooking, error)
	CountPassengers(ctx context.Context, bookingID int64) (int, error)
	ItinerarySegments(ctx context.Context, itineraryID int64) ([]domain.ItinerarySegment, error)
	CancelPassengers(ctx context.Context, bookingID int64) error
	SetBookingStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error
}

// BookingStore runs fn as a single all-or-nothing unit.
type BookingStore interface {
	InTx(ctx context.Context, fn func(tx BookingTx) error) error
}

// txBeginner is satisfied by *pgxpool.Pool.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PGBookingStore struct {
	db txBeginner
}

func NewBookingStore(db *pgxpool.Pool) BookingStore {
	return &PGBookingStore{db: db}
}

// InTx commits only when fn returns nil. The deferred rollback also runs
// when fn panics.
func (s *PGBookingStore) InTx(ctx context.Context, fn func(tx BookingTx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(newPGBookingTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var _ BookingStore = (*PGBookingStore)(nil)
