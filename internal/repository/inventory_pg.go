package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PGInventoryLedger struct {
	q querier
}

// NewInventoryLedger binds the ledger to a transaction. Outside a
// transaction each call is still atomic on its own.
func NewInventoryLedger(q querier) *PGInventoryLedger {
	return &PGInventoryLedger{q: q}
}

func (l *PGInventoryLedger) ReserveSeats(ctx context.Context, segmentID int64, date time.Time, count int) error {
	if count <= 0 {
		return domain.NewValidationError("passengers", "seat count must be positive")
	}

	var remaining int
	err := l.q.QueryRow(ctx, `UPDATE flight_schedules
		SET available_seats = available_seats - $3
		WHERE segment_id = $1 AND flight_date = $2 AND available_seats >= $3
		RETURNING available_seats`, segmentID, date, count).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("reserve seats: %w", err)
	}

	err = l.q.QueryRow(ctx, `SELECT available_seats FROM flight_schedules
		WHERE segment_id = $1 AND flight_date = $2`, segmentID, date).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrScheduleNotFound
	}
	if err != nil {
		return fmt.Errorf("read available seats: %w", err)
	}
	return &domain.InsufficientInventoryError{SegmentID: segmentID, Remaining: remaining, Requested: count}
}

func (l *PGInventoryLedger) ReleaseSeats(ctx context.Context, segmentID int64, date time.Time, count int) error {
	if count <= 0 {
		return domain.NewValidationError("passengers", "seat count must be positive")
	}

	var (
		available int
		capacity  *int
	)
	err := l.q.QueryRow(ctx, `UPDATE flight_schedules fs
		SET available_seats = fs.available_seats + $3
		FROM flight_segments s
		LEFT JOIN aircraft a ON a.id = s.aircraft_id
		WHERE fs.segment_id = $1 AND fs.flight_date = $2 AND s.id = fs.segment_id
		RETURNING fs.available_seats, a.seating_capacity`, segmentID, date, count).Scan(&available, &capacity)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrScheduleNotFound
	}
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	if capacity != nil && available > *capacity {
		return fmt.Errorf("segment %d on %s: %w", segmentID, date.Format(domain.DateLayout), domain.ErrCapacityExceeded)
	}
	return nil
}

var _ InventoryLedger = (*PGInventoryLedger)(nil)
