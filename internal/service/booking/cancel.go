package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type CancelResult struct {
	BookingID         int64
	ReservationCode   string
	RefundAmountCents int64
	Warnings          []string
}

// CancelBooking returns every seat of every leg and flips the booking and
// its passengers to cancelled. A booking that does not exist and one owned
// by someone else are indistinguishable to the caller.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID int64) (*CancelResult, error) {
	if bookingID <= 0 {
		return nil, domain.NewValidationError("booking_id", "booking id must be positive")
	}

	var (
		result CancelResult
		to     string
		dates  []time.Time
	)
	err := s.store.InTx(ctx, func(tx repository.BookingTx) error {
		booking, err := tx.LockBookingForOwner(ctx, bookingID, userID)
		if err != nil {
			return err
		}
		if booking.Status == domain.BookingStatusCancelled {
			return domain.ErrAlreadyCancelled
		}

		seats, err := tx.CountPassengers(ctx, booking.ID)
		if err != nil {
			return err
		}

		segments, err := tx.ItinerarySegments(ctx, booking.ItineraryID)
		if err != nil {
			return err
		}

		dates = dates[:0]
		refs := make([]scheduleRef, 0, len(segments))
		for _, seg := range segments {
			refs = append(refs, scheduleRef{segmentID: seg.SegmentID, date: seg.FlightDate})
			dates = append(dates, seg.FlightDate)
		}
		if seats > 0 {
			for _, ref := range lockOrder(refs) {
				if err := tx.ReleaseSeats(ctx, ref.segmentID, ref.date, seats); err != nil {
					return err
				}
			}
		}

		if err := tx.CancelPassengers(ctx, booking.ID); err != nil {
			return err
		}
		if err := tx.SetBookingStatus(ctx, booking.ID, domain.BookingStatusCancelled); err != nil {
			return err
		}

		to = booking.Email
		result = CancelResult{
			BookingID:         booking.ID,
			ReservationCode:   booking.ReservationCode,
			RefundAmountCents: booking.TotalPriceCents,
		}
		return nil
	})
	if err != nil {
		return nil, s.unitError("cancel booking", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":       result.BookingID,
		"reservation_code": result.ReservationCode,
		"user_id":          userID,
	}).Info("Booking cancelled")

	s.invalidate(ctx, dates)
	result.Warnings = s.sendCancellation(ctx, to, result)
	return &result, nil
}

func (s *BookingService) sendCancellation(ctx context.Context, to string, result CancelResult) []string {
	if s.sender == nil {
		return nil
	}

	msg, err := email.CancellationMessage(to, result.ReservationCode, result.RefundAmountCents)
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", result.BookingID).
			Warn("Booking cancelled but cancellation email was not sent")
		return []string{"booking cancelled but the confirmation email could not be sent"}
	}
	return nil
}
