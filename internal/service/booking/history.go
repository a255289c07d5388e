package booking

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/pnr"
)

func (s *BookingService) History(ctx context.Context, userID int64) ([]domain.ItineraryView, error) {
	return s.history.ListByUser(ctx, userID)
}

// FindByReservationCode is case-insensitive. Codes that cannot have been
// issued are reported as not found without a query.
func (s *BookingService) FindByReservationCode(ctx context.Context, code string) (*domain.BookingView, error) {
	code = pnr.Normalize(code)
	if code == "" {
		return nil, domain.NewValidationError("pnr", "reservation code is required")
	}
	if !pnr.Valid(code) {
		return nil, domain.ErrBookingNotFound
	}
	return s.history.FindByReservationCode(ctx, code)
}
