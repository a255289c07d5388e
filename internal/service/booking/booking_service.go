package booking

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/email"
	"github.com/Domenick1991/skybooking/internal/fare"
	"github.com/Domenick1991/skybooking/internal/pnr"
	"github.com/Domenick1991/skybooking/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const defaultCodeAttempts = 10

var errCodeExhausted = errors.New("could not generate a unique reservation code")

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) (*CancelResult, error)
	History(ctx context.Context, userID int64) ([]domain.ItineraryView, error)
	FindByReservationCode(ctx context.Context, code string) (*domain.BookingView, error)
}

// Cache is the part of the flight-search cache touched by inventory changes.
type Cache interface {
	InvalidateDate(ctx context.Context, date time.Time) error
}

type BookingService struct {
	store        repository.BookingStore
	history      repository.HistoryRepository
	cache        Cache
	sender       email.Sender
	logger       *logrus.Logger
	generateCode pnr.Generator
	codeAttempts int
	now          func() time.Time
}

type PassengerInput struct {
	Name   string `json:"name" validate:"required"`
	Age    int    `json:"age" validate:"gt=0"`
	Gender string `json:"gender" validate:"required,oneof=Male Female Other"`
}

type LegInput struct {
	FlightNumber string `json:"flight_number" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
}

type CreateBookingInput struct {
	Legs          []LegInput       `validate:"required,min=1,dive"`
	Email         string           `validate:"required,email"`
	ContactNumber string           `validate:"required"`
	Passengers    []PassengerInput `validate:"required,min=1,dive"`
	// UserID is nil for guest bookings.
	UserID *int64
}

type CreateBookingResult struct {
	BookingID       int64
	ReservationCode string
	TotalPriceCents int64
	TotalDuration   time.Duration
	Warnings        []string
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithSender(sender email.Sender) BookingServiceOption {
	return func(s *BookingService) {
		s.sender = sender
	}
}

func WithCodeGenerator(gen pnr.Generator) BookingServiceOption {
	return func(s *BookingService) {
		s.generateCode = gen
	}
}

func WithCodeAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.codeAttempts = n
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	store repository.BookingStore,
	history repository.HistoryRepository,
	logger *logrus.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		store:        store,
		history:      history,
		logger:       logger,
		generateCode: pnr.Generate,
		codeAttempts: defaultCodeAttempts,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type bookedLeg struct {
	segment domain.FlightSegment
	date    time.Time
}

// CreateBooking reserves seats on every leg and writes the itinerary,
// booking, payment and passengers as one unit. Email and cache work happen
// after commit and never fail the booking.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	dates, err := input.normalize()
	if err != nil {
		return nil, err
	}
	seats := len(input.Passengers)

	var (
		result CreateBookingResult
		legs   []bookedLeg
	)
	err = s.store.InTx(ctx, func(tx repository.BookingTx) error {
		legs = legs[:0]
		fareLegs := make([]fare.Leg, 0, len(input.Legs))
		for i, leg := range input.Legs {
			segment, err := tx.SegmentByFlightNumber(ctx, leg.FlightNumber)
			if err != nil {
				return err
			}
			legs = append(legs, bookedLeg{segment: *segment, date: dates[i]})
			fareLegs = append(fareLegs, fare.Leg{
				PriceCents:    segment.PriceCents,
				FlightDate:    dates[i],
				DepartureTime: segment.DepartureTime,
				ArrivalTime:   segment.ArrivalTime,
			})
		}

		refs := make([]scheduleRef, 0, len(legs))
		for _, leg := range legs {
			refs = append(refs, scheduleRef{segmentID: leg.segment.ID, date: leg.date})
		}
		for _, ref := range lockOrder(refs) {
			if err := tx.ReserveSeats(ctx, ref.segmentID, ref.date, seats); err != nil {
				return err
			}
		}

		quote, err := fare.QuoteItinerary(fareLegs, seats)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		itinerary := &domain.Itinerary{
			UserID:          input.UserID,
			TotalPriceCents: quote.TotalPriceCents,
			TotalDuration:   quote.TotalDuration,
			BookedAt:        now,
		}
		if err := tx.CreateItinerary(ctx, itinerary); err != nil {
			return err
		}

		for i, leg := range legs {
			if err := tx.AddItinerarySegment(ctx, &domain.ItinerarySegment{
				ItineraryID:     itinerary.ID,
				SegmentID:       leg.segment.ID,
				FlightDate:      leg.date,
				SequenceNo:      i + 1,
				LayoverDuration: quote.Layovers[i],
			}); err != nil {
				return err
			}
		}

		code, err := s.uniqueCode(ctx, tx)
		if err != nil {
			return err
		}

		booking := &domain.Booking{
			ItineraryID:     itinerary.ID,
			Status:          domain.BookingStatusConfirmed,
			BookedAt:        now,
			Email:           input.Email,
			ContactNumber:   input.ContactNumber,
			ReservationCode: code,
		}
		if err := tx.CreateBooking(ctx, booking); err != nil {
			return err
		}

		// Payment is simulated as captured at booking time.
		if err := tx.CreatePayment(ctx, &domain.Payment{
			BookingID:   booking.ID,
			AmountCents: quote.TotalPriceCents,
			Status:      domain.PaymentStatusPaid,
			PaidAt:      &now,
		}); err != nil {
			return err
		}

		passengers := make([]domain.Passenger, 0, seats)
		for _, p := range input.Passengers {
			passengers = append(passengers, domain.Passenger{
				Name:   p.Name,
				Age:    p.Age,
				Gender: p.Gender,
				Status: domain.PassengerStatusConfirmed,
			})
		}
		if err := tx.AddPassengers(ctx, booking.ID, passengers); err != nil {
			return err
		}

		result = CreateBookingResult{
			BookingID:       booking.ID,
			ReservationCode: code,
			TotalPriceCents: quote.TotalPriceCents,
			TotalDuration:   quote.TotalDuration,
		}
		return nil
	})
	if err != nil {
		return nil, s.unitError("create booking", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":       result.BookingID,
		"reservation_code": result.ReservationCode,
		"legs":             len(legs),
		"passengers":       seats,
	}).Info("Booking confirmed")

	dateSet := make([]time.Time, 0, len(legs))
	for _, leg := range legs {
		dateSet = append(dateSet, leg.date)
	}
	s.invalidate(ctx, dateSet)
	result.Warnings = s.sendTicket(ctx, input, legs, result)
	return &result, nil
}

func (s *BookingService) uniqueCode(ctx context.Context, tx repository.BookingTx) (string, error) {
	for attempt := 1; attempt <= s.codeAttempts; attempt++ {
		code := s.generateCode()
		exists, err := tx.ReservationCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.logger.WithField("attempt", attempt).Warn("Reservation code collision, regenerating")
	}
	return "", errCodeExhausted
}

// unitError passes domain errors through and wraps everything else.
func (s *BookingService) unitError(op string, err error) error {
	if domain.IsBusinessError(err) {
		return err
	}
	s.logger.WithError(err).WithField("op", op).Error("Transaction rolled back")
	return &domain.TransactionError{Op: op, Err: err}
}

func (s *BookingService) invalidate(ctx context.Context, dates []time.Time) {
	if s.cache == nil {
		return
	}
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		key := d.Format(domain.DateLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if err := s.cache.InvalidateDate(ctx, d); err != nil {
			s.logger.WithError(err).WithField("date", key).Warn("Failed to invalidate flight cache")
		}
	}
}

func (s *BookingService) sendTicket(ctx context.Context, input CreateBookingInput, legs []bookedLeg, result CreateBookingResult) []string {
	if s.sender == nil {
		return nil
	}

	data := email.TicketData{
		ReservationCode: result.ReservationCode,
		TotalPrice:      email.FormatAmount(result.TotalPriceCents),
	}
	for _, leg := range legs {
		data.Legs = append(data.Legs, email.NewTicketLeg(leg.segment, leg.date))
	}
	for _, p := range input.Passengers {
		data.Passengers = append(data.Passengers, email.TicketPassenger{Name: p.Name, Age: p.Age, Gender: p.Gender})
	}

	msg, err := email.TicketMessage(input.Email, data)
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"booking_id":       result.BookingID,
			"reservation_code": result.ReservationCode,
		}).Warn("Booking confirmed but ticket email was not sent")
		return []string{"booking confirmed but the ticket email could not be sent"}
	}
	return nil
}

var validate = validator.New()

// scheduleRef names one (segment, date) inventory row.
type scheduleRef struct {
	segmentID int64
	date      time.Time
}

// lockOrder returns refs sorted by segment then date. Every unit of work
// touches schedule rows in this order.
func lockOrder(refs []scheduleRef) []scheduleRef {
	out := slices.Clone(refs)
	slices.SortStableFunc(out, func(a, b scheduleRef) int {
		if a.segmentID != b.segmentID {
			if a.segmentID < b.segmentID {
				return -1
			}
			return 1
		}
		return a.date.Compare(b.date)
	})
	return out
}

// normalize trims and validates the input in place and returns the parsed
// date of each leg.
func (in *CreateBookingInput) normalize() ([]time.Time, error) {
	in.Legs = append([]LegInput(nil), in.Legs...)
	in.Passengers = append([]PassengerInput(nil), in.Passengers...)

	for i := range in.Legs {
		leg := &in.Legs[i]
		leg.FlightNumber = strings.ToUpper(strings.TrimSpace(leg.FlightNumber))
		leg.Date = strings.TrimSpace(leg.Date)
	}
	in.Email = strings.TrimSpace(in.Email)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	for i := range in.Passengers {
		p := &in.Passengers[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Gender = canonicalGender(p.Gender)
	}

	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	dates := make([]time.Time, len(in.Legs))
	for i, leg := range in.Legs {
		d, err := time.Parse(domain.DateLayout, leg.Date)
		if err != nil {
			return nil, domain.NewValidationError("date", "date must be in YYYY-MM-DD format")
		}
		dates[i] = d
	}
	return dates, nil
}

// validationError reports the first failed rule as a domain.ValidationError.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("input", err.Error())
	}

	fe := fieldErrs[0]
	switch fe.StructField() {
	case "Legs":
		return domain.NewValidationError("flight_number", "at least one flight is required")
	case "FlightNumber":
		return domain.NewValidationError("flight_number", "flight number is required")
	case "Date":
		return domain.NewValidationError("date", "date must be in YYYY-MM-DD format")
	case "Email":
		if fe.Tag() == "required" {
			return domain.NewValidationError("email", "email is required")
		}
		return domain.NewValidationError("email", "email is not a valid address")
	case "ContactNumber":
		return domain.NewValidationError("contact_number", "contact number is required")
	case "Passengers":
		return domain.NewValidationError("passengers", "at least one passenger is required")
	case "Name":
		return domain.NewValidationError("passengers", "passenger name is required")
	case "Age":
		return domain.NewValidationError("passengers", "passenger age must be positive")
	case "Gender":
		return domain.NewValidationError("passengers", "gender must be one of Male, Female, Other")
	}
	return domain.NewValidationError(fe.Field(), fe.Error())
}

// canonicalGender folds case onto the allowed spellings. Unknown values are
// returned trimmed for the validator to reject.
func canonicalGender(g string) string {
	g = strings.TrimSpace(g)
	for _, allowed := range domain.Genders {
		if strings.EqualFold(g, allowed) {
			return allowed
		}
	}
	return g
}

var _ BookingUseCase = (*BookingService)(nil)
