package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PassengerStatus string

const (
	PassengerStatusConfirmed PassengerStatus = "confirmed"
	PassengerStatusCancelled PassengerStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Genders accepted for a passenger.
var Genders = []string{"Male", "Female", "Other"}

// Itinerary is one purchase transaction. UserID is nil for guest bookings.
type Itinerary struct {
	ID              int64
	UserID          *int64
	TotalPriceCents int64
	TotalDuration   time.Duration
	BookedAt        time.Time
}

// ItinerarySegment binds an itinerary to one (segment, date) leg.
type ItinerarySegment struct {
	ID              int64
	ItineraryID     int64
	SegmentID       int64
	FlightDate      time.Time
	SequenceNo      int
	LayoverDuration time.Duration
}

type Booking struct {
	ID              int64
	ItineraryID     int64
	Status          BookingStatus
	BookedAt        time.Time
	Email           string
	ContactNumber   string
	ReservationCode string
}

type Payment struct {
	ID          int64
	BookingID   int64
	AmountCents int64
	Status      PaymentStatus
	PaidAt      *time.Time
}

type Passenger struct {
	ID        int64
	BookingID int64
	Name      string
	Age       int
	Gender    string
	Status    PassengerStatus
}

// OwnedBooking is a booking joined with the parts of its itinerary the
// cancellation flow needs.
type OwnedBooking struct {
	Booking
	UserID          int64
	TotalPriceCents int64
}
