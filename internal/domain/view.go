package domain

import "time"

// LegView is one flight of an itinerary as shown to the customer.
type LegView struct {
	SequenceNo       int
	FlightNumber     string
	Airline          string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    string
	ArrivalTime      string
	PriceCents       int64
	FlightDate       time.Time
	LayoverDuration  time.Duration
	// AvailableSeats is nil when the schedule row no longer exists.
	AvailableSeats *int
}

type PassengerView struct {
	Name   string
	Age    int
	Gender string
	Status PassengerStatus
}

// ItineraryView is a history entry.
type ItineraryView struct {
	ItineraryID     int64
	BookingID       int64
	ReservationCode string
	Status          BookingStatus
	TotalPriceCents int64
	TotalDuration   time.Duration
	BookedAt        time.Time
	Legs            []LegView
	Passengers      []PassengerView
}

// BookingView is the result of a reservation code lookup.
type BookingView struct {
	BookingID       int64
	ReservationCode string
	Status          BookingStatus
	Email           string
	ContactNumber   string
	TotalPriceCents int64
	TotalDuration   time.Duration
	BookedAt        time.Time
	Legs            []LegView
	Passengers      []PassengerView
}
