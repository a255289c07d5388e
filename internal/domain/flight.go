package domain

import "time"

// DateLayout is the calendar-date format used on the wire and for schedule keys.
const DateLayout = "2006-01-02"

type Aircraft struct {
	ID              int64
	TailNumber      string
	Model           string
	SeatingCapacity int
	Status          string
}

// FlightSegment is a static route template. DepartureTime and ArrivalTime are
// time-of-day values formatted as HH:MM.
type FlightSegment struct {
	ID               int64
	FlightNumber     string
	Airline          string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    string
	ArrivalTime      string
	PriceCents       int64
	AircraftID       *int64
	CreatedAt        time.Time
}

// FlightSchedule is a segment instantiated on a calendar date.
type FlightSchedule struct {
	ID             int64
	SegmentID      int64
	FlightDate     time.Time
	AvailableSeats int
}

// ScheduledFlight is a search result: a segment together with its schedule on one date.
type ScheduledFlight struct {
	Segment        FlightSegment
	FlightDate     time.Time
	AvailableSeats int
}

// SearchQuery filters scheduled flights. Empty airports match everything.
type SearchQuery struct {
	From string
	To   string
	Date time.Time
}
