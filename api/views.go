package api

import (
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/fare"
)

type segmentResponse struct {
	ID               int64  `json:"id"`
	FlightNumber     string `json:"flight_number"`
	Airline          string `json:"airline"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	Price            string `json:"price"`
}

type scheduledFlightResponse struct {
	segmentResponse
	FlightDate     string `json:"flight_date"`
	AvailableSeats int    `json:"available_seats"`
}

type legResponse struct {
	SequenceNo       int    `json:"sequence_no"`
	FlightNumber     string `json:"flight_number"`
	Airline          string `json:"airline"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	Price            string `json:"price"`
	FlightDate       string `json:"flight_date"`
	LayoverDuration  string `json:"layover_duration"`
	AvailableSeats   *int   `json:"available_seats"`
}

type passengerResponse struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Status string `json:"status"`
}

type historyEntryResponse struct {
	ItineraryID   int64               `json:"itinerary_id"`
	BookingID     int64               `json:"booking_id"`
	PNR           string              `json:"pnr"`
	BookingStatus string              `json:"booking_status"`
	TotalPrice    string              `json:"total_price"`
	TotalDuration string              `json:"total_duration"`
	BookedAt      time.Time           `json:"booked_at"`
	Segments      []legResponse       `json:"segments"`
	Passengers    []passengerResponse `json:"passengers"`
}

type bookingDetailsResponse struct {
	BookingID     int64               `json:"booking_id"`
	PNR           string              `json:"pnr"`
	BookingStatus string              `json:"booking_status"`
	Email         string              `json:"email"`
	ContactNumber string              `json:"contact_number"`
	TotalPrice    string              `json:"total_price"`
	TotalDuration string              `json:"total_duration"`
	BookedAt      time.Time           `json:"booked_at"`
	Segments      []legResponse       `json:"segments"`
	Passengers    []passengerResponse `json:"passengers"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newSegmentResponse(seg domain.FlightSegment) segmentResponse {
	return segmentResponse{
		ID:               seg.ID,
		FlightNumber:     seg.FlightNumber,
		Airline:          seg.Airline,
		DepartureAirport: seg.DepartureAirport,
		ArrivalAirport:   seg.ArrivalAirport,
		DepartureTime:    seg.DepartureTime,
		ArrivalTime:      seg.ArrivalTime,
		Price:            fare.FormatAmount(seg.PriceCents),
	}
}

func newScheduledFlightResponse(f domain.ScheduledFlight) scheduledFlightResponse {
	return scheduledFlightResponse{
		segmentResponse: newSegmentResponse(f.Segment),
		FlightDate:      f.FlightDate.Format(domain.DateLayout),
		AvailableSeats:  f.AvailableSeats,
	}
}

func newLegResponses(legs []domain.LegView) []legResponse {
	out := make([]legResponse, 0, len(legs))
	for _, l := range legs {
		out = append(out, legResponse{
			SequenceNo:       l.SequenceNo,
			FlightNumber:     l.FlightNumber,
			Airline:          l.Airline,
			DepartureAirport: l.DepartureAirport,
			ArrivalAirport:   l.ArrivalAirport,
			DepartureTime:    l.DepartureTime,
			ArrivalTime:      l.ArrivalTime,
			Price:            fare.FormatAmount(l.PriceCents),
			FlightDate:       l.FlightDate.Format(domain.DateLayout),
			LayoverDuration:  fare.FormatInterval(l.LayoverDuration),
			AvailableSeats:   l.AvailableSeats,
		})
	}
	return out
}

func newPassengerResponses(passengers []domain.PassengerView) []passengerResponse {
	out := make([]passengerResponse, 0, len(passengers))
	for _, p := range passengers {
		out = append(out, passengerResponse{
			Name:   p.Name,
			Age:    p.Age,
			Gender: p.Gender,
			Status: string(p.Status),
		})
	}
	return out
}

func newHistoryEntryResponse(v domain.ItineraryView) historyEntryResponse {
	return historyEntryResponse{
		ItineraryID:   v.ItineraryID,
		BookingID:     v.BookingID,
		PNR:           v.ReservationCode,
		BookingStatus: string(v.Status),
		TotalPrice:    fare.FormatAmount(v.TotalPriceCents),
		TotalDuration: fare.FormatInterval(v.TotalDuration),
		BookedAt:      v.BookedAt,
		Segments:      newLegResponses(v.Legs),
		Passengers:    newPassengerResponses(v.Passengers),
	}
}

func newBookingDetailsResponse(v domain.BookingView) bookingDetailsResponse {
	return bookingDetailsResponse{
		BookingID:     v.BookingID,
		PNR:           v.ReservationCode,
		BookingStatus: string(v.Status),
		Email:         v.Email,
		ContactNumber: v.ContactNumber,
		TotalPrice:    fare.FormatAmount(v.TotalPriceCents),
		TotalDuration: fare.FormatInterval(v.TotalDuration),
		BookedAt:      v.BookedAt,
		Segments:      newLegResponses(v.Legs),
		Passengers:    newPassengerResponses(v.Passengers),
	}
}
