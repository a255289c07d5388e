package bookings_service_api

import (
	"context"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/fare"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName           = "skybooking.v1.BookingLookup"
	GetBookingByPNRMethod = "/" + ServiceName + "/GetBookingByPNR"
)

// BookingLookupServer is the read-only booking surface exposed over gRPC.
type BookingLookupServer interface {
	GetBookingByPNR(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes BookingLookup using well-known protobuf types only.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingLookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBookingByPNR", Handler: getBookingByPNRHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "skybooking/v1/booking_lookup.proto",
}

func Register(registrar grpc.ServiceRegistrar, srv BookingLookupServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) GetBookingByPNR(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	view, err := s.bookings.FindByReservationCode(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(bookingFields(view))
}

func getBookingByPNRHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BookingLookupServer).GetBookingByPNR(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetBookingByPNRMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BookingLookupServer).GetBookingByPNR(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func bookingFields(v *domain.BookingView) map[string]any {
	legs := make([]any, 0, len(v.Legs))
	for _, l := range v.Legs {
		leg := map[string]any{
			"sequence_no":       l.SequenceNo,
			"flight_number":     l.FlightNumber,
			"airline":           l.Airline,
			"departure_airport": l.DepartureAirport,
			"arrival_airport":   l.ArrivalAirport,
			"departure_time":    l.DepartureTime,
			"arrival_time":      l.ArrivalTime,
			"price":             fare.FormatAmount(l.PriceCents),
			"flight_date":       l.FlightDate.Format(domain.DateLayout),
			"layover_duration":  fare.FormatInterval(l.LayoverDuration),
		}
		if l.AvailableSeats != nil {
			leg["available_seats"] = *l.AvailableSeats
		}
		legs = append(legs, leg)
	}

	passengers := make([]any, 0, len(v.Passengers))
	for _, p := range v.Passengers {
		passengers = append(passengers, map[string]any{
			"name":   p.Name,
			"age":    p.Age,
			"gender": p.Gender,
			"status": string(p.Status),
		})
	}

	return map[string]any{
		"booking_id":     v.BookingID,
		"pnr":            v.ReservationCode,
		"booking_status": string(v.Status),
		"email":          v.Email,
		"contact_number": v.ContactNumber,
		"total_price":    fare.FormatAmount(v.TotalPriceCents),
		"total_duration": fare.FormatInterval(v.TotalDuration),
		"booked_at":      v.BookedAt.UTC().Format(time.RFC3339),
		"segments":       legs,
		"passengers":     passengers,
	}
}

var _ BookingLookupServer = (*Server)(nil)
