package flights_service_api

import (
	"context"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/fare"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName         = "skybooking.v1.FlightSearch"
	ListFlightsMethod   = "/" + ServiceName + "/ListFlights"
	SearchFlightsMethod = "/" + ServiceName + "/SearchFlights"
)

type FlightSearchServer interface {
	ListFlights(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// SearchFlights reads the string fields from, to and date of req.
	SearchFlights(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightSearchServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListFlights", Handler: listFlightsHandler},
		{MethodName: "SearchFlights", Handler: searchFlightsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "skybooking/v1/flight_search.proto",
}

func Register(registrar grpc.ServiceRegistrar, srv FlightSearchServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

func (s *Server) ListFlights(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(list))
	for _, seg := range list {
		out = append(out, segmentFields(seg))
	}
	return structpb.NewStruct(map[string]any{"flights": out})
}

func (s *Server) SearchFlights(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	found, err := s.flights.Search(ctx,
		fields["from"].GetStringValue(),
		fields["to"].GetStringValue(),
		fields["date"].GetStringValue(),
	)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(found))
	for _, f := range found {
		flight := segmentFields(f.Segment)
		flight["flight_date"] = f.FlightDate.Format(domain.DateLayout)
		flight["available_seats"] = f.AvailableSeats
		out = append(out, flight)
	}
	return structpb.NewStruct(map[string]any{"flights": out})
}

func listFlightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightSearchServer).ListFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListFlightsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightSearchServer).ListFlights(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func searchFlightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightSearchServer).SearchFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SearchFlightsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FlightSearchServer).SearchFlights(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func segmentFields(seg domain.FlightSegment) map[string]any {
	return map[string]any{
		"id":                seg.ID,
		"flight_number":     seg.FlightNumber,
		"airline":           seg.Airline,
		"departure_airport": seg.DepartureAirport,
		"arrival_airport":   seg.ArrivalAirport,
		"departure_time":    seg.DepartureTime,
		"arrival_time":      seg.ArrivalTime,
		"price":             fare.FormatAmount(seg.PriceCents),
	}
}

var _ FlightSearchServer = (*Server)(nil)
