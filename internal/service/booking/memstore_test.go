package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/repository"
)

// memStore is an in-memory BookingStore. Each unit of work runs against a
// private copy of the state which replaces the shared state only when fn
// returns nil. Units are serialized, which mirrors the row lock on the
// schedule taken by the conditional UPDATE.
type memStore struct {
	mu      sync.Mutex
	state   *memState
	failOn  map[string]error
	commits int
	// touched records every schedule row reserved or released, in call order.
	touched []scheduleKey
}

type scheduleKey struct {
	segmentID int64
	date      string
}

type memState struct {
	nextID      int64
	segments    map[int64]domain.FlightSegment
	capacity    map[int64]int
	schedules   map[scheduleKey]int
	itineraries map[int64]domain.Itinerary
	itinSegs    []domain.ItinerarySegment
	bookings    map[int64]domain.Booking
	payments    []domain.Payment
	passengers  []domain.Passenger
}

func newMemStore() *memStore {
	return &memStore{
		state: &memState{
			segments:    map[int64]domain.FlightSegment{},
			capacity:    map[int64]int{},
			schedules:   map[scheduleKey]int{},
			itineraries: map[int64]domain.Itinerary{},
			bookings:    map[int64]domain.Booking{},
		},
		failOn: map[string]error{},
	}
}

func (m *memStore) addSegment(seg domain.FlightSegment, capacity int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextID++
	seg.ID = m.state.nextID
	m.state.segments[seg.ID] = seg
	m.state.capacity[seg.ID] = capacity
	return seg.ID
}

func (m *memStore) addSchedule(segmentID int64, date string, seats int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.schedules[scheduleKey{segmentID, date}] = seats
}

func (m *memStore) addBooking(b domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.nextID++
	b.ID = m.state.nextID
	m.state.bookings[b.ID] = b
}

func (m *memStore) seats(segmentID int64, date string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.schedules[scheduleKey{segmentID, date}]
}

func (m *memStore) booking(id int64) (domain.Booking, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.state.bookings[id]
	return b, ok
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.bookings)
}

func (m *memStore) snapshot() memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state.clone()
}

func (m *memStore) passengersOf(bookingID int64) []domain.Passenger {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Passenger
	for _, p := range m.state.passengers {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out
}

func (m *memStore) touchedRows() []scheduleKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]scheduleKey(nil), m.touched...)
}

func (m *memStore) fail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[method] = err
}

func (m *memStore) InTx(_ context.Context, fn func(tx repository.BookingTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(&memTx{st: work, failOn: m.failOn, touched: &m.touched}); err != nil {
		return err
	}
	m.state = work
	m.commits++
	return nil
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID:      s.nextID,
		segments:    make(map[int64]domain.FlightSegment, len(s.segments)),
		capacity:    make(map[int64]int, len(s.capacity)),
		schedules:   make(map[scheduleKey]int, len(s.schedules)),
		itineraries: make(map[int64]domain.Itinerary, len(s.itineraries)),
		itinSegs:    append([]domain.ItinerarySegment(nil), s.itinSegs...),
		bookings:    make(map[int64]domain.Booking, len(s.bookings)),
		payments:    append([]domain.Payment(nil), s.payments...),
		passengers:  append([]domain.Passenger(nil), s.passengers...),
	}
	for k, v := range s.segments {
		c.segments[k] = v
	}
	for k, v := range s.capacity {
		c.capacity[k] = v
	}
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	for k, v := range s.itineraries {
		c.itineraries[k] = v
	}
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	return c
}

type memTx struct {
	st      *memState
	failOn  map[string]error
	touched *[]scheduleKey
}

func (t *memTx) id() int64 {
	t.st.nextID++
	return t.st.nextID
}

func (t *memTx) ReserveSeats(_ context.Context, segmentID int64, date time.Time, count int) error {
	if err := t.failOn["ReserveSeats"]; err != nil {
		return err
	}
	if count <= 0 {
		return domain.NewValidationError("passengers", "seat count must be positive")
	}
	key := scheduleKey{segmentID, date.Format(domain.DateLayout)}
	*t.touched = append(*t.touched, key)
	available, ok := t.st.schedules[key]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	if available < count {
		return &domain.InsufficientInventoryError{SegmentID: segmentID, Remaining: available, Requested: count}
	}
	t.st.schedules[key] = available - count
	return nil
}

func (t *memTx) ReleaseSeats(_ context.Context, segmentID int64, date time.Time, count int) error {
	if err := t.failOn["ReleaseSeats"]; err != nil {
		return err
	}
	if count <= 0 {
		return domain.NewValidationError("passengers", "seat count must be positive")
	}
	key := scheduleKey{segmentID, date.Format(domain.DateLayout)}
	*t.touched = append(*t.touched, key)
	available, ok := t.st.schedules[key]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	if capacity, ok := t.st.capacity[segmentID]; ok && capacity > 0 && available+count > capacity {
		return domain.ErrCapacityExceeded
	}
	t.st.schedules[key] = available + count
	return nil
}

func (t *memTx) SegmentByFlightNumber(_ context.Context, flightNumber string) (*domain.FlightSegment, error) {
	ids := make([]int64, 0, len(t.st.segments))
	for id := range t.st.segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if seg := t.st.segments[id]; seg.FlightNumber == flightNumber {
			return &seg, nil
		}
	}
	return nil, domain.ErrFlightNotFound
}

func (t *memTx) CreateItinerary(_ context.Context, it *domain.Itinerary) error {
	if err := t.failOn["CreateItinerary"]; err != nil {
		return err
	}
	it.ID = t.id()
	t.st.itineraries[it.ID] = *it
	return nil
}

func (t *memTx) AddItinerarySegment(_ context.Context, s *domain.ItinerarySegment) error {
	s.ID = t.id()
	t.st.itinSegs = append(t.st.itinSegs, *s)
	return nil
}

func (t *memTx) ReservationCodeExists(_ context.Context, code string) (bool, error) {
	for _, b := range t.st.bookings {
		if b.ReservationCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateBooking(_ context.Context, b *domain.Booking) error {
	if err := t.failOn["CreateBooking"]; err != nil {
		return err
	}
	b.ID = t.id()
	t.st.bookings[b.ID] = *b
	return nil
}

func (t *memTx) CreatePayment(_ context.Context, p *domain.Payment) error {
	if err := t.failOn["CreatePayment"]; err != nil {
		return err
	}
	p.ID = t.id()
	t.st.payments = append(t.st.payments, *p)
	return nil
}

func (t *memTx) AddPassengers(_ context.Context, bookingID int64, passengers []domain.Passenger) error {
	if err := t.failOn["AddPassengers"]; err != nil {
		return err
	}
	for i := range passengers {
		passengers[i].ID = t.id()
		passengers[i].BookingID = bookingID
		t.st.passengers = append(t.st.passengers, passengers[i])
	}
	return nil
}

func (t *memTx) LockBookingForOwner(_ context.Context, bookingID, userID int64) (*domain.OwnedBooking, error) {
	b, ok := t.st.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	it, ok := t.st.itineraries[b.ItineraryID]
	if !ok || it.UserID == nil || *it.UserID != userID {
		return nil, domain.ErrBookingNotFound
	}
	return &domain.OwnedBooking{Booking: b, UserID: userID, TotalPriceCents: it.TotalPriceCents}, nil
}

func (t *memTx) CountPassengers(_ context.Context, bookingID int64) (int, error) {
	n := 0
	for _, p := range t.st.passengers {
		if p.BookingID == bookingID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) ItinerarySegments(_ context.Context, itineraryID int64) ([]domain.ItinerarySegment, error) {
	var out []domain.ItinerarySegment
	for _, s := range t.st.itinSegs {
		if s.ItineraryID == itineraryID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNo < out[j].SequenceNo })
	return out, nil
}

func (t *memTx) CancelPassengers(_ context.Context, bookingID int64) error {
	for i := range t.st.passengers {
		if t.st.passengers[i].BookingID == bookingID {
			t.st.passengers[i].Status = domain.PassengerStatusCancelled
		}
	}
	return nil
}

func (t *memTx) SetBookingStatus(_ context.Context, bookingID int64, status domain.BookingStatus) error {
	if err := t.failOn["SetBookingStatus"]; err != nil {
		return err
	}
	b, ok := t.st.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	t.st.bookings[bookingID] = b
	return nil
}

var (
	_ repository.BookingStore = (*memStore)(nil)
	_ repository.BookingTx    = (*memTx)(nil)
)
