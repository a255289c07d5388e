// Package fare derives prices and elapsed flight time from segment data.
package fare

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// ComputeTotal returns the price for passengerCount seats at a flat segment price.
func ComputeTotal(segmentPriceCents int64, passengerCount int) int64 {
	return segmentPriceCents * int64(passengerCount)
}

// ComputeDuration returns the elapsed time between two time-of-day values.
// An arrival earlier than the departure is taken to be on the next day.
// Multi-day flights are not representable.
func ComputeDuration(departure, arrival string) (time.Duration, error) {
	dep, err := ParseTimeOfDay(departure)
	if err != nil {
		return 0, fmt.Errorf("departure: %w", err)
	}
	arr, err := ParseTimeOfDay(arrival)
	if err != nil {
		return 0, fmt.Errorf("arrival: %w", err)
	}
	if arr < dep {
		arr += day
	}
	return arr - dep, nil
}

// ParseTimeOfDay parses HH:MM or HH:MM:SS into an offset from midnight.
func ParseTimeOfDay(value string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}

	limits := []int{24, 60, 60}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n >= limits[i] {
			return 0, fmt.Errorf("invalid time of day %q", value)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

// FormatInterval renders d as HH:MM:00, whole minutes only.
func FormatInterval(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60)
}

// FormatAmount renders cents as a decimal string, 500000 -> "5000.00".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Leg is the pricing input for one flight of an itinerary.
type Leg struct {
	PriceCents    int64
	FlightDate    time.Time
	DepartureTime string
	ArrivalTime   string
}

// Quote is the computed price and timing of an itinerary.
type Quote struct {
	TotalPriceCents int64
	TotalDuration   time.Duration
	LegDurations    []time.Duration
	// Layovers[i] is the wait before leg i; Layovers[0] is always zero.
	Layovers []time.Duration
}

// QuoteItinerary prices legs for passengerCount travellers. The total
// duration is the sum of flight times and layovers; with a single leg it
// equals ComputeDuration.
func QuoteItinerary(legs []Leg, passengerCount int) (Quote, error) {
	q := Quote{
		LegDurations: make([]time.Duration, len(legs)),
		Layovers:     make([]time.Duration, len(legs)),
	}

	var prevArrival time.Time
	for i, leg := range legs {
		q.TotalPriceCents += ComputeTotal(leg.PriceCents, passengerCount)

		flight, err := ComputeDuration(leg.DepartureTime, leg.ArrivalTime)
		if err != nil {
			return Quote{}, fmt.Errorf("leg %d: %w", i+1, err)
		}
		q.LegDurations[i] = flight

		dep, _ := ParseTimeOfDay(leg.DepartureTime)
		departure := leg.FlightDate.Add(dep)
		if i > 0 {
			if wait := departure.Sub(prevArrival); wait > 0 {
				q.Layovers[i] = wait
			}
		}
		prevArrival = departure.Add(flight)

		q.TotalDuration += flight + q.Layovers[i]
	}
	return q, nil
}
