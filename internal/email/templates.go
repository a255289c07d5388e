package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/fare"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.New("email").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFiles, "templates/*.html"))

type TicketLeg struct {
	FlightNumber string
	Airline      string
	Date         string
	From         string
	To           string
	Departure    string
	Arrival      string
}

type TicketPassenger struct {
	Name   string
	Age    int
	Gender string
}

type TicketData struct {
	ReservationCode string
	TotalPrice      string
	Legs            []TicketLeg
	Passengers      []TicketPassenger
}

// NewTicketLeg formats one booked leg for the ticket.
func NewTicketLeg(seg domain.FlightSegment, date time.Time) TicketLeg {
	return TicketLeg{
		FlightNumber: seg.FlightNumber,
		Airline:      seg.Airline,
		Date:         date.Format("Monday, 2 January 2006"),
		From:         seg.DepartureAirport,
		To:           seg.ArrivalAirport,
		Departure:    FormatClock(seg.DepartureTime),
		Arrival:      FormatClock(seg.ArrivalTime),
	}
}

func TicketMessage(to string, data TicketData) (Message, error) {
	body, err := render("ticket.html", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:            TypeTicket,
		ReservationCode: data.ReservationCode,
		To:              to,
		Subject:         "Your Flight Ticket - PNR: " + data.ReservationCode,
		HTMLBody:        body,
	}, nil
}

func CancellationMessage(to, reservationCode string, refundCents int64) (Message, error) {
	body, err := render("cancellation.html", struct {
		ReservationCode string
		RefundAmount    string
	}{reservationCode, FormatAmount(refundCents)})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:            TypeCancellation,
		ReservationCode: reservationCode,
		To:              to,
		Subject:         "Booking Cancellation Confirmation - PNR: " + reservationCode,
		HTMLBody:        body,
	}, nil
}

func VerificationMessage(to, name, link string, expiresIn time.Duration) (Message, error) {
	body, err := render("verification.html", struct {
		Name      string
		Link      string
		ExpiresIn string
	}{name, link, expiresIn.String()})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:     TypeVerification,
		To:       to,
		Subject:  "Verify your email",
		HTMLBody: body,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// FormatClock turns "14:05" into "2:05 PM". Unparseable input is returned as is.
func FormatClock(hhmm string) string {
	parts := strings.SplitN(hhmm, ":", 3)
	if len(parts) < 2 {
		return hhmm
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return hhmm
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	hour := h % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%s %s", hour, parts[1], suffix)
}

// FormatAmount renders minor units as a decimal amount.
func FormatAmount(cents int64) string {
	return fare.FormatAmount(cents)
}
