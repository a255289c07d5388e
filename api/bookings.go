package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/skybooking/internal/domain"
	"github.com/Domenick1991/skybooking/internal/fare"
	"github.com/Domenick1991/skybooking/internal/middleware"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type BookingHandler struct {
	service booking.BookingUseCase
	logger  *logrus.Logger
}

// createBookingRequest accepts a single flight through flight_number and
// date, or an ordered itinerary through legs. The owner comes only from the
// bearer token; a user_id in the body is ignored.
type createBookingRequest struct {
	FlightNumber  string                   `json:"flight_number"`
	Date          string                   `json:"date"`
	Legs          []booking.LegInput       `json:"legs"`
	Email         string                   `json:"email"`
	ContactNumber string                   `json:"contact_number"`
	Passengers    []booking.PassengerInput `json:"passengers"`
}

type createBookingResponse struct {
	Message    string `json:"message"`
	PNR        string `json:"pnr"`
	BookingID  int64  `json:"booking_id"`
	TotalPrice string `json:"total_price"`
	Warning    string `json:"warning,omitempty"`
}

type cancelBookingResponse struct {
	Message      string `json:"message"`
	PNR          string `json:"pnr"`
	RefundAmount string `json:"refundAmount"`
	Warning      string `json:"warning,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

// Register mounts the booking routes. requireAuth guards history and
// cancellation; optionalAuth lets guests book.
func (h *BookingHandler) Register(router *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc) {
	router.POST("", optionalAuth, h.create)
	router.GET("/history", requireAuth, h.history)
	router.GET("/pnr/:pnr", h.getByPNR)
	router.POST("/cancel/:id", requireAuth, h.cancel)
}

func (r createBookingRequest) toInput() booking.CreateBookingInput {
	legs := r.Legs
	if len(legs) == 0 && (r.FlightNumber != "" || r.Date != "") {
		legs = []booking.LegInput{{FlightNumber: r.FlightNumber, Date: r.Date}}
	}
	return booking.CreateBookingInput{
		Legs:          legs,
		Email:         r.Email,
		ContactNumber: r.ContactNumber,
		Passengers:    r.Passengers,
	}
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required, including passengers"})
		return
	}

	input := req.toInput()
	if userID, ok := middleware.GetUserID(c); ok {
		input.UserID = &userID
	}

	result, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, createBookingResponse{
		Message:    "Booking confirmed",
		PNR:        result.ReservationCode,
		BookingID:  result.BookingID,
		TotalPrice: fare.FormatAmount(result.TotalPriceCents),
		Warning:    strings.Join(result.Warnings, "; "),
	})
}

func (h *BookingHandler) history(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	views, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch booking history")
		return
	}

	history := make([]historyEntryResponse, 0, len(views))
	for _, v := range views {
		history = append(history, newHistoryEntryResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *BookingHandler) getByPNR(c *gin.Context) {
	view, err := h.service.FindByReservationCode(c.Request.Context(), c.Param("pnr"))
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No booking found with this PNR"})
			return
		}
		respondError(c, h.logger, err, "Failed to fetch booking details")
		return
	}
	c.JSON(http.StatusOK, newBookingDetailsResponse(*view))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, cancelBookingResponse{
		Message:      "Booking cancelled successfully",
		PNR:          result.ReservationCode,
		RefundAmount: fare.FormatAmount(result.RefundAmountCents),
		Warning:      strings.Join(result.Warnings, "; "),
	})
}
