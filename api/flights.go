package api

import (
	"net/http"

	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type FlightHandler struct {
	service flights.FlightUseCase
	logger  *logrus.Logger
}

func NewFlightHandler(service flights.FlightUseCase, logger *logrus.Logger) *FlightHandler {
	return &FlightHandler{service: service, logger: logger}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/search", h.search)
}

func (h *FlightHandler) list(c *gin.Context) {
	segments, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to fetch flights")
		return
	}

	out := make([]segmentResponse, 0, len(segments))
	for _, seg := range segments {
		out = append(out, newSegmentResponse(seg))
	}
	c.JSON(http.StatusOK, out)
}

func (h *FlightHandler) search(c *gin.Context) {
	found, err := h.service.Search(c.Request.Context(), c.Query("from"), c.Query("to"), c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to search flights")
		return
	}

	out := make([]scheduledFlightResponse, 0, len(found))
	for _, f := range found {
		out = append(out, newScheduledFlightResponse(f))
	}
	c.JSON(http.StatusOK, gin.H{"flights": out})
}
