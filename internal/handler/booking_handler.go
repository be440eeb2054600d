package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stayflow/booking-pipeline/internal/domain"
	"github.com/stayflow/booking-pipeline/internal/service"
)

type BookingHandler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
}

func NewBookingHandler(bookingService *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req domain.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	requestID := c.GetString("request_id")

	booking, err := h.bookingService.Create(c.Request.Context(), req.UserID, req.HotelID, req.PromoCode)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      verr.Reason,
				"request_id": requestID,
			})
			return
		}

		h.logger.Error("Failed to create booking",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to create booking",
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingService.List(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		h.logger.Error("Failed to list bookings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
