package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stayflow/booking-pipeline/internal/domain"
	"github.com/stayflow/booking-pipeline/internal/repository"
)

// StatsHandler serves the materialized aggregates. Reads only; a key that
// has never seen a booking is a 404, not a zero row.
type StatsHandler struct {
	repo   *repository.AggregateRepository
	logger *zap.Logger
}

func NewStatsHandler(repo *repository.AggregateRepository, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *StatsHandler) GetUserStats(c *gin.Context) {
	stats, err := h.repo.GetUserStats(c.Request.Context(), c.Param("id"))
	h.respond(c, stats, err)
}

func (h *StatsHandler) GetHotelStats(c *gin.Context) {
	stats, err := h.repo.GetHotelStats(c.Request.Context(), c.Param("id"))
	h.respond(c, stats, err)
}

func (h *StatsHandler) GetDayStats(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, want YYYY-MM-DD"})
		return
	}

	stats, err := h.repo.GetDayStats(c.Request.Context(), domain.DayKey(day))
	h.respond(c, stats, err)
}

func (h *StatsHandler) respond(c *gin.Context, stats interface{}, err error) {
	if err != nil {
		if errors.Is(err, repository.ErrStatsNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stats not found"})
			return
		}
		h.logger.Error("Failed to read stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
