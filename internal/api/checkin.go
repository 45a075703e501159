package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fandyandika/miqra/internal/middleware"
	"github.com/fandyandika/miqra/internal/service"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkinRoutes struct {
	cs service.CheckinServiceI
}

func NewCheckinRoutes(handler *gin.RouterGroup, cs service.CheckinServiceI) {
	r := &checkinRoutes{cs: cs}
	h := handler.Group("/checkins")
	h.Use(middleware.RequireUser())
	{
		h.POST("/", r.Submit)
		h.GET("/today", r.Today)
		h.GET("/recent", r.Recent)
	}
}

type SubmitCheckinRequest struct {
	Date      string `json:"date"`
	AyatCount int    `json:"ayat_count" binding:"required,min=1"`
}

func (r *checkinRoutes) Submit(c *gin.Context) {
	log := logger.Logger()

	var req SubmitCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	checkin, err := r.cs.Submit(c.Request.Context(), middleware.UserID(c), req.Date, req.AyatCount)
	if err != nil {
		if errors.Is(err, service.ErrFutureDate) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "date is in the future"})
			return
		}
		log.Error("failed to submit check-in", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit check-in"})
		return
	}

	c.JSON(http.StatusCreated, checkin)
}

func (r *checkinRoutes) Today(c *gin.Context) {
	checkin, err := r.cs.Today(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Logger().Error("failed to get today's check-in", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get today's check-in"})
		return
	}

	if checkin == nil {
		c.JSON(http.StatusOK, gin.H{"checked_in": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"checked_in": true, "checkin": checkin})
}

func (r *checkinRoutes) Recent(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		days = parsed
	}

	rows := r.cs.Recent(c.Request.Context(), middleware.UserID(c), days)
	c.JSON(http.StatusOK, gin.H{"checkins": rows})
}
