package api

import (
	"net/http"

	"github.com/fandyandika/miqra/internal/middleware"
	"github.com/fandyandika/miqra/internal/service"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type streakRoutes struct {
	ss service.StreakServiceI
}

func NewStreakRoutes(handler *gin.RouterGroup, ss service.StreakServiceI) {
	r := &streakRoutes{ss: ss}
	h := handler.Group("/streak")
	h.Use(middleware.RequireUser())
	{
		h.GET("/", r.Status)
		h.POST("/recompute", r.Recompute)
	}
}

func (r *streakRoutes) Status(c *gin.Context) {
	status, err := r.ss.Status(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Logger().Error("failed to get streak status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get streak status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (r *streakRoutes) Recompute(c *gin.Context) {
	streak, err := r.ss.Recompute(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Logger().Error("failed to recompute streak", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recompute streak"})
		return
	}

	c.JSON(http.StatusOK, streak)
}
