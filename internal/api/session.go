package api

import (
	"net/http"

	"github.com/fandyandika/miqra/internal/middleware"
	"github.com/fandyandika/miqra/internal/realtime"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sessionRoutes struct {
	rt *realtime.Subscriber
}

// NewSessionRoutes ties realtime invalidation to the user's session:
// the app shell opens a session on login, which subscribes to the
// user's row changes, and closes it on logout so listeners do not leak
// across login cycles.
func NewSessionRoutes(handler *gin.RouterGroup, rt *realtime.Subscriber) {
	r := &sessionRoutes{rt: rt}
	h := handler.Group("/session")
	h.Use(middleware.RequireUser())
	{
		h.POST("/", r.Open)
		h.DELETE("/", r.Close)
	}
}

func (r *sessionRoutes) Open(c *gin.Context) {
	userID := middleware.UserID(c)

	if _, err := r.rt.Subscribe(userID); err != nil {
		// Degraded mode: caches go stale until the next sync pass, but
		// the session itself is fine.
		logger.Logger().Warn("realtime subscription failed",
			zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"realtime": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"realtime": true})
}

func (r *sessionRoutes) Close(c *gin.Context) {
	r.rt.UnsubscribeUser(middleware.UserID(c))
	c.Status(http.StatusNoContent)
}
