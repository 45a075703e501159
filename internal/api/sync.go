package api

import (
	"net/http"

	"github.com/fandyandika/miqra/internal/service"

	"github.com/gin-gonic/gin"
)

type syncRoutes struct {
	sm service.SyncManagerI
}

// NewSyncRoutes exposes the sync pipeline to the app shell: the status
// indicator and the explicit pull-to-refresh trigger.
func NewSyncRoutes(handler *gin.RouterGroup, sm service.SyncManagerI) {
	r := &syncRoutes{sm: sm}
	h := handler.Group("/sync")
	{
		h.GET("/status", r.Status)
		h.POST("/", r.Trigger)
	}
}

func (r *syncRoutes) Status(c *gin.Context) {
	c.JSON(http.StatusOK, r.sm.Status(c.Request.Context()))
}

// Trigger runs a sync pass. The app shell reports its lifecycle through
// the reason query so the logs show what woke the pipeline; triggers
// arriving mid-pass coalesce server-side.
func (r *syncRoutes) Trigger(c *gin.Context) {
	ctx := c.Request.Context()

	var result service.SyncResult
	switch c.Query("reason") {
	case "foreground":
		result = r.sm.NotifyForeground(ctx)
	case "network":
		result = r.sm.NotifyNetworkUp(ctx)
	default:
		result = r.sm.SyncNow(ctx)
	}

	c.JSON(http.StatusOK, result)
}
