package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fandyandika/miqra/internal/service"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type hasanatRoutes struct {
	hs service.HasanatServiceI
}

// NewHasanatRoutes registers the reward-preview endpoint. No user
// required: the preview is a pure lookup.
func NewHasanatRoutes(handler *gin.RouterGroup, hs service.HasanatServiceI) {
	r := &hasanatRoutes{hs: hs}
	handler.GET("/hasanat/preview", r.Preview)
}

func (r *hasanatRoutes) Preview(c *gin.Context) {
	surah, err1 := strconv.Atoi(c.Query("surah"))
	start, err2 := strconv.Atoi(c.Query("start"))
	end, err3 := strconv.Atoi(c.Query("end"))
	if err1 != nil || err2 != nil || err3 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "surah, start and end must be integers"})
		return
	}

	preview, err := r.hs.PreviewRange(surah, start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ayah range"})
			return
		}
		logger.Logger().Error("failed to compute hasanat preview", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute preview"})
		return
	}

	c.JSON(http.StatusOK, preview)
}
