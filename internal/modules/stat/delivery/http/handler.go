package handler

import (
	"net/http"

	"anoa.com/softdesk/internal/middleware"
	statService "anoa.com/softdesk/internal/modules/stat/service"
	"anoa.com/softdesk/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

func (h *StatHandler) GetProjectStats(c *gin.Context) {
	scope, err := middleware.ParseScope(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.statService.ProjectStats(c.Request.Context(), scope)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
