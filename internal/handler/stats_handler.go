package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-hours-api/internal/service"
	"github.com/noah-isme/uni-hours-api/pkg/response"
)

// StatsHandler exposes the role-scoped dashboard statistics endpoint.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Dashboard godoc
// @Summary Declaration statistics scoped to the caller's role
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.stats.ForActor(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
