package handler

import (
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

// Overview summarises the caller's alert history: totals by reason and by
// delivery status plus the five most recent alerts.
func (h *AlertHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.alerts.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to compute alert statistics")
		return
	}
	utils.Success(c, stats)
}
