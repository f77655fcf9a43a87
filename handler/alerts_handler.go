package handler

import (
	"context"

	"safeher/dto"
	"safeher/model"
	"safeher/usecase"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type AlertService interface {
	List(ctx context.Context, userID string, page, limit int) ([]model.Alert, int64, error)
	ListBySession(ctx context.Context, userID, sessionID string) ([]model.Alert, error)
	Get(ctx context.Context, userID, id string) (*model.Alert, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
	Stats(ctx context.Context, userID string) (*model.AlertStats, error)
}

type AlertHandler struct {
	alerts AlertService
}

func NewAlertHandler(alerts AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	page, limit = usecase.NormalizePage(page, limit, 50)

	alerts, total, err := h.alerts.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch alerts")
		return
	}
	utils.Success(c, dto.ToAlertsPageResponse(alerts, page, limit, total))
}

func (h *AlertHandler) ListBySession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	alerts, err := h.alerts.ListBySession(c.Request.Context(), userID, c.Param("sessionId"))
	if err != nil {
		respondError(c, err, "Failed to fetch alerts")
		return
	}
	utils.Success(c, gin.H{"alerts": alerts, "count": len(alerts)})
}

func (h *AlertHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	alert, err := h.alerts.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch alert")
		return
	}
	utils.Success(c, alert)
}

func (h *AlertHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.alerts.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete alert")
		return
	}
	utils.SuccessMessage(c, "Alert deleted", nil)
}

func (h *AlertHandler) DeleteAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.alerts.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to clear alert history")
		return
	}
	utils.SuccessMessage(c, "Alert history cleared", gin.H{"deleted": n})
}
