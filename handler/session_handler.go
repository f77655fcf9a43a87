package handler

import (
	"context"

	"safeher/apperrors"
	"safeher/dto"
	"safeher/model"
	"safeher/usecase"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

type SessionService interface {
	Start(ctx context.Context, userID string, req dto.StartSessionRequest) (*model.Session, error)
	Stop(ctx context.Context, userID, sessionID, status string) (*model.Session, error)
	UpdateLocation(ctx context.Context, userID, sessionID string, in dto.LocationInput) (*model.Location, error)
	TriggerAlert(ctx context.Context, userID, sessionID string, req dto.TriggerAlertRequest, meta *model.AlertMetadata) (*model.Alert, error)
	Get(ctx context.Context, userID, sessionID string) (*model.Session, error)
	Active(ctx context.Context, userID string) (*model.Session, error)
	List(ctx context.Context, userID string, page, limit int) ([]model.Session, int64, error)
}

type SessionHandler struct {
	sessions SessionService
}

func NewSessionHandler(sessions SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.StartSessionRequest
	if !bindJSON(c, &req, false) {
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to start session")
		return
	}
	utils.Created(c, "Safety session started", dto.ToSessionResponse(session))
}

func (h *SessionHandler) Stop(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.StopSessionRequest
	if !bindJSON(c, &req, true) {
		return
	}

	session, err := h.sessions.Stop(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to stop session")
		return
	}
	utils.SuccessMessage(c, "Session ended", dto.ToSessionResponse(session))
}

func (h *SessionHandler) UpdateLocation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.LocationInput
	if !bindJSON(c, &req, false) {
		return
	}

	loc, err := h.sessions.UpdateLocation(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update location")
		return
	}
	utils.SuccessMessage(c, "Location updated", loc)
}

func (h *SessionHandler) TriggerAlert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.TriggerAlertRequest
	if !bindJSON(c, &req, true) {
		return
	}

	ua := c.Request.UserAgent()
	meta := &model.AlertMetadata{
		UserAgent: ua,
		IPAddress: c.ClientIP(),
		Device:    utils.DescribeDevice(ua),
	}

	alert, err := h.sessions.TriggerAlert(c.Request.Context(), userID, c.Param("id"), req, meta)
	if alert == nil {
		respondError(c, err, "Failed to send alert")
		return
	}
	if apperrors.Is(err, apperrors.KindPersistence) {
		_ = c.Error(err)
		utils.Created(c, "Alert sent to contacts but could not be saved", alert)
		return
	}
	utils.Created(c, "Emergency alert sent", alert)
}

func (h *SessionHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	session, err := h.sessions.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch session")
		return
	}
	utils.Success(c, dto.ToSessionResponse(session))
}

func (h *SessionHandler) Active(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	session, err := h.sessions.Active(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch active session")
		return
	}
	if session == nil {
		utils.Success(c, gin.H{"session": nil})
		return
	}
	utils.Success(c, gin.H{"session": dto.ToSessionResponse(session)})
}

func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	page, limit = usecase.NormalizePage(page, limit, 20)
	sessions, total, err := h.sessions.List(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch sessions")
		return
	}
	utils.Success(c, dto.ToSessionsPageResponse(sessions, page, limit, total))
}
