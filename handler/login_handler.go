package handler

import (
	"safeher/model"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req, false) {
		utils.TrackAuthAttempt("failure", "validation")
		return
	}

	res, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	utils.SuccessMessage(c, "Login successful", authResponse(res))
}
