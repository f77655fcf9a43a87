package handler

import (
	"time"

	"safeher/utils"

	"github.com/gin-gonic/gin"
)

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if token == "" {
		utils.Unauthorized(c, "Missing or invalid token")
		return
	}
	expiresAt, _ := c.Get("token_expires_at")
	exp, _ := expiresAt.(time.Time)

	if err := h.users.Logout(c.Request.Context(), token, exp); err != nil {
		respondError(c, err, "Logout failed")
		return
	}

	utils.SuccessMessage(c, "Successfully logged out", nil)
}
