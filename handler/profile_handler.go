package handler

import (
	"net/http"

	"safeher/dto"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

func profileLinks() map[string]dto.Link {
	return map[string]dto.Link{
		"self":     {Href: "/api/auth/me", Method: http.MethodGet},
		"contacts": {Href: "/api/contacts", Method: http.MethodGet},
		"session":  {Href: "/api/session/active", Method: http.MethodGet},
		"alerts":   {Href: "/api/alerts", Method: http.MethodGet},
		"logout":   {Href: "/api/auth/logout", Method: http.MethodPost},
	}
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Could not fetch user details")
		return
	}

	utils.Success(c, dto.ToUserProfileResponse(user, profileLinks()))
}
