package handler

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"safeher/apperrors"
	"safeher/logger"
	"safeher/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// respondError maps a service error onto the response envelope. Anything
// without a client-facing kind is logged and reported as fallback.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	msg := apperrors.Message(err)
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		utils.NotFound(c, msg)
	case apperrors.KindValidation:
		utils.BadRequest(c, msg)
	case apperrors.KindConflict:
		utils.Conflict(c, msg)
	case apperrors.KindUnauthorized:
		utils.Unauthorized(c, msg)
	default:
		logger.Error(fallback,
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		utils.TrackError("http", "internal")
		utils.InternalError(c, fallback)
	}
}

// bindJSON binds the body into dst and writes a 400 on failure. An empty body
// is accepted when optional is set.
func bindJSON(c *gin.Context, dst interface{}, optional bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	utils.TrackError("validation", "invalid_request")
	utils.BadRequest(c, describeBindError(err))
	return false
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "phone10":
			parts = append(parts, fmt.Sprintf("%s must be a 10-digit phone number", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		utils.Unauthorized(c, "Missing or invalid token")
		return "", false
	}
	return userID, true
}
