package dto

import (
	"time"

	"safeher/model"
)

type Link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"` // Optional: GET, POST, PUT, DELETE
}

type UserProfileResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	CreatedAt time.Time       `json:"created_at"`
	LastLogin time.Time       `json:"last_login,omitempty"`
	Links     map[string]Link `json:"_links,omitempty"`
}

func ToUserProfileResponse(user *model.User, links map[string]Link) UserProfileResponse {
	return UserProfileResponse{
		ID:        user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLogin,
		Links:     links,
	}
}

type AuthResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      UserProfileResponse `json:"user"`
}

type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPageInfo(page, limit int, total int64) PageInfo {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return PageInfo{Page: page, Limit: limit, Total: total, Pages: pages}
}
