package dto

import (
	"time"

	"safeher/model"
)

type LocationInput struct {
	Latitude  *float64   `json:"latitude" binding:"required"`
	Longitude *float64   `json:"longitude" binding:"required"`
	Accuracy  float64    `json:"accuracy"`
	Timestamp *time.Time `json:"timestamp"`
}

// ToLocation fills a missing timestamp with now.
func (l *LocationInput) ToLocation(now time.Time) model.Location {
	loc := model.Location{Accuracy: l.Accuracy, Timestamp: now}
	if l.Latitude != nil {
		loc.Latitude = *l.Latitude
	}
	if l.Longitude != nil {
		loc.Longitude = *l.Longitude
	}
	if l.Timestamp != nil {
		loc.Timestamp = *l.Timestamp
	}
	return loc
}

type StartSessionRequest struct {
	VehicleType     string         `json:"vehicle_type" binding:"required"`
	VehicleNumber   string         `json:"vehicle_number" binding:"max=20"`
	DriverNotes     string         `json:"driver_notes" binding:"max=500"`
	DurationMinutes int            `json:"duration_minutes" binding:"required,min=1,max=1440"`
	Location        *LocationInput `json:"location"`
}

type StopSessionRequest struct {
	Status string `json:"status" binding:"omitempty,oneof=completed cancelled"`
}

type TriggerAlertRequest struct {
	Reason   string         `json:"reason"`
	Location *LocationInput `json:"location"`
}

type SessionResponse struct {
	*model.Session
	Links map[string]Link `json:"_links,omitempty"`
}

func ToSessionResponse(s *model.Session) SessionResponse {
	self := "/api/session/" + s.ID
	links := map[string]Link{
		"self": {Href: self, Method: "GET"},
	}
	if s.Status == model.SessionActive {
		links["stop"] = Link{Href: self + "/stop", Method: "POST"}
		links["location"] = Link{Href: self + "/location", Method: "POST"}
		links["alert"] = Link{Href: self + "/alert", Method: "POST"}
	}
	return SessionResponse{Session: s, Links: links}
}

type SessionsPageResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	PageInfo
}

func ToSessionsPageResponse(sessions []model.Session, page, limit int, total int64) SessionsPageResponse {
	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, ToSessionResponse(&sessions[i]))
	}
	return SessionsPageResponse{Sessions: out, PageInfo: NewPageInfo(page, limit, total)}
}
