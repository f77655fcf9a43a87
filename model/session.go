package model

import (
	"fmt"
	"strings"
	"time"
)

type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehicleBike  VehicleType = "bike"
	VehicleAuto  VehicleType = "auto"
	VehicleCab   VehicleType = "cab"
	VehicleWalk  VehicleType = "walk"
	VehicleOther VehicleType = "other"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleCar, VehicleBike, VehicleAuto, VehicleCab, VehicleWalk, VehicleOther:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionActive         SessionStatus = "active"
	SessionCompleted      SessionStatus = "completed"
	SessionCancelled      SessionStatus = "cancelled"
	SessionAlertTriggered SessionStatus = "alert_triggered"
)

// Terminal states are absorbing: nothing transitions out of them.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled || s == SessionAlertTriggered
}

type EndReason string

const (
	EndUserStopped    EndReason = "user_stopped"
	EndTimerExpired   EndReason = "timer_expired"
	EndAlertTriggered EndReason = "alert_triggered"
	EndSystem         EndReason = "system"
)

type Location struct {
	Latitude  float64   `bson:"latitude" json:"latitude"`
	Longitude float64   `bson:"longitude" json:"longitude"`
	Accuracy  float64   `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	if l.Accuracy < 0 {
		return fmt.Errorf("accuracy must not be negative")
	}
	return nil
}

// MapLink points at OpenStreetMap centred on the location.
func (l Location) MapLink() string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%v&mlon=%v#map=15/%v/%v",
		l.Latitude, l.Longitude, l.Latitude, l.Longitude)
}

const (
	MaxSessionMinutes  = 24 * 60
	MaxLocationHistory = 500
)

type Session struct {
	ID               string        `bson:"_id" json:"id"`
	UserID           string        `bson:"user_id" json:"user_id"`
	VehicleType      VehicleType   `bson:"vehicle_type" json:"vehicle_type"`
	VehicleNumber    string        `bson:"vehicle_number,omitempty" json:"vehicle_number,omitempty"`
	DriverNotes      string        `bson:"driver_notes,omitempty" json:"driver_notes,omitempty"`
	DurationMinutes  int           `bson:"duration_minutes" json:"duration_minutes"`
	StartTime        time.Time     `bson:"start_time" json:"start_time"`
	ScheduledEndTime time.Time     `bson:"scheduled_end_time" json:"scheduled_end_time"`
	ActualEndTime    *time.Time    `bson:"actual_end_time,omitempty" json:"actual_end_time,omitempty"`
	Status           SessionStatus `bson:"status" json:"status"`
	EndReason        EndReason     `bson:"end_reason,omitempty" json:"end_reason,omitempty"`
	LastKnown        *Location     `bson:"last_known_location,omitempty" json:"last_known_location,omitempty"`
	LocationHistory  []Location    `bson:"location_history,omitempty" json:"location_history,omitempty"`
	AlertTriggered   bool          `bson:"alert_triggered" json:"alert_triggered"`
	AlertReason      AlertReason   `bson:"alert_reason,omitempty" json:"alert_reason,omitempty"`
	AlertTime        *time.Time    `bson:"alert_time,omitempty" json:"alert_time,omitempty"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updated_at"`
}

// NewSession builds an active session whose deadline is start + duration.
func NewSession(id, userID string, vehicle VehicleType, durationMinutes int, start time.Time) *Session {
	return &Session{
		ID:               id,
		UserID:           userID,
		VehicleType:      vehicle,
		DurationMinutes:  durationMinutes,
		StartTime:        start,
		ScheduledEndTime: start.Add(time.Duration(durationMinutes) * time.Minute),
		Status:           SessionActive,
		CreatedAt:        start,
		UpdatedAt:        start,
	}
}

// VehicleDescriptor renders e.g. "CAR (KA01AB1234)".
func (s *Session) VehicleDescriptor() string {
	desc := strings.ToUpper(string(s.VehicleType))
	if desc == "" {
		desc = strings.ToUpper(string(VehicleOther))
	}
	if s.VehicleNumber != "" {
		desc = fmt.Sprintf("%s (%s)", desc, s.VehicleNumber)
	}
	return desc
}

// StatusUpdate lists the fields written together with a status transition.
type StatusUpdate struct {
	Status         SessionStatus
	EndReason      EndReason
	ActualEndTime  *time.Time
	AlertTriggered bool
	AlertReason    AlertReason
	AlertTime      *time.Time
}
