package model

import "time"

type AlertReason string

const (
	ReasonTimerExpired   AlertReason = "timer_expired"
	ReasonVoiceKeyword   AlertReason = "voice_keyword"
	ReasonScreamDetected AlertReason = "scream_detected"
	ReasonManual         AlertReason = "manual"
	ReasonPanicButton    AlertReason = "panic_button"
)

var reasonLabels = map[AlertReason]string{
	ReasonTimerExpired:   "Safety timer expired without confirmation",
	ReasonVoiceKeyword:   "Emergency keyword detected",
	ReasonScreamDetected: "Distress sound detected",
	ReasonManual:         "Manual emergency button pressed",
	ReasonPanicButton:    "Panic button activated",
}

func (r AlertReason) Valid() bool {
	_, ok := reasonLabels[r]
	return ok
}

// Label returns the human description, or the raw code for unknown reasons.
func (r AlertReason) Label() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return string(r)
}

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

type AlertStatus string

const (
	AlertSending AlertStatus = "sending"
	AlertSent    AlertStatus = "sent"
	AlertFailed  AlertStatus = "failed"
	AlertPartial AlertStatus = "partial"
)

const AlertRetention = 30 * 24 * time.Hour

// ContactDelivery is one contact's row in the alert ledger.
type ContactDelivery struct {
	ContactID   string         `bson:"contact_id" json:"contact_id"`
	Name        string         `bson:"name" json:"name"`
	Phone       string         `bson:"phone" json:"phone"`
	SMSStatus   DeliveryStatus `bson:"sms_status" json:"sms_status"`
	EmailStatus DeliveryStatus `bson:"email_status" json:"email_status"`
	SMSSentAt   *time.Time     `bson:"sms_sent_at,omitempty" json:"sms_sent_at,omitempty"`
	EmailSentAt *time.Time     `bson:"email_sent_at,omitempty" json:"email_sent_at,omitempty"`
	SMSError    string         `bson:"sms_error,omitempty" json:"sms_error,omitempty"`
	EmailError  string         `bson:"email_error,omitempty" json:"email_error,omitempty"`
}

func (d ContactDelivery) hasFailure() bool {
	return d.SMSStatus == DeliveryFailed || d.EmailStatus == DeliveryFailed
}

func (d ContactDelivery) totalFailure() bool {
	return d.SMSStatus == DeliveryFailed && d.EmailStatus == DeliveryFailed
}

type VehicleInfo struct {
	Type   VehicleType `bson:"type" json:"type"`
	Number string      `bson:"number,omitempty" json:"number,omitempty"`
}

type AlertMetadata struct {
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	IPAddress string `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	Device    string `bson:"device,omitempty" json:"device,omitempty"`
}

type Alert struct {
	ID               string            `bson:"_id" json:"id"`
	UserID           string            `bson:"user_id" json:"user_id"`
	SessionID        string            `bson:"session_id" json:"session_id"`
	TriggerReason    AlertReason       `bson:"trigger_reason" json:"trigger_reason"`
	Location         *Location         `bson:"location,omitempty" json:"location,omitempty"`
	VehicleInfo      VehicleInfo       `bson:"vehicle_info" json:"vehicle_info"`
	Message          string            `bson:"message" json:"message"`
	ContactsNotified []ContactDelivery `bson:"contacts_notified" json:"contacts_notified"`
	Status           AlertStatus       `bson:"status" json:"status"`
	Metadata         *AlertMetadata    `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt        time.Time         `bson:"created_at" json:"created_at"`
}

// ComputeStatus folds the ledger into an overall status. No failure anywhere
// (including an empty ledger) is sent, every contact failing on both channels
// is failed, anything in between is partial.
func ComputeStatus(ledger []ContactDelivery) AlertStatus {
	anyFailure := false
	allTotal := true
	for _, d := range ledger {
		if d.hasFailure() {
			anyFailure = true
		}
		if !d.totalFailure() {
			allTotal = false
		}
	}
	switch {
	case !anyFailure:
		return AlertSent
	case allTotal:
		return AlertFailed
	default:
		return AlertPartial
	}
}

type AlertStats struct {
	Total    int64            `json:"total"`
	ByReason map[string]int64 `json:"by_reason"`
	ByStatus map[string]int64 `json:"by_status"`
	Recent   []Alert          `json:"recent"`
}
