package services

// SendResult is what a notification sender reports back. A sender that is not
// configured returns OK=false with a reason instead of an error.
type SendResult struct {
	OK         bool
	ProviderID string
	Reason     string
}

var notConfigured = SendResult{OK: false, Reason: "not configured"}
