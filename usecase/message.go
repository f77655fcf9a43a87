package usecase

import (
	"fmt"
	"strings"
	"time"

	"safeher/model"
)

const alertTimeLayout = "2 Jan 2006, 3:04 pm"

// RenderAlertMessage builds the text sent over SMS and email.
func RenderAlertMessage(userName string, reason model.AlertReason, at time.Time, loc *time.Location, session *model.Session, location *model.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	link := "Location not available"
	if location != nil {
		link = location.MapLink()
	}

	var b strings.Builder
	b.WriteString("EMERGENCY ALERT from SafeHer\n\n")
	fmt.Fprintf(&b, "%s may be in danger!\n\n", userName)
	fmt.Fprintf(&b, "Reason: %s\n", reason.Label())
	fmt.Fprintf(&b, "Time: %s\n", at.In(loc).Format(alertTimeLayout))
	fmt.Fprintf(&b, "Vehicle: %s\n\n", session.VehicleDescriptor())
	fmt.Fprintf(&b, "Location: %s\n\n", link)
	b.WriteString("Please check on them immediately!\n\n")
	b.WriteString("- SafeHer Safety Team")
	return b.String()
}

func alertSubject(userName string) string {
	return fmt.Sprintf("EMERGENCY: %s needs help!", userName)
}
