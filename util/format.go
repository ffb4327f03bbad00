package util

import "time"

// FormatAppointmentDate renders an appointment time the way it appears in
// notifications and mails, e.g. "January 2, 2030 at 10:00 AM".
func FormatAppointmentDate(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}
