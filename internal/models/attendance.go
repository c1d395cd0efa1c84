package models

// Attendee is an active client with presence derived for one session.
type Attendee struct {
	ClientID string `db:"client_id" json:"client_id"`
	Name     string `db:"name" json:"name"`
	Present  bool   `db:"present" json:"present"`
}

// AttendanceStats counts sessions a client attended in a month.
type AttendanceStats struct {
	ClientID string `db:"client_id" json:"client_id"`
	Year     int    `db:"year" json:"year"`
	Month    int    `db:"month" json:"month"`
	Attended int    `db:"attended" json:"attended"`
	Sessions int    `db:"sessions" json:"sessions"`
}
