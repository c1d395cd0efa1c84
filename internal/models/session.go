package models

import "time"

// TrainingSession is a calendar entry.
type TrainingSession struct {
	ID            string    `db:"id" json:"id"`
	CoachID       string    `db:"coach_id" json:"coach_id"`
	Title         string    `db:"title" json:"title"`
	SessionDate   time.Time `db:"session_date" json:"session_date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	Color         string    `db:"color" json:"color"`
	Notes         string    `db:"notes" json:"notes"`
	AttendeeCount int       `db:"attendee_count" json:"attendee_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SessionFilter bounds a calendar query.
type SessionFilter struct {
	CoachID string
	From    *time.Time
	To      *time.Time
}
