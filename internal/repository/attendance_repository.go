package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// AttendanceRepository stores present-only attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Toggle removes the row when present, inserts it otherwise, and reports presence afterwards.
func (r *AttendanceRepository) Toggle(ctx context.Context, sessionID, clientID string) (bool, error) {
	var present bool
	err := withTx(ctx, r.db, "toggle attendance", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE session_id = $1 AND client_id = $2`, sessionID, clientID)
		if err != nil {
			return fmt.Errorf("remove attendance: %w", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("remove attendance: %w", err)
		}
		if removed > 0 {
			return nil
		}
		const insert = `INSERT INTO attendance (session_id, client_id, present, marked_at) VALUES ($1, $2, TRUE, $3)`
		if _, err := tx.ExecContext(ctx, insert, sessionID, clientID, time.Now().UTC()); err != nil {
			if isMissingReference(err) {
				return fmt.Errorf("mark attendance: %w", sql.ErrNoRows)
			}
			return fmt.Errorf("mark attendance: %w", err)
		}
		present = true
		return nil
	})
	return present, err
}

// Replace sets the session's attendee list to exactly clientIDs.
func (r *AttendanceRepository) Replace(ctx context.Context, sessionID string, clientIDs []string) error {
	return withTx(ctx, r.db, "replace attendance", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("clear attendance: %w", err)
		}
		if len(clientIDs) == 0 {
			return nil
		}
		const insert = `INSERT INTO attendance (session_id, client_id, present, marked_at)
            SELECT $1, client_id, TRUE, $3 FROM unnest($2::uuid[]) AS client_id`
		if _, err := tx.ExecContext(ctx, insert, sessionID, pq.Array(clientIDs), time.Now().UTC()); err != nil {
			if isMissingReference(err) {
				return fmt.Errorf("insert attendance: %w", sql.ErrNoRows)
			}
			return fmt.Errorf("insert attendance: %w", err)
		}
		return nil
	})
}

// ListAttendees returns active clients, plus inactive ones who attended, with presence for the session.
func (r *AttendanceRepository) ListAttendees(ctx context.Context, coachID, sessionID string) ([]models.Attendee, error) {
	const query = `SELECT cl.id AS client_id, cl.name, (a.client_id IS NOT NULL) AS present
        FROM clients cl
        LEFT JOIN attendance a ON a.client_id = cl.id AND a.session_id = $2
        WHERE cl.coach_id = $1 AND (cl.active OR a.client_id IS NOT NULL)
        ORDER BY cl.name`
	var attendees []models.Attendee
	if err := r.db.SelectContext(ctx, &attendees, query, coachID, sessionID); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, nil
}

// ClientStats counts the coach's sessions in [from, to) and how many the client attended.
func (r *AttendanceRepository) ClientStats(ctx context.Context, coachID, clientID string, from, to time.Time) (attended, sessions int, err error) {
	const query = `SELECT COUNT(a.client_id) AS attended, COUNT(ts.id) AS sessions
        FROM training_sessions ts
        LEFT JOIN attendance a ON a.session_id = ts.id AND a.client_id = $2
        WHERE ts.coach_id = $1 AND ts.session_date >= $3 AND ts.session_date < $4`
	var row struct {
		Attended int `db:"attended"`
		Sessions int `db:"sessions"`
	}
	if err := r.db.GetContext(ctx, &row, query, coachID, clientID, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return 0, 0, fmt.Errorf("attendance stats: %w", err)
	}
	return row.Attended, row.Sessions, nil
}
