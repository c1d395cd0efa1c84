package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

const sessionSelect = `SELECT ts.id, ts.coach_id, ts.title, ts.session_date, ts.start_time, ts.end_time, ts.color, ts.notes, ts.created_at, ts.updated_at,
        COUNT(a.client_id) AS attendee_count
        FROM training_sessions ts
        LEFT JOIN attendance a ON a.session_id = ts.id`

const sessionGroupBy = ` GROUP BY ts.id, ts.coach_id, ts.title, ts.session_date, ts.start_time, ts.end_time, ts.color, ts.notes, ts.created_at, ts.updated_at`

// SessionRepository persists training sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns sessions in the optional date range ordered chronologically.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.TrainingSession, error) {
	args := []interface{}{filter.CoachID}
	conditions := []string{"ts.coach_id = $1"}
	if filter.From != nil {
		args = append(args, filter.From.Format("2006-01-02"))
		conditions = append(conditions, fmt.Sprintf("ts.session_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.Format("2006-01-02"))
		conditions = append(conditions, fmt.Sprintf("ts.session_date <= $%d", len(args)))
	}
	query := fmt.Sprintf("%s WHERE %s%s ORDER BY ts.session_date, ts.start_time", sessionSelect, strings.Join(conditions, " AND "), sessionGroupBy)
	var sessions []models.TrainingSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// FindByID fetches a session owned by the coach.
func (r *SessionRepository) FindByID(ctx context.Context, coachID, id string) (*models.TrainingSession, error) {
	query := sessionSelect + ` WHERE ts.id = $1 AND ts.coach_id = $2` + sessionGroupBy
	var session models.TrainingSession
	if err := r.db.GetContext(ctx, &session, query, id, coachID); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create inserts a session.
func (r *SessionRepository) Create(ctx context.Context, session *models.TrainingSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	const query = `INSERT INTO training_sessions (id, coach_id, title, session_date, start_time, end_time, color, notes, created_at, updated_at)
        VALUES (:id, :coach_id, :title, :session_date, :start_time, :end_time, :color, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies a session.
func (r *SessionRepository) Update(ctx context.Context, session *models.TrainingSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE training_sessions SET title = :title, session_date = :session_date, start_time = :start_time, end_time = :end_time,
        color = :color, notes = :notes, updated_at = :updated_at WHERE id = :id AND coach_id = :coach_id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Delete removes a session and, through the foreign key, its attendance.
func (r *SessionRepository) Delete(ctx context.Context, coachID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM training_sessions WHERE id = $1 AND coach_id = $2`, id, coachID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
