package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"liveclass-backend/internal/models"
)

type ReminderRepo struct {
	pool *pgxpool.Pool
}

func NewReminderRepo(pool *pgxpool.Pool) *ReminderRepo {
	return &ReminderRepo{pool: pool}
}

// HasSent reports whether a "sent" audit row already exists for the pair.
// This is the cheap fast-path check; the partial unique index behind Record
// is what actually guarantees at-most-once under concurrent scans.
func (r *ReminderRepo) HasSent(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM session_reminders
			WHERE session_id = $1 AND student_id = $2 AND status = $3
		)
	`, sessionID, studentID, models.ReminderSent).Scan(&exists)
	return exists, err
}

// Record appends an audit row. A "sent" row that collides with an existing
// sent reminder for the same (session, student) is dropped by the unique
// index; the returned bool reports whether the row was actually written.
func (r *ReminderRepo) Record(ctx context.Context, rec *models.SessionReminder) (bool, error) {
	rec.ID = uuid.New()
	if rec.ReminderSentAt.IsZero() {
		rec.ReminderSentAt = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO session_reminders
			(id, session_id, class_id, student_id, student_email, student_name,
			 session_date, reminder_sent_at, reminder_scheduled_for, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, student_id) WHERE status = 'sent' DO NOTHING
	`, rec.ID, rec.SessionID, rec.ClassID, rec.StudentID, rec.StudentEmail, rec.StudentName,
		rec.SessionDate, rec.ReminderSentAt, rec.ReminderScheduledFor, rec.Status, rec.ErrorMessage,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
