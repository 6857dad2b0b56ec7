package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liveclass-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// CreateBatch inserts every session inside one transaction so a mid-expansion
// failure never leaves a class with a partial session set. Rows that collide
// on (class_id, session_number) are skipped, which makes re-running an
// expansion a no-op rather than a duplicate.
func (r *SessionRepo) CreateBatch(ctx context.Context, sessions []*models.Session) ([]models.Session, error) {
	if len(sessions) == 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin expansion transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO sessions
			(class_id, class_name, creator_id, creator_name, session_number,
			 session_date, session_time, meeting_link, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (class_id, session_number) DO NOTHING
		RETURNING id, created_at`

	var created []models.Session
	for _, s := range sessions {
		err := tx.QueryRow(ctx, query,
			s.ClassID, s.ClassName, s.CreatorID, s.CreatorName, s.SessionNumber,
			s.SessionDate, s.SessionTime, s.MeetingLink, s.Status,
		).Scan(&s.ID, &s.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue // already expanded on a previous run
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert session %d: %w", s.SessionNumber, err)
		}
		created = append(created, *s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit expansion: %w", err)
	}
	return created, nil
}

// ListInWindow returns sessions whose start instant falls inside [from, to],
// inclusive on both ends.
func (r *SessionRepo) ListInWindow(ctx context.Context, from, to time.Time) ([]models.Session, error) {
	query := `SELECT id, class_id, class_name, creator_id, creator_name, session_number,
			session_date, session_time, meeting_link, status, created_at
		FROM sessions
		WHERE session_date >= $1 AND session_date <= $2
		ORDER BY session_date`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepo) ListByClass(ctx context.Context, classID uuid.UUID) ([]models.Session, error) {
	query := `SELECT id, class_id, class_name, creator_id, creator_name, session_number,
			session_date, session_time, meeting_link, status, created_at
		FROM sessions
		WHERE class_id = $1
		ORDER BY session_number`

	rows, err := r.pool.Query(ctx, query, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s := &models.Session{}
	query := `SELECT id, class_id, class_name, creator_id, creator_name, session_number,
			session_date, session_time, meeting_link, status, created_at
		FROM sessions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ClassID, &s.ClassName, &s.CreatorID, &s.CreatorName, &s.SessionNumber,
		&s.SessionDate, &s.SessionTime, &s.MeetingLink, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE sessions SET status = $1 WHERE id = $2", status, id)
	return err
}

func scanSessions(rows pgx.Rows) ([]models.Session, error) {
	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(
			&s.ID, &s.ClassID, &s.ClassName, &s.CreatorID, &s.CreatorName, &s.SessionNumber,
			&s.SessionDate, &s.SessionTime, &s.MeetingLink, &s.Status, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
