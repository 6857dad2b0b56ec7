package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"liveclass-backend/internal/models"
)

type EnrollmentRepo struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepo(pool *pgxpool.Pool) *EnrollmentRepo {
	return &EnrollmentRepo{pool: pool}
}

func (r *EnrollmentRepo) ListActiveByClass(ctx context.Context, classID uuid.UUID) ([]models.Enrollment, error) {
	query := `SELECT id, class_id, student_id, student_email, student_name, status, enrolled_at
		FROM enrollments
		WHERE class_id = $1 AND status = $2
		ORDER BY enrolled_at`

	rows, err := r.pool.Query(ctx, query, classID, models.EnrollmentActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []models.Enrollment
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.ClassID, &e.StudentID, &e.StudentEmail, &e.StudentName, &e.Status, &e.EnrolledAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
