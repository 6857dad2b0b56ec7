package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"liveclass-backend/internal/models"
)

type ClassRepo struct {
	pool *pgxpool.Pool
}

func NewClassRepo(pool *pgxpool.Pool) *ClassRepo {
	return &ClassRepo{pool: pool}
}

func (r *ClassRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Class, error) {
	c := &models.Class{}
	query := `SELECT id, title, creator_id, creator_name, status, schedule_type,
			date, start_time, start_date, end_date, days, recurring_start_time, created_at
		FROM classes WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.CreatorID, &c.CreatorName, &c.Status, &c.ScheduleType,
		&c.Date, &c.StartTime, &c.StartDate, &c.EndDate, &c.Days, &c.RecurringStartTime, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ClassRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, "UPDATE classes SET status = $1 WHERE id = $2", status, id)
	return err
}
