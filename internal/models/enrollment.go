package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment statuses. Only active enrollments qualify for reminders.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentRefunded  = "refunded"
)

type Enrollment struct {
	ID           uuid.UUID `json:"id"`
	ClassID      uuid.UUID `json:"class_id"`
	StudentID    uuid.UUID `json:"student_id"`
	StudentEmail string    `json:"student_email"`
	StudentName  string    `json:"student_name"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}
