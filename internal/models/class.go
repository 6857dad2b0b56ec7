package models

import (
	"time"

	"github.com/google/uuid"
)

// Class schedule types.
const (
	ScheduleOneTime   = "one-time"
	ScheduleRecurring = "recurring"
)

// Class statuses. Only approved classes are expanded into sessions.
const (
	ClassPending  = "pending"
	ClassApproved = "approved"
	ClassRejected = "rejected"
)

type Class struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CreatorID    uuid.UUID `json:"creator_id"`
	CreatorName  string    `json:"creator_name"`
	Status       string    `json:"status"`
	ScheduleType string    `json:"schedule_type"` // "one-time" | "recurring"

	// One-time schedule fields ("2006-01-02" / "15:04").
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`

	// Recurring schedule fields. Days holds full English weekday names.
	StartDate          *string  `json:"start_date,omitempty"`
	EndDate            *string  `json:"end_date,omitempty"`
	Days               []string `json:"days,omitempty"`
	RecurringStartTime *string  `json:"recurring_start_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
