package models

import (
	"time"

	"github.com/google/uuid"
)

// Session statuses. The scanner only ever reads these; the live-class flow
// moves sessions through scheduled → live → completed or → cancelled.
const (
	SessionScheduled = "scheduled"
	SessionLive      = "live"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

type Session struct {
	ID            uuid.UUID `json:"id"`
	ClassID       uuid.UUID `json:"class_id"`
	ClassName     string    `json:"class_name"`
	CreatorID     uuid.UUID `json:"creator_id"`
	CreatorName   string    `json:"creator_name"`
	SessionNumber int       `json:"session_number"` // 1-based, contiguous within a class
	SessionDate   time.Time `json:"session_date"`
	SessionTime   string    `json:"session_time"` // display time-of-day, "15:04"
	MeetingLink   string    `json:"meeting_link"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExpandResult is the wire response of the session-generation trigger.
// Field names follow the contract consumed by the approval workflow.
type ExpandResult struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message"`
	SessionsCreated int       `json:"sessionsCreated"`
	Sessions        []Session `json:"sessions"`
}
