package models

import (
	"time"

	"github.com/google/uuid"
)

// Reminder outcomes. The session_reminders table is an append-only audit log;
// at most one "sent" row may ever exist per (session_id, student_id).
const (
	ReminderSent   = "sent"
	ReminderFailed = "failed"
)

type SessionReminder struct {
	ID                   uuid.UUID `json:"id"`
	SessionID            uuid.UUID `json:"session_id"`
	ClassID              uuid.UUID `json:"class_id"`
	StudentID            uuid.UUID `json:"student_id"`
	StudentEmail         string    `json:"student_email"`
	StudentName          string    `json:"student_name"`
	SessionDate          time.Time `json:"session_date"`
	ReminderSentAt       time.Time `json:"reminder_sent_at"`
	ReminderScheduledFor time.Time `json:"reminder_scheduled_for"` // window start of the scan that produced this row
	Status               string    `json:"status"`
	ErrorMessage         *string   `json:"error_message,omitempty"`
}

// ScanResult is the wire response of the reminder-scan trigger. Field names
// follow the contract consumed by the external cron service.
type ScanResult struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message,omitempty"`
	Error            string   `json:"error,omitempty"`
	SessionsChecked  int      `json:"sessionsChecked"`
	RemindersSent    int      `json:"remindersSent"`
	RemindersSkipped int      `json:"remindersSkipped"`
	Errors           int      `json:"errors"`
	ErrorDetails     []string `json:"errorDetails,omitempty"`
	ExecutionTime    int64    `json:"executionTime"` // milliseconds
	Timestamp        string   `json:"timestamp"`     // RFC 3339
}
