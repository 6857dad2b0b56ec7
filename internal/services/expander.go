package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"liveclass-backend/internal/models"
)

// ClassStore and SessionWriter are the two store capabilities the expander
// consumes; both are satisfied by the pgx repositories and by in-memory
// fakes in tests.
type ClassStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Class, error)
}

type SessionWriter interface {
	CreateBatch(ctx context.Context, sessions []*models.Session) ([]models.Session, error)
}

// SessionExpander turns an approved class's schedule definition into the
// full set of calendar sessions.
type SessionExpander struct {
	classes  ClassStore
	sessions SessionWriter
	linkBase string
}

func NewSessionExpander(classes ClassStore, sessions SessionWriter, linkBase string) *SessionExpander {
	return &SessionExpander{
		classes:  classes,
		sessions: sessions,
		linkBase: linkBase,
	}
}

// Expand generates and persists every session for the class. The whole batch
// is written in one transaction, and sessions that already exist for a
// (class, number) pair are skipped, so re-running an expansion is safe.
func (e *SessionExpander) Expand(ctx context.Context, classID uuid.UUID) (*models.ExpandResult, error) {
	class, err := e.classes.GetByID(ctx, classID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Class not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load class: %w", err)
	}

	if class.Status != models.ClassApproved {
		return nil, &InvalidStateError{Message: fmt.Sprintf("Class is not approved (status: %s)", class.Status)}
	}

	var planned []*models.Session
	switch class.ScheduleType {
	case models.ScheduleOneTime:
		planned, err = e.planOneTime(class)
	case models.ScheduleRecurring:
		planned, err = e.planRecurring(class)
	default:
		return nil, &ValidationError{Fields: map[string]string{
			"schedule_type": fmt.Sprintf("Unknown schedule type %q", class.ScheduleType),
		}}
	}
	if err != nil {
		return nil, err
	}

	created, err := e.sessions.CreateBatch(ctx, planned)
	if err != nil {
		return nil, fmt.Errorf("failed to persist sessions: %w", err)
	}

	return &models.ExpandResult{
		Success:         true,
		Message:         fmt.Sprintf("Created %d sessions for class %q", len(created), class.Title),
		SessionsCreated: len(created),
		Sessions:        created,
	}, nil
}

func (e *SessionExpander) planOneTime(class *models.Class) ([]*models.Session, error) {
	fieldErrors := make(map[string]string)
	if class.Date == nil || *class.Date == "" {
		fieldErrors["date"] = "Date is required for one-time classes"
	}
	if class.StartTime == nil || *class.StartTime == "" {
		fieldErrors["start_time"] = "Start time is required for one-time classes"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	instant, err := combineDateTime(*class.Date, *class.StartTime)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"date": err.Error()}}
	}

	return []*models.Session{e.newSession(class, 1, instant, *class.StartTime)}, nil
}

func (e *SessionExpander) planRecurring(class *models.Class) ([]*models.Session, error) {
	fieldErrors := make(map[string]string)
	if class.StartDate == nil || *class.StartDate == "" {
		fieldErrors["start_date"] = "Start date is required for recurring classes"
	}
	if class.EndDate == nil || *class.EndDate == "" {
		fieldErrors["end_date"] = "End date is required for recurring classes"
	}
	if len(class.Days) == 0 {
		fieldErrors["days"] = "At least one weekday is required for recurring classes"
	}
	if class.RecurringStartTime == nil || *class.RecurringStartTime == "" {
		fieldErrors["recurring_start_time"] = "Start time is required for recurring classes"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	start, err := time.Parse("2006-01-02", *class.StartDate)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"start_date": "Invalid date, expected YYYY-MM-DD"}}
	}
	end, err := time.Parse("2006-01-02", *class.EndDate)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"end_date": "Invalid date, expected YYYY-MM-DD"}}
	}

	// Weekday matching is an exact match on full English day names.
	wanted := make(map[string]bool, len(class.Days))
	for _, d := range class.Days {
		wanted[d] = true
	}

	var planned []*models.Session
	number := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !wanted[day.Weekday().String()] {
			continue
		}
		instant, err := combineDateTime(day.Format("2006-01-02"), *class.RecurringStartTime)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"recurring_start_time": err.Error()}}
		}
		number++
		planned = append(planned, e.newSession(class, number, instant, *class.RecurringStartTime))
	}

	return planned, nil
}

func (e *SessionExpander) newSession(class *models.Class, number int, instant time.Time, displayTime string) *models.Session {
	return &models.Session{
		ClassID:       class.ID,
		ClassName:     class.Title,
		CreatorID:     class.CreatorID,
		CreatorName:   class.CreatorName,
		SessionNumber: number,
		SessionDate:   instant,
		SessionTime:   displayTime,
		MeetingLink:   fmt.Sprintf("%s/%s", e.linkBase, generateMeetingToken()),
		Status:        models.SessionScheduled,
	}
}

// combineDateTime joins a "YYYY-MM-DD" date and a 24-hour "HH:MM" time into
// one instant. All schedule values are interpreted in UTC; no per-class
// timezone exists in the data model.
func combineDateTime(date, clock string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q", date, clock)
	}
	return t.UTC(), nil
}

// generateMeetingToken returns the opaque token of a placeholder meeting
// link. Real conferencing integration replaces this link downstream.
func generateMeetingToken() string {
	b := make([]byte, 12)
	rand.Read(b)
	return hex.EncodeToString(b)
}
