package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"liveclass-backend/internal/models"
)

// Store capabilities consumed by the scanner. The pgx repositories satisfy
// these; scanner tests run against in-memory fakes.
type SessionStore interface {
	ListInWindow(ctx context.Context, from, to time.Time) ([]models.Session, error)
}

type EnrollmentStore interface {
	ListActiveByClass(ctx context.Context, classID uuid.UUID) ([]models.Enrollment, error)
}

type ReminderStore interface {
	HasSent(ctx context.Context, sessionID, studentID uuid.UUID) (bool, error)
	Record(ctx context.Context, rec *models.SessionReminder) (bool, error)
}

type EmailSender interface {
	SendSessionReminderEmail(to, studentName, className, sessionDate, sessionTime, meetingLink string) error
}

// ReminderScanner finds sessions starting inside the configured lookahead
// window and sends each enrolled student at most one reminder per session.
type ReminderScanner struct {
	sessions    SessionStore
	enrollments EnrollmentStore
	reminders   ReminderStore
	email       EmailSender
	offsetStart time.Duration
	offsetEnd   time.Duration
}

func NewReminderScanner(
	sessions SessionStore,
	enrollments EnrollmentStore,
	reminders ReminderStore,
	email EmailSender,
	offsetStart, offsetEnd time.Duration,
) *ReminderScanner {
	return &ReminderScanner{
		sessions:    sessions,
		enrollments: enrollments,
		reminders:   reminders,
		email:       email,
		offsetStart: offsetStart,
		offsetEnd:   offsetEnd,
	}
}

// Scan runs one full pass. It never returns a Go error: a fatal store
// failure is folded into the result with Success=false and whatever counters
// had accumulated, which is exactly what the triggering cron caller logs.
func (s *ReminderScanner) Scan(ctx context.Context, now time.Time) *models.ScanResult {
	started := time.Now()
	res := &models.ScanResult{Success: true}

	from := now.Add(s.offsetStart)
	to := now.Add(s.offsetEnd)

	sessions, err := s.sessions.ListInWindow(ctx, from, to)
	if err != nil {
		res.Success = false
		res.Error = fmt.Sprintf("failed to query sessions in window: %v", err)
		return s.finalize(res, started)
	}
	res.SessionsChecked = len(sessions)

	for i := range sessions {
		s.processSession(ctx, &sessions[i], from, res)
	}

	res.Message = fmt.Sprintf("Sent %d reminders (%d skipped, %d errors) across %d sessions",
		res.RemindersSent, res.RemindersSkipped, res.Errors, res.SessionsChecked)
	return s.finalize(res, started)
}

// processSession isolates one session: any failure here is counted and the
// outer loop moves on to the next session.
func (s *ReminderScanner) processSession(ctx context.Context, sess *models.Session, windowStart time.Time, res *models.ScanResult) {
	if sess.Status == models.SessionCancelled || sess.Status == models.SessionCompleted {
		return
	}
	if sess.MeetingLink == "" || sess.SessionDate.IsZero() {
		res.RemindersSkipped++
		return
	}

	enrollments, err := s.enrollments.ListActiveByClass(ctx, sess.ClassID)
	if err != nil {
		res.Errors++
		res.ErrorDetails = append(res.ErrorDetails,
			fmt.Sprintf("session %s: enrollment query failed: %v", sess.ID, err))
		return
	}
	if len(enrollments) == 0 {
		res.RemindersSkipped++
		return
	}

	for i := range enrollments {
		s.processStudent(ctx, sess, &enrollments[i], windowStart, res)
	}
}

// processStudent isolates one student: a failed send is audited and counted
// without affecting the session's other students.
func (s *ReminderScanner) processStudent(ctx context.Context, sess *models.Session, enr *models.Enrollment, windowStart time.Time, res *models.ScanResult) {
	if enr.StudentEmail == "" || enr.StudentName == "" {
		res.RemindersSkipped++
		return
	}

	sent, err := s.reminders.HasSent(ctx, sess.ID, enr.StudentID)
	if err != nil {
		res.Errors++
		res.ErrorDetails = append(res.ErrorDetails,
			fmt.Sprintf("session %s student %s: reminder lookup failed: %v", sess.ID, enr.StudentEmail, err))
		return
	}
	if sent {
		res.RemindersSkipped++
		return
	}

	dateStr := formatLongDate(sess.SessionDate)
	timeStr := sess.SessionTime
	if timeStr == "" {
		timeStr = sess.SessionDate.Format("15:04")
	}
	timeStr = formatTime12Hour(timeStr)

	rec := &models.SessionReminder{
		SessionID:            sess.ID,
		ClassID:              sess.ClassID,
		StudentID:            enr.StudentID,
		StudentEmail:         enr.StudentEmail,
		StudentName:          enr.StudentName,
		SessionDate:          sess.SessionDate,
		ReminderScheduledFor: windowStart,
	}

	if err := s.email.SendSessionReminderEmail(enr.StudentEmail, enr.StudentName, sess.ClassName, dateStr, timeStr, sess.MeetingLink); err != nil {
		res.Errors++
		res.ErrorDetails = append(res.ErrorDetails,
			fmt.Sprintf("session %s student %s: send failed: %v", sess.ID, enr.StudentEmail, err))

		msg := err.Error()
		rec.Status = models.ReminderFailed
		rec.ErrorMessage = &msg
		if _, auditErr := s.reminders.Record(ctx, rec); auditErr != nil {
			log.Printf("reminder scan: failed to record failure for session %s student %s: %v", sess.ID, enr.StudentID, auditErr)
		}
		return
	}

	rec.Status = models.ReminderSent
	inserted, err := s.reminders.Record(ctx, rec)
	if err != nil {
		log.Printf("reminder scan: sent reminder but failed to record it for session %s student %s: %v", sess.ID, enr.StudentID, err)
	} else if !inserted {
		log.Printf("reminder scan: sent reminder for session %s student %s was already recorded by a concurrent scan", sess.ID, enr.StudentID)
	}
	res.RemindersSent++
}

func (s *ReminderScanner) finalize(res *models.ScanResult, started time.Time) *models.ScanResult {
	res.ExecutionTime = time.Since(started).Milliseconds()
	res.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return res
}

func formatLongDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// formatTime12Hour converts a 24-hour "HH:MM" string to "h:mm AM/PM". Values
// that already carry an AM/PM marker, or that do not parse, pass through
// unchanged so a malformed record degrades to an odd-looking email instead
// of a dropped reminder.
func formatTime12Hour(raw string) string {
	if strings.Contains(raw, "AM") || strings.Contains(raw, "PM") {
		return raw
	}
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return t.Format("3:04 PM")
}
