package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"liveclass-backend/internal/models"
)

// ScanRunner and Locker let the scheduler be tested without redis or a real
// scanner behind it.
type ScanRunner interface {
	Scan(ctx context.Context, now time.Time) *models.ScanResult
}

type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// ReminderScheduler runs the scanner on a cron cadence in-process. The
// external cron endpoint and this scheduler share the same lock, so only one
// scan runs at a time no matter who triggered it.
type ReminderScheduler struct {
	scanner ScanRunner
	lock    Locker
	spec    string
	cron    *cron.Cron
}

func NewReminderScheduler(scanner ScanRunner, lock Locker, spec string) *ReminderScheduler {
	return &ReminderScheduler{
		scanner: scanner,
		lock:    lock,
		spec:    spec,
	}
}

func (s *ReminderScheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, s.runScan); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Reminder scheduler started (cron %q)", s.spec)
	return nil
}

func (s *ReminderScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *ReminderScheduler) runScan() {
	ctx := context.Background()

	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		log.Printf("reminder scheduler: failed to acquire scan lock: %v", err)
		return
	}
	if !acquired {
		log.Printf("reminder scheduler: scan already in progress, skipping")
		return
	}
	defer s.lock.Release(ctx)

	res := s.scanner.Scan(ctx, time.Now().UTC())
	if !res.Success {
		log.Printf("reminder scheduler: scan failed: %s", res.Error)
		return
	}
	log.Printf("reminder scheduler: %d checked, %d sent, %d skipped, %d errors (%dms)",
		res.SessionsChecked, res.RemindersSent, res.RemindersSkipped, res.Errors, res.ExecutionTime)
}
