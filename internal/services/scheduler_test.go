package services

import (
	"context"
	"testing"
	"time"

	"liveclass-backend/internal/models"
)

type fakeRunner struct {
	calls  int
	result *models.ScanResult
}

func (f *fakeRunner) Scan(ctx context.Context, now time.Time) *models.ScanResult {
	f.calls++
	if f.result != nil {
		return f.result
	}
	return &models.ScanResult{Success: true}
}

type fakeLock struct {
	busy     bool
	acquired int
	released int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquired++
	return !f.busy, nil
}

func (f *fakeLock) Release(ctx context.Context) {
	f.released++
}

func TestScheduler_RunScanHoldsLock(t *testing.T) {
	runner := &fakeRunner{}
	lock := &fakeLock{}
	s := NewReminderScheduler(runner, lock, "0 * * * *")

	s.runScan()

	if runner.calls != 1 {
		t.Fatalf("Expected 1 scan, got %d", runner.calls)
	}
	if lock.acquired != 1 || lock.released != 1 {
		t.Fatalf("Expected lock acquired and released once, got %d/%d", lock.acquired, lock.released)
	}
}

func TestScheduler_SkipsWhenLockBusy(t *testing.T) {
	runner := &fakeRunner{}
	lock := &fakeLock{busy: true}
	s := NewReminderScheduler(runner, lock, "0 * * * *")

	s.runScan()

	if runner.calls != 0 {
		t.Fatalf("Expected no scan while a scan is in progress, got %d", runner.calls)
	}
	if lock.released != 0 {
		t.Fatalf("Must not release a lock it did not acquire")
	}
}

func TestScheduler_RejectsBadCronSpec(t *testing.T) {
	s := NewReminderScheduler(&fakeRunner{}, &fakeLock{}, "not a cron spec")
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("Expected error for invalid cron spec")
	}
}
