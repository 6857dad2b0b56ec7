package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"liveclass-backend/internal/models"
	"liveclass-backend/internal/services"
)

// ─── Fakes ───

type fakeExpander struct {
	result *models.ExpandResult
	err    error
	gotID  uuid.UUID
}

func (f *fakeExpander) Expand(ctx context.Context, classID uuid.UUID) (*models.ExpandResult, error) {
	f.gotID = classID
	return f.result, f.err
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*models.Session
	updated  map[uuid.UUID]string
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeSessionRepo) ListByClass(ctx context.Context, classID uuid.UUID) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.sessions {
		if s.ClassID == classID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if f.updated == nil {
		f.updated = make(map[uuid.UUID]string)
	}
	f.updated[id] = status
	return nil
}

type fakeScanner struct {
	result *models.ScanResult
}

func (f *fakeScanner) Scan(ctx context.Context, now time.Time) *models.ScanResult {
	return f.result
}

type fakeScanLock struct {
	busy bool
}

func (f *fakeScanLock) Acquire(ctx context.Context) (bool, error) { return !f.busy, nil }
func (f *fakeScanLock) Release(ctx context.Context)               {}

// ─── Session Generation Tests ───

func TestGenerateSessions_Success(t *testing.T) {
	exp := &fakeExpander{result: &models.ExpandResult{
		Success:         true,
		Message:         `Created 4 sessions for class "Watercolor Basics"`,
		SessionsCreated: 4,
	}}
	h := NewSessionHandler(exp, &fakeSessionRepo{})

	classID := uuid.New()
	body, _ := json.Marshal(map[string]string{"classId": classID.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/generate", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Generate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if exp.gotID != classID {
		t.Errorf("Expected expander called with %s, got %s", classID, exp.gotID)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("Expected success true, got %v", resp["success"])
	}
	if resp["sessionsCreated"] != float64(4) {
		t.Errorf("Expected sessionsCreated 4, got %v", resp["sessionsCreated"])
	}
}

func TestGenerateSessions_Failures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"invalid body", "{not json", nil, http.StatusBadRequest},
		{"bad class id", `{"classId":"nope"}`, nil, http.StatusBadRequest},
		{"class not found", "", &services.NotFoundError{Message: "Class not found"}, http.StatusNotFound},
		{"not approved", "", &services.InvalidStateError{Message: "Class is not approved (status: pending)"}, http.StatusBadRequest},
		{"missing fields", "", &services.ValidationError{Fields: map[string]string{"days": "At least one weekday is required for recurring classes"}}, http.StatusBadRequest},
		{"store failure", "", fmt.Errorf("store unavailable"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.body
			if body == "" {
				raw, _ := json.Marshal(map[string]string{"classId": uuid.NewString()})
				body = string(raw)
			}

			h := NewSessionHandler(&fakeExpander{err: tc.err}, &fakeSessionRepo{})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/generate", bytes.NewReader([]byte(body)))
			rr := httptest.NewRecorder()

			h.Generate(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body.String())
			}

			var resp map[string]interface{}
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp["success"] != false {
				t.Errorf("Expected success false, got %v", resp["success"])
			}
			if resp["error"] == "" {
				t.Error("Expected an error message")
			}
		})
	}
}

// ─── Session Status Tests ───

func newSessionRouter(h *SessionHandler) http.Handler {
	r := chi.NewRouter()
	r.Patch("/sessions/{id}/status", h.UpdateStatus)
	r.Get("/classes/{id}/sessions", h.ListByClass)
	return r
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		from       string
		to         string
		wantStatus int
	}{
		{"scheduled to live", models.SessionScheduled, models.SessionLive, http.StatusOK},
		{"scheduled to cancelled", models.SessionScheduled, models.SessionCancelled, http.StatusOK},
		{"live to completed", models.SessionLive, models.SessionCompleted, http.StatusOK},
		{"scheduled to completed", models.SessionScheduled, models.SessionCompleted, http.StatusBadRequest},
		{"completed to live", models.SessionCompleted, models.SessionLive, http.StatusBadRequest},
		{"cancelled to live", models.SessionCancelled, models.SessionLive, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sessionID := uuid.New()
			repo := &fakeSessionRepo{sessions: map[uuid.UUID]*models.Session{
				sessionID: {ID: sessionID, Status: tc.from},
			}}
			h := NewSessionHandler(&fakeExpander{}, repo)

			body, _ := json.Marshal(map[string]string{"status": tc.to})
			req := httptest.NewRequest(http.MethodPatch, "/sessions/"+sessionID.String()+"/status", bytes.NewReader(body))
			rr := httptest.NewRecorder()

			newSessionRouter(h).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body.String())
			}
			if tc.wantStatus == http.StatusOK && repo.updated[sessionID] != tc.to {
				t.Errorf("Expected status persisted as %s, got %s", tc.to, repo.updated[sessionID])
			}
		})
	}
}

func TestUpdateStatus_SessionNotFound(t *testing.T) {
	h := NewSessionHandler(&fakeExpander{}, &fakeSessionRepo{})

	body, _ := json.Marshal(map[string]string{"status": models.SessionLive})
	req := httptest.NewRequest(http.MethodPatch, "/sessions/"+uuid.NewString()+"/status", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	newSessionRouter(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

// ─── Reminder Scan Tests ───

func TestScanEndpoint_Success(t *testing.T) {
	scanner := &fakeScanner{result: &models.ScanResult{
		Success:          true,
		Message:          "Sent 3 reminders (1 skipped, 0 errors) across 2 sessions",
		SessionsChecked:  2,
		RemindersSent:    3,
		RemindersSkipped: 1,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}}
	h := NewReminderHandler(scanner, &fakeScanLock{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/scan", nil)
	rr := httptest.NewRecorder()

	h.Scan(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["sessionsChecked"] != float64(2) || resp["remindersSent"] != float64(3) {
		t.Errorf("Unexpected counters: %v", resp)
	}
}

func TestScanEndpoint_LockBusy(t *testing.T) {
	h := NewReminderHandler(&fakeScanner{result: &models.ScanResult{Success: true}}, &fakeScanLock{busy: true})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/scan", nil)
	rr := httptest.NewRecorder()

	h.Scan(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected 409 while a scan is running, got %d", rr.Code)
	}
}

func TestScanEndpoint_FatalFailureKeepsPartialCounters(t *testing.T) {
	scanner := &fakeScanner{result: &models.ScanResult{
		Success:         false,
		Error:           "failed to query sessions in window: store unavailable",
		SessionsChecked: 5,
		RemindersSent:   2,
	}}
	h := NewReminderHandler(scanner, &fakeScanLock{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reminders/scan", nil)
	rr := httptest.NewRecorder()

	h.Scan(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["success"] != false {
		t.Errorf("Expected success false, got %v", resp["success"])
	}
	if resp["remindersSent"] != float64(2) {
		t.Errorf("Expected partial counters in failure response, got %v", resp)
	}
}
