package schedule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func postSchedule(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Schedule(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestHandler_Schedule(t *testing.T) {
	rec := postSchedule(t, NewHandler(NewSolver()),
		`[{"patient_id":"a","severity":0.7},{"patient_id":"b","severity":0.9}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var slots []Slot
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("expected a slot array: %v (%s)", err, rec.Body.String())
	}
	if len(slots) != 2 || slots[0].PatientID != "b" {
		t.Errorf("unexpected slots %+v", slots)
	}
}

func TestHandler_Schedule_Infeasible(t *testing.T) {
	solver := NewSolver(WithCatalog(Catalog{
		Doctors:   []string{"Dr. A"},
		Rooms:     []string{"Room 1"},
		Timeslots: []string{"9 AM"},
	}))
	rec := postSchedule(t, NewHandler(solver),
		`[{"patient_id":"a","severity":0.7},{"patient_id":"b","severity":0.9}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"No feasible schedule found"}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestHandler_Schedule_Empty(t *testing.T) {
	rec := postSchedule(t, NewHandler(NewSolver()), `[]`)
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected [], got %s", got)
	}
}

func TestHandler_Schedule_BadRequest(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(`{"severity":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := NewHandler(NewSolver()).Schedule(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestResult_JSONRoundTrip(t *testing.T) {
	var r Result
	if err := json.Unmarshal([]byte(`{"error":"No feasible schedule found"}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !r.Infeasible {
		t.Error("expected infeasible result")
	}

	if err := json.Unmarshal([]byte(`[{"patient_id":"1","doctor":"Dr. A","room":"Room 1","time":"9 AM","severity":0.9}]`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Infeasible || len(r.Slots) != 1 || r.Slots[0].Doctor != "Dr. A" {
		t.Errorf("unexpected result %+v", r)
	}
}
