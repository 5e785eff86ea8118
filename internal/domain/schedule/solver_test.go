package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/metrics"
)

func patients(sev ...float64) []triage.ScoredPatient {
	out := make([]triage.ScoredPatient, len(sev))
	for i, s := range sev {
		out[i] = triage.ScoredPatient{PatientID: fmt.Sprintf("P%d", i+1), Severity: s}
	}
	return out
}

func TestBuildSchedule_FivePatients(t *testing.T) {
	res := BuildSchedule(patients(0.9, 0.8, 0.7, 0.6, 0.5))
	if res.Infeasible {
		t.Fatalf("unexpected infeasible result: %s", res.Reason)
	}
	if len(res.Slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(res.Slots))
	}
	if err := ValidateSlots(res.Slots); err != nil {
		t.Errorf("invalid schedule: %v", err)
	}

	cat := DefaultCatalog()
	for _, s := range res.Slots {
		if !contains(cat.Doctors, s.Doctor) || !contains(cat.Rooms, s.Room) || !contains(cat.Timeslots, s.Time) {
			t.Errorf("slot outside the catalog: %+v", s)
		}
	}

	// Deterministic search: the sickest patient gets the first of everything.
	first := res.Slots[0]
	if first.PatientID != "P1" || first.Doctor != "Dr. A" || first.Room != "Room 1" || first.Time != "9 AM" {
		t.Errorf("unexpected first slot %+v", first)
	}
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func TestBuildSchedule_OnlyTopFive(t *testing.T) {
	res := BuildSchedule(patients(0.1, 0.95, 0.3, 0.85, 0.2, 0.75, 0.65, 0.4, 0.5))
	if res.Infeasible {
		t.Fatalf("unexpected infeasible result: %s", res.Reason)
	}
	want := []string{"P2", "P4", "P6", "P7", "P9"}
	if len(res.Slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(res.Slots))
	}
	for i, id := range want {
		if res.Slots[i].PatientID != id {
			t.Errorf("slot %d = %s, want %s", i, res.Slots[i].PatientID, id)
		}
	}
	if err := ValidateSlots(res.Slots); err != nil {
		t.Errorf("invalid schedule: %v", err)
	}
}

func TestSolver_Infeasible(t *testing.T) {
	s := NewSolver(WithCatalog(Catalog{
		Doctors:   []string{"Dr. A"},
		Rooms:     []string{"Room 1"},
		Timeslots: []string{"9 AM", "10 AM"},
	}))
	res := s.Solve(context.Background(), patients(0.9, 0.8, 0.7))
	if !res.Infeasible {
		t.Fatalf("expected infeasible, got %+v", res.Slots)
	}
	if res.Slots != nil {
		t.Errorf("expected no slots, got %v", res.Slots)
	}
}

func TestSolver_BudgetExhaustionIsInfeasible(t *testing.T) {
	rec := metrics.NewRecorder()
	s := NewSolver(
		WithCatalog(Catalog{
			Doctors:   []string{"Dr. A", "Dr. B"},
			Rooms:     []string{"Room 1", "Room 2"},
			Timeslots: []string{"9 AM"},
		}),
		WithMaxNodes(5),
		WithMetrics(rec),
	)
	res := s.Solve(context.Background(), patients(0.9, 0.8, 0.7))
	if !res.Infeasible {
		t.Fatal("expected infeasible result")
	}
	if !strings.Contains(res.Reason, "budget") {
		t.Errorf("unexpected reason %q", res.Reason)
	}
	if n, err := testutil.GatherAndCount(rec.Registry(), "hospital_schedule_runs_total"); err != nil || n != 1 {
		t.Errorf("expected one infeasible run recorded, got %d (%v)", n, err)
	}
}

func TestSolver_EmptyInput(t *testing.T) {
	res := BuildSchedule(nil)
	if res.Infeasible {
		t.Fatal("empty input must not be infeasible")
	}
	if res.Slots == nil || len(res.Slots) != 0 {
		t.Errorf("expected an empty slot list, got %#v", res.Slots)
	}
}

func TestSolver_CandidatesOption(t *testing.T) {
	res := NewSolver(WithCandidates(2)).Solve(context.Background(), patients(0.9, 0.8, 0.7))
	if len(res.Slots) != 2 {
		t.Errorf("expected 2 slots, got %d", len(res.Slots))
	}
}

func TestSolver_DuplicatePatientIDs(t *testing.T) {
	res := BuildSchedule([]triage.ScoredPatient{
		{PatientID: "X", Severity: 0.9},
		{PatientID: "X", Severity: 0.8},
	})
	if res.Infeasible {
		t.Fatalf("unexpected infeasible result: %s", res.Reason)
	}
	if len(res.Slots) != 2 || res.Slots[0].PatientID != "X" || res.Slots[1].PatientID != "X" {
		t.Errorf("unexpected slots %+v", res.Slots)
	}
	if err := ValidateSlots(res.Slots); err != nil {
		t.Errorf("invalid schedule: %v", err)
	}
}

func TestSolver_IDsThatLookLikeRanks(t *testing.T) {
	res := BuildSchedule([]triage.ScoredPatient{
		{PatientID: "a#3", Severity: 0.9},
		{PatientID: "a", Severity: 0.8},
		{PatientID: "a", Severity: 0.7},
		{PatientID: "0", Severity: 0.6},
		{PatientID: "doctor/1", Severity: 0.5},
	})
	if res.Infeasible {
		t.Fatalf("unexpected infeasible result: %s", res.Reason)
	}
	want := []string{"a#3", "a", "a", "0", "doctor/1"}
	if len(res.Slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(res.Slots))
	}
	for i, id := range want {
		if res.Slots[i].PatientID != id {
			t.Errorf("slot %d: patient %q, want %q", i, res.Slots[i].PatientID, id)
		}
	}
	if err := ValidateSlots(res.Slots); err != nil {
		t.Errorf("invalid schedule: %v", err)
	}
}

func TestSolver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := NewSolver().Solve(ctx, patients(0.9))
	if !res.Infeasible {
		t.Fatal("expected a cancelled search to be infeasible")
	}
}

func TestSolver_EmptyCatalogIsInfeasible(t *testing.T) {
	res := NewSolver(WithCatalog(Catalog{Doctors: []string{"Dr. A"}})).Solve(context.Background(), patients(0.9))
	if !res.Infeasible || !strings.Contains(res.Reason, "rooms") {
		t.Errorf("expected infeasible with an empty rooms list, got %+v", res)
	}
}

func TestValidateSlots(t *testing.T) {
	tests := []struct {
		name  string
		slots []Slot
		want  error
	}{
		{"empty", nil, nil},
		{"distinct", []Slot{
			{PatientID: "1", Doctor: "Dr. A", Room: "Room 1", Time: "9 AM"},
			{PatientID: "2", Doctor: "Dr. B", Room: "Room 2", Time: "9 AM"},
			{PatientID: "3", Doctor: "Dr. A", Room: "Room 1", Time: "10 AM"},
		}, nil},
		{"room clash", []Slot{
			{PatientID: "1", Doctor: "Dr. A", Room: "Room 1", Time: "9 AM"},
			{PatientID: "2", Doctor: "Dr. B", Room: "Room 1", Time: "9 AM"},
		}, ErrRoomConflict},
		{"doctor clash", []Slot{
			{PatientID: "1", Doctor: "Dr. A", Room: "Room 1", Time: "9 AM"},
			{PatientID: "2", Doctor: "Dr. A", Room: "Room 2", Time: "9 AM"},
		}, ErrDoctorConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlots(tt.slots)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
