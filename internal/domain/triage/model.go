package triage

import (
	"cmp"
	"math"
	"slices"
)

// PatientVitals is one row of the intake batch. A nil reading means the
// vital was not recorded.
type PatientVitals struct {
	PatientID       string   `json:"patient_id"`
	HeartRate       *float64 `json:"heart_rate,omitempty"`
	SpO2            *float64 `json:"spo2,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	RespiratoryRate *float64 `json:"respiratory_rate,omitempty"`
}

// ScoredPatient is the output of the severity scorer and the input of the
// bed allocator and the schedule solver.
type ScoredPatient struct {
	PatientID string  `json:"patient_id"`
	Severity  float64 `json:"severity"`
}

// Ranked returns a copy of patients ordered by severity, highest first.
// Equal severities are ordered by patient id so runs are reproducible.
func Ranked(patients []ScoredPatient) []ScoredPatient {
	out := slices.Clone(patients)
	slices.SortStableFunc(out, func(a, b ScoredPatient) int {
		if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
			return c
		}
		return cmp.Compare(a.PatientID, b.PatientID)
	})
	return out
}

// Round3 rounds to three decimals, the precision reported to consumers.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
