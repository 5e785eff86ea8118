package beds

import (
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
)

// NoBed is the AssignedBed value when capacity ran out.
const NoBed = "None"

// Allocation records one patient's bed. DistanceCost is nil both when no
// bed was assigned and when the assigned bed is unreachable from the entry.
type Allocation struct {
	PatientID    string         `json:"patient_id"`
	Severity     float64        `json:"severity"`
	AssignedBed  string         `json:"assigned_bed"`
	Bed          *floorplan.Bed `json:"bed"`
	DistanceCost *int           `json:"distance_cost"`
}

func assigned(p triage.ScoredPatient, b floorplan.Bed, cost *int) Allocation {
	return Allocation{
		PatientID:    p.PatientID,
		Severity:     triage.Round3(p.Severity),
		AssignedBed:  b.Label(),
		Bed:          &b,
		DistanceCost: cost,
	}
}

func unassigned(p triage.ScoredPatient) Allocation {
	return Allocation{
		PatientID:   p.PatientID,
		Severity:    triage.Round3(p.Severity),
		AssignedBed: NoBed,
	}
}

// HasBed reports whether a bed was assigned.
func (a Allocation) HasBed() bool { return a.Bed != nil }
