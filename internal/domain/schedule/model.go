package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
)

// InfeasibleMessage is the wire form of an infeasible schedule.
const InfeasibleMessage = "No feasible schedule found"

var (
	ErrEmptyCatalog   = errors.New("schedule catalog has an empty list")
	ErrRoomConflict   = errors.New("room double-booked")
	ErrDoctorConflict = errors.New("doctor double-booked")
)

// Catalog lists the bookable resources.
type Catalog struct {
	Doctors   []string
	Rooms     []string
	Timeslots []string
}

func DefaultCatalog() Catalog {
	return Catalog{
		Doctors:   []string{"Dr. A", "Dr. B", "Dr. C"},
		Rooms:     []string{"Room 1", "Room 2"},
		Timeslots: []string{"9 AM", "10 AM", "11 AM", "12 PM"},
	}
}

func (c Catalog) Validate() error {
	switch {
	case len(c.Doctors) == 0:
		return fmt.Errorf("%w: doctors", ErrEmptyCatalog)
	case len(c.Rooms) == 0:
		return fmt.Errorf("%w: rooms", ErrEmptyCatalog)
	case len(c.Timeslots) == 0:
		return fmt.Errorf("%w: timeslots", ErrEmptyCatalog)
	}
	return nil
}

// Slot books one patient with a doctor and a room at a time.
type Slot struct {
	PatientID string  `json:"patient_id"`
	Doctor    string  `json:"doctor"`
	Room      string  `json:"room"`
	Time      string  `json:"time"`
	Severity  float64 `json:"severity"`
}

// Result is either a list of slots or an infeasibility marker. Reason and
// Nodes are diagnostics and stay off the wire.
type Result struct {
	Slots      []Slot
	Infeasible bool
	Reason     string
	Nodes      int
}

// MarshalJSON writes the slot array, or {"error": ...} when infeasible.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Infeasible {
		return json.Marshal(map[string]string{"error": InfeasibleMessage})
	}
	if r.Slots == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Slots)
}

// UnmarshalJSON accepts both wire forms.
func (r *Result) UnmarshalJSON(b []byte) error {
	var slots []Slot
	if err := json.Unmarshal(b, &slots); err == nil {
		*r = Result{Slots: slots}
		return nil
	}
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &e); err != nil {
		return err
	}
	*r = Result{Infeasible: true, Reason: e.Error}
	return nil
}

// ValidateSlots checks that no room and no doctor is booked twice in the
// same timeslot.
func ValidateSlots(slots []Slot) error {
	type key struct{ who, time string }
	rooms := make(map[key]string, len(slots))
	doctors := make(map[key]string, len(slots))
	for _, s := range slots {
		if prev, ok := rooms[key{s.Room, s.Time}]; ok {
			return fmt.Errorf("%w: %s at %s for %s and %s", ErrRoomConflict, s.Room, s.Time, prev, s.PatientID)
		}
		rooms[key{s.Room, s.Time}] = s.PatientID
		if prev, ok := doctors[key{s.Doctor, s.Time}]; ok {
			return fmt.Errorf("%w: %s at %s for %s and %s", ErrDoctorConflict, s.Doctor, s.Time, prev, s.PatientID)
		}
		doctors[key{s.Doctor, s.Time}] = s.PatientID
	}
	return nil
}
