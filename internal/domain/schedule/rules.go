package schedule

import (
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/csp"
)

// Resource variable prefixes. Each candidate gets one variable per prefix.
const (
	ResourceDoctor = "doctor"
	ResourceRoom   = "room"
	ResourceTime   = "time"
)

// PairRule builds the constraint that must hold between two scheduled
// candidates.
type PairRule struct {
	Name  string
	Build func(a, b candidate) csp.Constraint
}

// NoOverlap forbids two candidates from sharing resource in one timeslot.
func NoOverlap(resource string) PairRule {
	name := "no-" + resource + "-overlap"
	return PairRule{
		Name: name,
		Build: func(a, b candidate) csp.Constraint {
			return csp.Constraint{
				Name: name + ":" + a.key + ":" + b.key,
				Vars: []string{a.varName(resource), a.varName(ResourceTime), b.varName(resource), b.varName(ResourceTime)},
				Check: func(v []string) bool {
					return v[0] != v[2] || v[1] != v[3]
				},
			}
		},
	}
}

// DefaultRules keep rooms and doctors single-booked.
func DefaultRules() []PairRule {
	return []PairRule{NoOverlap(ResourceRoom), NoOverlap(ResourceDoctor)}
}
