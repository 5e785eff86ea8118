package beds

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
)

var ErrUnknownStrategy = errors.New("unknown bed strategy")

// Strategy assigns beds to a batch of scored patients. Implementations
// return one Allocation per patient, ordered by severity descending, and
// never hand out the same bed twice. The only error is ctx's.
type Strategy interface {
	Assign(ctx context.Context, patients []triage.ScoredPatient, provider floorplan.DistanceProvider) ([]Allocation, error)
}

type StrategyKind string

const (
	// GreedyKind walks patients by severity and gives each the nearest free bed.
	GreedyKind StrategyKind = "greedy"
	// OptimalKind minimizes total severity-weighted walking distance.
	OptimalKind StrategyKind = "optimal"
)

// ParseStrategy accepts "greedy" or "optimal" in any case. An empty string
// selects greedy.
func ParseStrategy(s string) (StrategyKind, error) {
	switch k := StrategyKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", GreedyKind:
		return GreedyKind, nil
	case OptimalKind:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// NewStrategy is a factory over the supported strategy kinds.
func NewStrategy(kind StrategyKind) (Strategy, error) {
	switch kind {
	case GreedyKind, "":
		return GreedyStrategy{}, nil
	case OptimalKind:
		return OptimalStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
	}
}

// entryDistances measures every bed once; costs from the entry do not
// depend on the patient.
func entryDistances(ctx context.Context, provider floorplan.DistanceProvider, beds []floorplan.Bed) ([]*int, error) {
	entry := provider.Entry()
	out := make([]*int, len(beds))
	for i, b := range beds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d, ok := provider.Distance(entry, b); ok {
			out[i] = &d
		}
	}
	return out, nil
}
