package beds

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/metrics"
)

// Allocator binds a floor layout to an assignment strategy.
type Allocator struct {
	provider floorplan.DistanceProvider
	strategy Strategy
	logger   zerolog.Logger
	metrics  *metrics.Recorder
}

type Option func(*Allocator)

func WithStrategy(s Strategy) Option {
	return func(a *Allocator) { a.strategy = s }
}

func WithLogger(l zerolog.Logger) Option {
	return func(a *Allocator) { a.logger = l }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Allocator) { a.metrics = r }
}

// NewAllocator defaults to the greedy strategy.
func NewAllocator(provider floorplan.DistanceProvider, opts ...Option) *Allocator {
	a := &Allocator{provider: provider, strategy: GreedyStrategy{}, logger: zerolog.Nop()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Allocate fails only when ctx ends first. Patients beyond capacity get
// NoBed.
func (a *Allocator) Allocate(ctx context.Context, patients []triage.ScoredPatient) ([]Allocation, error) {
	out, err := a.strategy.Assign(ctx, patients, a.provider)
	if err != nil {
		return nil, err
	}

	var none, unreachable int
	for _, al := range out {
		switch {
		case !al.HasBed():
			none++
			a.metrics.BedAllocated(metrics.BedNone)
		case al.DistanceCost == nil:
			unreachable++
			a.metrics.BedAllocated(metrics.BedUnreachable)
		default:
			a.metrics.BedAllocated(metrics.BedAssigned)
		}
	}
	if none > 0 || unreachable > 0 {
		a.logger.Warn().
			Int("patients", len(out)).
			Int("without_bed", none).
			Int("unreachable", unreachable).
			Msg("bed capacity short")
	}
	return out, nil
}

// AllocateBeds runs the greedy strategy on a plain gridSize×gridSize ward
// entered at (0,0). It fails only for gridSize <= 0 or above
// floorplan.DefaultMaxSize.
func AllocateBeds(patients []triage.ScoredPatient, gridSize int) ([]Allocation, error) {
	grid, err := floorplan.NewGrid(gridSize)
	if err != nil {
		return nil, err
	}
	return NewAllocator(grid).Allocate(context.Background(), patients)
}
