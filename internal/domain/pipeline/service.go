// Package pipeline runs a patient batch end to end: severity scoring, then
// bed allocation and surgery scheduling side by side, then an optional
// plain-language summary.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/beds"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/schedule"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/metrics"
)

// Narrator explains finished results. *narrative.Client implements it.
type Narrator interface {
	Summarize(ctx context.Context, allocs []beds.Allocation, res schedule.Result, total int) (string, error)
}

// Options override the ward defaults for one run. Zero values keep the
// configured ones.
type Options struct {
	GridSize int
	Strategy beds.StrategyKind
	Summary  bool
}

// Report is the outcome of one run. It is not stored anywhere.
type Report struct {
	RunID        uuid.UUID              `json:"run_id"`
	Scored       []triage.ScoredPatient `json:"scored"`
	Allocations  []beds.Allocation      `json:"allocations"`
	Schedule     schedule.Result        `json:"schedule"`
	Summary      *string                `json:"summary,omitempty"`
	SummaryError *string                `json:"summary_error,omitempty"`
}

// Assigned counts allocations that received a bed.
func (r *Report) Assigned() int {
	n := 0
	for _, a := range r.Allocations {
		if a.HasBed() {
			n++
		}
	}
	return n
}

type Service struct {
	scorer   *triage.Scorer
	ward     beds.Ward
	solver   *schedule.Solver
	narrator Narrator
	logger   zerolog.Logger
	metrics  *metrics.Recorder
}

type Option func(*Service)

func WithNarrator(n Narrator) Option {
	return func(s *Service) { s.narrator = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

func NewService(scorer *triage.Scorer, ward beds.Ward, solver *schedule.Solver, opts ...Option) *Service {
	s := &Service{
		scorer: scorer,
		ward:   ward,
		solver: solver,
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run scores the batch, then allocates beds and builds the schedule
// concurrently. Only a bad grid size, an unknown strategy or an ended
// context fail the run; a failed summary lands in SummaryError.
func (s *Service) Run(ctx context.Context, vitals []triage.PatientVitals, opts Options) (*Report, error) {
	start := time.Now()

	size := s.ward.GridSize
	if opts.GridSize != 0 {
		size = opts.GridSize
	}
	kind := s.ward.Strategy
	if opts.Strategy != "" {
		kind = opts.Strategy
	}
	strategy, err := beds.NewStrategy(kind)
	if err != nil {
		return nil, err
	}
	grid, err := s.ward.Layout(size)
	if err != nil {
		return nil, fmt.Errorf("ward layout: %w", err)
	}

	report := &Report{
		RunID:  uuid.New(),
		Scored: s.scorer.ScoreBatch(vitals),
	}
	log := s.logger.With().Str("run_id", report.RunID.String()).Logger()

	allocator := beds.NewAllocator(grid,
		beds.WithStrategy(strategy),
		beds.WithLogger(log),
		beds.WithMetrics(s.metrics),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := allocator.Allocate(gctx, slices.Clone(report.Scored))
		if err != nil {
			return fmt.Errorf("bed allocation: %w", err)
		}
		report.Allocations = out
		return nil
	})
	g.Go(func() error {
		report.Schedule = s.solver.Solve(gctx, slices.Clone(report.Scored))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !report.Schedule.Infeasible {
		if err := schedule.ValidateSlots(report.Schedule.Slots); err != nil {
			return nil, fmt.Errorf("schedule check: %w", err)
		}
	}

	switch {
	case !opts.Summary:
	case s.narrator == nil:
		log.Debug().Msg("summary requested but no narrator configured")
	default:
		text, err := s.narrator.Summarize(ctx, report.Allocations, report.Schedule, len(report.Scored))
		if err != nil {
			log.Warn().Err(err).Msg("narrative summary failed")
			msg := err.Error()
			report.SummaryError = &msg
		} else {
			report.Summary = &text
		}
	}

	elapsed := time.Since(start)
	s.metrics.PipelineObserved(elapsed)
	log.Info().
		Int("patients", len(report.Scored)).
		Int("allocated", report.Assigned()).
		Int("scheduled", len(report.Schedule.Slots)).
		Bool("infeasible", report.Schedule.Infeasible).
		Str("strategy", string(kind)).
		Dur("duration", elapsed).
		Msg("pipeline run complete")
	return report, nil
}
