package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/domain/triage"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/csp"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/metrics"
)

const (
	DefaultCandidates = 5
	DefaultMaxNodes   = 100000
)

// candidate is one patient selected for scheduling. key is its rank in the
// run, so variable names never depend on patient ids.
type candidate struct {
	key     string
	patient triage.ScoredPatient
}

func (c candidate) varName(resource string) string {
	return resource + "/" + c.key
}

// Solver books the most severe patients into doctor/room/timeslot triples.
type Solver struct {
	catalog    Catalog
	rules      []PairRule
	candidates int
	maxNodes   int
	logger     zerolog.Logger
	metrics    *metrics.Recorder
}

type Option func(*Solver)

func WithCatalog(c Catalog) Option {
	return func(s *Solver) { s.catalog = c }
}

// WithRules replaces the pairwise constraints.
func WithRules(rules ...PairRule) Option {
	return func(s *Solver) { s.rules = rules }
}

// WithCandidates sets how many top-severity patients are scheduled.
func WithCandidates(n int) Option {
	return func(s *Solver) { s.candidates = n }
}

// WithMaxNodes bounds the search. Running out counts as infeasible.
func WithMaxNodes(n int) Option {
	return func(s *Solver) { s.maxNodes = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Solver) { s.metrics = r }
}

func NewSolver(opts ...Option) *Solver {
	s := &Solver{
		catalog:    DefaultCatalog(),
		rules:      DefaultRules(),
		candidates: DefaultCandidates,
		maxNodes:   DefaultMaxNodes,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BuildSchedule schedules with the default catalog and limits.
func BuildSchedule(patients []triage.ScoredPatient) Result {
	return NewSolver().Solve(context.Background(), patients)
}

// Solve never returns an error: anything that prevents a schedule is
// reported through Result.Infeasible.
func (s *Solver) Solve(ctx context.Context, patients []triage.ScoredPatient) Result {
	cands := s.pick(patients)
	if len(cands) == 0 {
		return Result{Slots: []Slot{}}
	}

	res := s.solve(ctx, cands)
	if res.Infeasible {
		s.metrics.ScheduleSolved(metrics.ScheduleInfeasible)
		s.logger.Warn().
			Int("candidates", len(cands)).
			Int("nodes", res.Nodes).
			Str("reason", res.Reason).
			Msg("no feasible schedule")
		return res
	}
	s.metrics.ScheduleSolved(metrics.ScheduleFeasible)
	s.logger.Debug().Int("slots", len(res.Slots)).Int("nodes", res.Nodes).Msg("schedule built")
	return res
}

func (s *Solver) pick(patients []triage.ScoredPatient) []candidate {
	ranked := triage.Ranked(patients)
	if n := max(s.candidates, 0); len(ranked) > n {
		ranked = ranked[:n]
	}

	out := make([]candidate, len(ranked))
	for i, p := range ranked {
		out[i] = candidate{key: strconv.Itoa(i), patient: p}
	}
	return out
}

func (s *Solver) solve(ctx context.Context, cands []candidate) Result {
	prob, err := s.problem(cands)
	if err != nil {
		return Result{Infeasible: true, Reason: err.Error()}
	}

	asg, stats, err := csp.Solver{MaxNodes: s.maxNodes}.Solve(ctx, prob)
	switch {
	case errors.Is(err, csp.ErrNoSolution):
		return Result{Infeasible: true, Reason: "no assignment satisfies the constraints", Nodes: stats.Nodes}
	case errors.Is(err, csp.ErrBudgetExhausted):
		return Result{Infeasible: true, Reason: fmt.Sprintf("search budget of %d nodes exhausted", s.maxNodes), Nodes: stats.Nodes}
	case err != nil:
		return Result{Infeasible: true, Reason: err.Error(), Nodes: stats.Nodes}
	}

	slots := make([]Slot, len(cands))
	for i, c := range cands {
		slots[i] = Slot{
			PatientID: c.patient.PatientID,
			Doctor:    asg[c.varName(ResourceDoctor)],
			Room:      asg[c.varName(ResourceRoom)],
			Time:      asg[c.varName(ResourceTime)],
			Severity:  triage.Round3(c.patient.Severity),
		}
	}
	return Result{Slots: slots, Nodes: stats.Nodes}
}

func (s *Solver) problem(cands []candidate) (*csp.Problem, error) {
	if err := s.catalog.Validate(); err != nil {
		return nil, err
	}
	p := csp.NewProblem()
	for _, c := range cands {
		for _, v := range []struct {
			resource string
			domain   []string
		}{
			{ResourceDoctor, s.catalog.Doctors},
			{ResourceRoom, s.catalog.Rooms},
			{ResourceTime, s.catalog.Timeslots},
		} {
			if err := p.AddVariable(c.varName(v.resource), v.domain); err != nil {
				return nil, err
			}
		}
	}
	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			for _, r := range s.rules {
				if err := p.AddConstraint(r.Build(cands[i], cands[j])); err != nil {
					return nil, fmt.Errorf("rule %s: %w", r.Name, err)
				}
			}
		}
	}
	return p, nil
}
