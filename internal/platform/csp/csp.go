// Package csp is a small finite-domain constraint solver. Variables take
// string values; constraints are predicates over a fixed list of variables.
// Search is depth-first in variable insertion order and domain order, so the
// first solution found is deterministic.
package csp

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoSolution        = errors.New("csp: no solution")
	ErrBudgetExhausted   = errors.New("csp: search budget exhausted")
	ErrDuplicateVariable = errors.New("csp: duplicate variable")
	ErrEmptyDomain       = errors.New("csp: empty domain")
	ErrUnknownVariable   = errors.New("csp: unknown variable")
)

// Constraint holds when Check returns true for the values of Vars, passed in
// the same order. Check must not retain the slice.
type Constraint struct {
	Name  string
	Vars  []string
	Check func(values []string) bool
}

// Assignment maps variable names to chosen values.
type Assignment map[string]string

type Stats struct {
	Nodes      int
	Backtracks int
}

type Problem struct {
	names       []string
	index       map[string]int
	domains     [][]string
	constraints []Constraint
	scopes      [][]int // variable indexes per constraint
	byVar       [][]int // constraint indexes per variable
}

func NewProblem() *Problem {
	return &Problem{index: make(map[string]int)}
}

func (p *Problem) AddVariable(name string, domain []string) error {
	if _, ok := p.index[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateVariable, name)
	}
	if len(domain) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyDomain, name)
	}
	p.index[name] = len(p.names)
	p.names = append(p.names, name)
	p.domains = append(p.domains, append([]string(nil), domain...))
	p.byVar = append(p.byVar, nil)
	return nil
}

// AddConstraint requires every variable in c.Vars to exist already.
func (p *Problem) AddConstraint(c Constraint) error {
	if len(c.Vars) == 0 || c.Check == nil {
		return fmt.Errorf("csp: constraint %q has no variables or no check", c.Name)
	}
	scope := make([]int, len(c.Vars))
	for i, name := range c.Vars {
		idx, ok := p.index[name]
		if !ok {
			return fmt.Errorf("%w: %q in constraint %q", ErrUnknownVariable, name, c.Name)
		}
		scope[i] = idx
	}
	ci := len(p.constraints)
	p.constraints = append(p.constraints, c)
	p.scopes = append(p.scopes, scope)
	for _, idx := range scope {
		if n := len(p.byVar[idx]); n == 0 || p.byVar[idx][n-1] != ci {
			p.byVar[idx] = append(p.byVar[idx], ci)
		}
	}
	return nil
}

func (p *Problem) Variables() []string { return append([]string(nil), p.names...) }

// Solver runs backtracking search with forward checking. MaxNodes bounds
// the number of value trials; zero means unbounded.
type Solver struct {
	MaxNodes int
}

// Solve returns the first consistent assignment. It returns ErrNoSolution
// when the space is exhausted, ErrBudgetExhausted when MaxNodes is hit and
// the context error on cancellation.
func (s Solver) Solve(ctx context.Context, p *Problem) (Assignment, Stats, error) {
	st := &search{
		ctx:      ctx,
		p:        p,
		max:      s.MaxNodes,
		values:   make([]string, len(p.names)),
		assigned: make([]bool, len(p.names)),
		domains:  make([][]string, len(p.names)),
	}
	copy(st.domains, p.domains)

	if err := st.solve(0); err != nil {
		if errors.Is(err, errDeadEnd) {
			err = ErrNoSolution
		}
		return nil, st.stats, err
	}

	out := make(Assignment, len(p.names))
	for i, name := range p.names {
		out[name] = st.values[i]
	}
	return out, st.stats, nil
}

var errDeadEnd = errors.New("dead end")

type pruned struct {
	variable int
	domain   []string
}

type search struct {
	ctx      context.Context
	p        *Problem
	max      int
	values   []string
	assigned []bool
	domains  [][]string
	scratch  []string
	stats    Stats
}

func (s *search) solve(i int) error {
	if i == len(s.p.names) {
		return nil
	}
	for _, v := range s.domains[i] {
		s.stats.Nodes++
		if s.max > 0 && s.stats.Nodes > s.max {
			return ErrBudgetExhausted
		}
		if err := s.ctx.Err(); err != nil {
			return err
		}

		s.values[i], s.assigned[i] = v, true
		trail, ok := s.forwardCheck(i)
		if ok {
			err := s.solve(i + 1)
			if err == nil || !errors.Is(err, errDeadEnd) {
				return err
			}
		}
		for k := len(trail) - 1; k >= 0; k-- {
			s.domains[trail[k].variable] = trail[k].domain
		}
		s.assigned[i] = false
		s.stats.Backtracks++
	}
	return errDeadEnd
}

// forwardCheck verifies fully assigned constraints on i and narrows the
// domain of any constraint left with a single open variable.
func (s *search) forwardCheck(i int) ([]pruned, bool) {
	var trail []pruned
	for _, ci := range s.p.byVar[i] {
		c, scope := s.p.constraints[ci], s.p.scopes[ci]

		open, nOpen := -1, 0
		for _, vi := range scope {
			if !s.assigned[vi] && vi != open {
				open = vi
				nOpen++
			}
		}

		switch nOpen {
		case 0:
			if !c.Check(s.gather(scope)) {
				return trail, false
			}
		case 1:
			dom := s.domains[open]
			kept := make([]string, 0, len(dom))
			for _, cand := range dom {
				s.values[open] = cand
				if c.Check(s.gather(scope)) {
					kept = append(kept, cand)
				}
			}
			s.values[open] = ""
			if len(kept) < len(dom) {
				trail = append(trail, pruned{variable: open, domain: dom})
				s.domains[open] = kept
			}
			if len(kept) == 0 {
				return trail, false
			}
		}
	}
	return trail, true
}

func (s *search) gather(scope []int) []string {
	s.scratch = s.scratch[:0]
	for _, vi := range scope {
		s.scratch = append(s.scratch, s.values[vi])
	}
	return s.scratch
}
