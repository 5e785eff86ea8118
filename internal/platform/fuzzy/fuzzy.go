// Package fuzzy implements a small Mamdani inference engine: triangular
// membership functions, rules built from AND (min) / OR (max) expressions,
// max-union aggregation of clipped consequents and centroid defuzzification.
package fuzzy

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrMissingInput = errors.New("fuzzy: missing input")
	ErrUnknownTerm  = errors.New("fuzzy: unknown variable or term")
	ErrNoActivation = errors.New("fuzzy: aggregated output has zero area")
)

// TriMF is a triangular membership function with feet A, C and peak B.
// A == B or B == C gives a shoulder.
type TriMF struct {
	A, B, C float64
}

// Degree returns the membership of x.
func (m TriMF) Degree(x float64) float64 {
	switch {
	case x < m.A || x > m.C:
		return 0
	case x == m.B:
		return 1
	case x < m.B:
		return (x - m.A) / (m.B - m.A)
	default:
		return (m.C - x) / (m.C - m.B)
	}
}

// cuts returns the points where the triangle crosses level h.
func (m TriMF) cuts(h float64) []float64 {
	if h <= 0 || h >= 1 {
		return nil
	}
	return []float64{m.A + h*(m.B-m.A), m.C - h*(m.C-m.B)}
}

// Variable is a linguistic variable over [Min, Max].
type Variable struct {
	Name  string
	Min   float64
	Max   float64
	Terms map[string]TriMF
}

func NewVariable(name string, lo, hi float64) *Variable {
	return &Variable{Name: name, Min: lo, Max: hi, Terms: make(map[string]TriMF)}
}

// Term adds a labeled fuzzy set and returns the variable for chaining.
func (v *Variable) Term(label string, mf TriMF) *Variable {
	v.Terms[label] = mf
	return v
}

// Fuzzify returns the membership of x in every term. x is clipped to the
// variable's range first.
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	x = math.Max(v.Min, math.Min(v.Max, x))
	out := make(map[string]float64, len(v.Terms))
	for label, mf := range v.Terms {
		out[label] = mf.Degree(x)
	}
	return out
}

type memberships map[string]map[string]float64

// Expr is a rule antecedent.
type Expr interface {
	eval(m memberships) float64
	refs() []ref
}

type ref struct{ variable, term string }

type isExpr ref

// Is is satisfied to the degree variable belongs to term.
func Is(variable, term string) Expr { return isExpr{variable: variable, term: term} }

func (e isExpr) eval(m memberships) float64 { return m[e.variable][e.term] }
func (e isExpr) refs() []ref                { return []ref{ref(e)} }

type andExpr []Expr

// And combines expressions with min.
func And(xs ...Expr) Expr { return andExpr(xs) }

func (e andExpr) eval(m memberships) float64 {
	v := 1.0
	for _, x := range e {
		v = math.Min(v, x.eval(m))
	}
	return v
}

func (e andExpr) refs() []ref { return collect(e) }

type orExpr []Expr

// Or combines expressions with max.
func Or(xs ...Expr) Expr { return orExpr(xs) }

func (e orExpr) eval(m memberships) float64 {
	v := 0.0
	for _, x := range e {
		v = math.Max(v, x.eval(m))
	}
	return v
}

func (e orExpr) refs() []ref { return collect(e) }

func collect(xs []Expr) []ref {
	var out []ref
	for _, x := range xs {
		out = append(out, x.refs()...)
	}
	return out
}

// Rule activates output term Then to the degree If holds.
type Rule struct {
	If   Expr
	Then string
}

// System is a Mamdani controller with one output variable.
type System struct {
	inputs []*Variable
	byName map[string]*Variable
	output *Variable
	step   float64
	rules  []Rule
}

// NewSystem creates a system whose output universe is sampled every step.
func NewSystem(output *Variable, step float64, inputs ...*Variable) *System {
	s := &System{
		inputs: inputs,
		byName: make(map[string]*Variable, len(inputs)),
		output: output,
		step:   step,
	}
	for _, v := range inputs {
		s.byName[v.Name] = v
	}
	return s
}

// AddRule validates every term the rule references.
func (s *System) AddRule(r Rule) error {
	if r.If == nil {
		return fmt.Errorf("%w: rule without antecedent", ErrUnknownTerm)
	}
	for _, rf := range r.If.refs() {
		v, ok := s.byName[rf.variable]
		if !ok {
			return fmt.Errorf("%w: variable %q", ErrUnknownTerm, rf.variable)
		}
		if _, ok := v.Terms[rf.term]; !ok {
			return fmt.Errorf("%w: %s[%q]", ErrUnknownTerm, rf.variable, rf.term)
		}
	}
	if _, ok := s.output.Terms[r.Then]; !ok {
		return fmt.Errorf("%w: %s[%q]", ErrUnknownTerm, s.output.Name, r.Then)
	}
	s.rules = append(s.rules, r)
	return nil
}

// Activations returns the firing strength reaching each output term.
func (s *System) Activations(in map[string]float64) (map[string]float64, error) {
	m := make(memberships, len(s.inputs))
	for _, v := range s.inputs {
		x, ok := in[v.Name]
		if !ok || math.IsNaN(x) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, v.Name)
		}
		m[v.Name] = v.Fuzzify(x)
	}

	act := make(map[string]float64, len(s.output.Terms))
	for _, r := range s.rules {
		act[r.Then] = math.Max(act[r.Then], r.If.eval(m))
	}
	return act, nil
}

// Compute runs inference and returns the centroid of the aggregated output.
func (s *System) Compute(in map[string]float64) (float64, error) {
	act, err := s.Activations(in)
	if err != nil {
		return 0, err
	}

	xs := s.universe(act)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		for label, mf := range s.output.Terms {
			ys[i] = math.Max(ys[i], math.Min(act[label], mf.Degree(x)))
		}
	}
	return centroid(xs, ys)
}

// universe samples the output range and adds the triangle vertices and clip
// crossings so the aggregated set is exactly piecewise linear between points.
func (s *System) universe(act map[string]float64) []float64 {
	lo, hi := s.output.Min, s.output.Max
	n := int(math.Round((hi-lo)/s.step)) + 1
	if n < 2 {
		n = 2
	}
	xs := floats.Span(make([]float64, n), lo, hi)
	for label, mf := range s.output.Terms {
		xs = append(xs, mf.A, mf.B, mf.C)
		xs = append(xs, mf.cuts(act[label])...)
	}

	xs = slices.DeleteFunc(xs, func(x float64) bool { return x < lo || x > hi })
	slices.Sort(xs)
	return slices.CompactFunc(xs, func(a, b float64) bool { return math.Abs(a-b) < 1e-12 })
}

// centroid integrates a piecewise-linear membership over xs.
func centroid(xs, ys []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, ErrNoActivation
	}
	areas := make([]float64, len(xs)-1)
	moments := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		x1, x2, y1, y2 := xs[i-1], xs[i], ys[i-1], ys[i]
		w := x2 - x1
		areas[i-1] = w * (y1 + y2) / 2
		moments[i-1] = w / 6 * (x1*(2*y1+y2) + x2*(y1+2*y2))
	}
	area := floats.Sum(areas)
	if area <= 0 {
		return 0, ErrNoActivation
	}
	return floats.Sum(moments) / area, nil
}
