package triage

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/fuzzy"
	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/metrics"
)

// NeutralSeverity is returned whenever a score cannot be inferred.
const NeutralSeverity = 0.5

// Scorer maps vital signs to a severity in [0,1]. Score never fails.
type Scorer struct {
	system  *fuzzy.System
	logger  zerolog.Logger
	metrics *metrics.Recorder
}

type ScorerOption func(*Scorer)

func WithLogger(l zerolog.Logger) ScorerOption {
	return func(s *Scorer) { s.logger = l }
}

func WithMetrics(r *metrics.Recorder) ScorerOption {
	return func(s *Scorer) { s.metrics = r }
}

// WithSystem replaces the triage knowledge base.
func WithSystem(sys *fuzzy.System) ScorerOption {
	return func(s *Scorer) { s.system = sys }
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.system == nil {
		sys, err := NewKnowledgeBase()
		if err != nil {
			// The rule base is static; this only fires on a broken edit.
			panic(fmt.Sprintf("triage: invalid knowledge base: %v", err))
		}
		s.system = sys
	}
	return s
}

var defaultScorer = NewScorer()

// ScoreSeverity scores one patient with the default knowledge base.
func ScoreSeverity(v PatientVitals) float64 {
	return defaultScorer.Score(v)
}

// Score returns NeutralSeverity when any vital is absent or not finite, or
// when inference fails for any reason.
func (s *Scorer) Score(v PatientVitals) (severity float64) {
	inputs, ok := v.inputs()
	if !ok {
		s.metrics.TriageScored(metrics.TriageMissing)
		return NeutralSeverity
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn().Str("patient_id", v.PatientID).Interface("panic", r).Msg("severity inference panicked")
			s.metrics.TriageScored(metrics.TriageFailed)
			severity = NeutralSeverity
		}
	}()

	out, err := s.system.Compute(inputs)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", v.PatientID).Msg("severity inference failed")
		s.metrics.TriageScored(metrics.TriageFailed)
		return NeutralSeverity
	}
	s.metrics.TriageScored(metrics.TriageInferred)
	return math.Max(0, math.Min(1, out))
}

// ScoreBatch scores every row in input order. Rows without a patient id
// get their 1-based position.
func (s *Scorer) ScoreBatch(batch []PatientVitals) []ScoredPatient {
	out := make([]ScoredPatient, 0, len(batch))
	for i, v := range batch {
		id := v.PatientID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		out = append(out, ScoredPatient{PatientID: id, Severity: s.Score(v)})
	}
	return out
}

func (v PatientVitals) inputs() (map[string]float64, bool) {
	readings := map[string]*float64{
		VarHeartRate:       v.HeartRate,
		VarSpO2:            v.SpO2,
		VarTemperature:     v.Temperature,
		VarRespiratoryRate: v.RespiratoryRate,
	}
	out := make(map[string]float64, len(readings))
	for name, r := range readings {
		if r == nil || math.IsNaN(*r) || math.IsInf(*r, 0) {
			return nil, false
		}
		out[name] = *r
	}
	return out, true
}
