package triage

import "github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/fuzzy"

// Linguistic variable names.
const (
	VarHeartRate       = "heart_rate"
	VarSpO2            = "spo2"
	VarTemperature     = "temperature"
	VarRespiratoryRate = "respiratory_rate"
	VarSeverity        = "severity"
)

// Severity bands.
const (
	Low    = "low"
	Normal = "normal"
	High   = "high"
	Medium = "medium"
)

const severityStep = 0.01

func heartRate() *fuzzy.Variable {
	return fuzzy.NewVariable(VarHeartRate, 40, 180).
		Term(Low, fuzzy.TriMF{A: 40, B: 60, C: 80}).
		Term(Normal, fuzzy.TriMF{A: 70, B: 85, C: 100}).
		Term(High, fuzzy.TriMF{A: 90, B: 130, C: 180})
}

func spo2() *fuzzy.Variable {
	return fuzzy.NewVariable(VarSpO2, 70, 100).
		Term(Low, fuzzy.TriMF{A: 70, B: 85, C: 92}).
		Term(Normal, fuzzy.TriMF{A: 90, B: 96, C: 100})
}

func temperature() *fuzzy.Variable {
	return fuzzy.NewVariable(VarTemperature, 95, 106).
		Term(Low, fuzzy.TriMF{A: 95, B: 96.5, C: 97.5}).
		Term(Normal, fuzzy.TriMF{A: 97, B: 98.6, C: 99.5}).
		Term(High, fuzzy.TriMF{A: 99, B: 101, C: 106})
}

func respiratoryRate() *fuzzy.Variable {
	return fuzzy.NewVariable(VarRespiratoryRate, 10, 40).
		Term(Low, fuzzy.TriMF{A: 10, B: 12, C: 16}).
		Term(Normal, fuzzy.TriMF{A: 15, B: 20, C: 24}).
		Term(High, fuzzy.TriMF{A: 22, B: 30, C: 40})
}

func severity() *fuzzy.Variable {
	return fuzzy.NewVariable(VarSeverity, 0, 1).
		Term(Low, fuzzy.TriMF{A: 0, B: 0.2, C: 0.4}).
		Term(Medium, fuzzy.TriMF{A: 0.3, B: 0.5, C: 0.7}).
		Term(High, fuzzy.TriMF{A: 0.6, B: 0.8, C: 1.0})
}

func rules() []fuzzy.Rule {
	is := fuzzy.Is
	return []fuzzy.Rule{
		{If: fuzzy.And(is(VarHeartRate, High), is(VarSpO2, Low)), Then: High},
		{If: fuzzy.And(is(VarTemperature, High), is(VarRespiratoryRate, High)), Then: High},
		{
			If: fuzzy.And(
				is(VarHeartRate, Normal), is(VarSpO2, Normal),
				is(VarTemperature, Normal), is(VarRespiratoryRate, Normal),
			),
			Then: Low,
		},
		{If: fuzzy.Or(is(VarHeartRate, Low), is(VarSpO2, Low)), Then: Medium},
		{If: fuzzy.Or(is(VarTemperature, High), is(VarRespiratoryRate, High)), Then: Medium},
	}
}

// NewKnowledgeBase builds the triage controller: four vital-sign inputs,
// one severity output in [0,1] and the five triage rules.
func NewKnowledgeBase() (*fuzzy.System, error) {
	sys := fuzzy.NewSystem(severity(), severityStep,
		heartRate(), spo2(), temperature(), respiratoryRate())
	for _, r := range rules() {
		if err := sys.AddRule(r); err != nil {
			return nil, err
		}
	}
	return sys, nil
}
