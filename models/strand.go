package models

import "time"

// StrandResult is the outcome of an allergy strand test.
type StrandResult string

const (
	StrandApproved StrandResult = "aprovado"
	StrandRejected StrandResult = "reprovado"
	// StrandAbsent is used when no test was performed.
	StrandAbsent StrandResult = ""
)

// StrandTestResult is what the professional records before a chemical
// procedure.
type StrandTestResult struct {
	Performed    bool          `json:"test_done"`
	Result       *StrandResult `json:"test_result"`
	Approved     bool          `json:"test_approved"`
	Observations string        `json:"observations"`
	TestedAt     time.Time     `json:"tested_at"`
	TestedBy     string        `json:"tested_by"`
}

// NewStrandTestResult builds a record whose Approved flag is derived from
// Performed and Result. A test that was not performed never carries a result.
func NewStrandTestResult(performed bool, result StrandResult, observations, testedBy string, at time.Time) StrandTestResult {
	rec := StrandTestResult{
		Performed:    performed,
		Observations: observations,
		TestedAt:     at.UTC(),
		TestedBy:     testedBy,
	}
	if performed && result != StrandAbsent {
		r := result
		rec.Result = &r
	}
	rec.Approved = performed && result == StrandApproved
	return rec
}

// ResultValue returns the result or StrandAbsent.
func (s *StrandTestResult) ResultValue() StrandResult {
	if s == nil || s.Result == nil {
		return StrandAbsent
	}
	return *s.Result
}

// RiskAffirmative is the sentinel a questionnaire uses for "yes".
const RiskAffirmative = "sim"

// MedicalQuestionnaire is the pre-procedure health form. Q2 and Q4 are the
// two questions whose "yes" answer rules out chemical procedures.
type MedicalQuestionnaire struct {
	Q1 string `json:"q1,omitempty"`
	Q2 string `json:"q2,omitempty"`
	Q3 string `json:"q3,omitempty"`
	Q4 string `json:"q4,omitempty"`
	Q5 string `json:"q5,omitempty"`
}

// HasRisk reports whether either risk question was answered affirmatively.
func (m *MedicalQuestionnaire) HasRisk() bool {
	if m == nil {
		return false
	}
	return m.Q2 == RiskAffirmative || m.Q4 == RiskAffirmative
}
