// Package strandtest records allergy strand tests and decides whether a
// chemical procedure may go ahead. The backend stays authoritative; the gate
// here is advisory.
package strandtest

import (
	"errors"
	"fmt"

	"salonai/models"
	"salonai/utils"
)

// CancelReason is sent when a rejected test leads to cancellation.
const CancelReason = "Cliente reprovou no teste de mecha - reação alérgica"

// RejectedPrompt is the question asked before cancelling.
const RejectedPrompt = "WARNING: the client had an allergic reaction to the strand test.\n" +
	"We recommend cancelling this appointment and referring the client to a dermatologist.\n" +
	"Cancel the appointment now?"

var (
	ErrPerformedUnanswered = fmt.Errorf("%w: indicate whether the test was performed", utils.ErrValidation)
	ErrResultRequired      = fmt.Errorf("%w: indicate the test result", utils.ErrValidation)
	ErrResultWithoutTest   = fmt.Errorf("%w: a test that was not performed cannot have a result", utils.ErrValidation)
	ErrUnknownResult       = fmt.Errorf("%w: unknown test result", utils.ErrValidation)
	ErrNotLoggedIn         = errors.New("log in to record a strand test")
)

// Submission is what the professional filled in. Performed is nil until
// answered.
type Submission struct {
	Performed    *bool
	Result       models.StrandResult
	Observations string
}

// Validate rejects incomplete or contradictory answers.
func (s Submission) Validate() error {
	if s.Performed == nil {
		return ErrPerformedUnanswered
	}
	switch s.Result {
	case models.StrandApproved, models.StrandRejected, models.StrandAbsent:
	default:
		return ErrUnknownResult
	}
	if *s.Performed && s.Result == models.StrandAbsent {
		return ErrResultRequired
	}
	if !*s.Performed && s.Result != models.StrandAbsent {
		return ErrResultWithoutTest
	}
	return nil
}

// CanProceedWithChemical reports whether a chemical procedure may start.
func CanProceedWithChemical(a models.Appointment) bool {
	st := a.StrandTest
	if st != nil && st.Performed && !st.Approved {
		return false
	}
	if a.RequiresStrandTest && (st == nil || !st.Performed || !st.Approved) {
		return false
	}
	if a.Questionnaire().HasRisk() {
		return false
	}
	return true
}

// BadgeKind is the strand-test state shown on a card.
type BadgeKind string

const (
	BadgePending  BadgeKind = "pending"
	BadgeRejected BadgeKind = "rejected"
	BadgeApproved BadgeKind = "approved"
)

// Label is the badge text.
func (b BadgeKind) Label() string {
	switch b {
	case BadgeRejected:
		return "Rejected"
	case BadgeApproved:
		return "Approved"
	}
	return "Test pending"
}

// Badge classifies a recorded result.
func Badge(r *models.StrandTestResult) BadgeKind {
	switch {
	case r == nil || !r.Performed:
		return BadgePending
	case !r.Approved:
		return BadgeRejected
	}
	return BadgeApproved
}
