// Package classify implements prompt detection and the auto-response
// decision policy for captured terminal output.
//
// Classification is a pure function over an immutable prompt and an
// immutable catalog. Groups are checked in strict priority order and the
// default is escalation: unrecognized prompts are never auto-approved.
package classify

import "fmt"

// Decision is the closed set of auto-response decisions.
//
// Abort is the zero value so an uninitialized Outcome fails closed.
type Decision int

const (
	// Abort means do not respond; escalate to the human operator.
	Abort Decision = iota
	// Yes means synthesize an affirmative response.
	Yes
	// No means synthesize a negative response.
	No
	// Custom means send Outcome.Text verbatim as the response. No builtin
	// rule produces it; it exists for callers constructing outcomes
	// programmatically.
	Custom
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case Abort:
		return "abort"
	case Yes:
		return "yes"
	case No:
		return "no"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// ParseDecision converts a stored string back to a Decision.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "abort":
		return Abort, nil
	case "yes":
		return Yes, nil
	case "no":
		return No, nil
	case "custom":
		return Custom, nil
	default:
		return Abort, fmt.Errorf("unknown decision %q", s)
	}
}

// Outcome is the result of classifying one prompt.
type Outcome struct {
	// Decision is the auto-response decision.
	Decision Decision
	// Text is the literal response for Custom decisions, empty otherwise.
	Text string
	// Rule is the pattern that matched, if any. Empty for the fail-closed
	// default and for the critical-impact escalation.
	Rule string
	// Reason is a short human-readable explanation for the audit trail.
	Reason string
}
