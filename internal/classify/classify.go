package classify

import "github.com/termpilot/termpilot/internal/catalog"

// Classify decides the auto-response for a prompt.
//
// Checks run in strict priority order, first match wins:
//
//  1. require-user pattern  → Abort. Absolute priority: credentials and
//     destructive file ops are never auto-approved even when an
//     auto-approve pattern also matches.
//  2. critical impact       → Abort.
//  3. auto-approve pattern  → Yes.
//  4. auto-decline pattern  → No.
//  5. no match              → Abort (unknown prompts always escalate).
//
// Classify is pure and total: same prompt and catalog, same outcome.
// Recording the outcome is the caller's job, not the classifier's.
func Classify(p *Prompt, cat *catalog.Catalog) Outcome {
	if rule, ok := cat.MatchRequireUser(p.Text); ok {
		return Outcome{Decision: Abort, Rule: rule, Reason: "requires user attention"}
	}

	if p.CriticalImpact {
		return Outcome{Decision: Abort, Reason: "critical impact vocabulary"}
	}

	if rule, ok := cat.MatchAutoApprove(p.Text); ok {
		return Outcome{Decision: Yes, Rule: rule, Reason: "auto-approve pattern"}
	}

	if rule, ok := cat.MatchAutoDecline(p.Text); ok {
		return Outcome{Decision: No, Rule: rule, Reason: "auto-decline pattern"}
	}

	return Outcome{Decision: Abort, Reason: "no pattern matched"}
}
