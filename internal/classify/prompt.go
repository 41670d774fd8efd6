package classify

import (
	"regexp"
	"strings"

	"github.com/termpilot/termpilot/internal/catalog"
	"github.com/termpilot/termpilot/internal/utils"
)

// SourceContext describes what the terminal was doing when a prompt
// appeared. It is inferred from recent output, logged for audit, and
// never consulted by the classifier.
type SourceContext string

const (
	ContextGeneral        SourceContext = "general"
	ContextInitialization SourceContext = "initialization"
	ContextGitCommit      SourceContext = "git_commit"
	ContextCodeReview     SourceContext = "code_review"
	ContextDiagnostics    SourceContext = "diagnostics"
)

// Prompt is one captured interactive-prompt event. Constructed fresh per
// captured line, immutable, discarded after one classification.
type Prompt struct {
	// Text is the raw captured line, ANSI-stripped.
	Text string
	// Context is the inferred source context.
	Context SourceContext
	// CriticalImpact is true if Text contains a destructive-action word.
	CriticalImpact bool
	// Responses holds the option tokens extracted from the first [...] or
	// (...) group, e.g. ["y", "n"]. Informational only in the current
	// policy; populated for audit and future policy extensions.
	Responses []string
	// Trigger is the phrase that qualified the line as a prompt.
	Trigger string
}

// optionGroup matches the first bracketed or parenthesized group on a line.
var optionGroup = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

// NewPrompt builds a Prompt from a single already-extracted line.
func NewPrompt(line string, ctx SourceContext, cat *catalog.Catalog) *Prompt {
	line = utils.StripANSI(line)
	_, critical := cat.MatchCritical(line)
	trigger, _ := cat.MatchTrigger(line)
	return &Prompt{
		Text:           line,
		Context:        ctx,
		CriticalImpact: critical,
		Responses:      extractResponses(line),
		Trigger:        trigger,
	}
}

// Extract inspects a captured terminal buffer and returns a Prompt for its
// last non-empty line, or ok=false when that line is not a prompt at all.
//
// Not-a-prompt is distinct from Abort: no trigger phrase means there is
// nothing to decide, while Abort means a human must answer.
func Extract(buffer string, cat *catalog.Catalog) (*Prompt, bool) {
	buffer = utils.SanitizeCapture(buffer)

	line := lastNonEmptyLine(buffer)
	if line == "" {
		return nil, false
	}
	if _, ok := cat.MatchTrigger(line); !ok {
		return nil, false
	}

	return NewPrompt(line, InferContext(buffer), cat), true
}

// InferContext guesses the source context from recent terminal output.
func InferContext(recent string) SourceContext {
	lower := strings.ToLower(recent)
	switch {
	case strings.Contains(lower, "git commit") || strings.Contains(lower, "commit these changes"):
		return ContextGitCommit
	case strings.Contains(lower, "code review") || strings.Contains(lower, "reviewing"):
		return ContextCodeReview
	case strings.Contains(lower, "error") || strings.Contains(lower, "traceback") || strings.Contains(lower, "diagnos"):
		return ContextDiagnostics
	case strings.Contains(lower, "initializ") || strings.Contains(lower, "installing") || strings.Contains(lower, "setting up"):
		return ContextInitialization
	default:
		return ContextGeneral
	}
}

func lastNonEmptyLine(buffer string) string {
	lines := strings.Split(buffer, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// extractResponses pulls option tokens from the first [...] or (...)
// group: the interior is split on "/" and each token trimmed.
func extractResponses(line string) []string {
	group := optionGroup.FindString(line)
	if group == "" {
		return nil
	}
	interior := group[1 : len(group)-1]

	var tokens []string
	for _, tok := range strings.Split(interior, "/") {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
