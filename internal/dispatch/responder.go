// Package dispatch performs the side effects the decision engine never
// does itself: running shell commands, invoking the assistant CLI, and
// surfacing escalated prompts to the human operator.
package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/termpilot/termpilot/internal/classify"
)

// Responder resolves prompts the classifier escalated. Implementations:
// TerminalResponder for interactive use, AutoApprove/AutoDeny for tests
// and unattended runs.
type Responder interface {
	// Resolve asks for a decision on an escalated prompt. The returned
	// outcome replaces the classifier's Abort; returning Abort again means
	// the prompt stays unanswered.
	Resolve(p *classify.Prompt) (classify.Outcome, error)
}

// AutoApprove answers every escalated prompt affirmatively. Test double;
// never use it against a real terminal.
type AutoApprove struct{}

// Resolve implements Responder.
func (AutoApprove) Resolve(*classify.Prompt) (classify.Outcome, error) {
	return classify.Outcome{Decision: classify.Yes, Reason: "auto-approve responder"}, nil
}

// AutoDeny answers every escalated prompt negatively.
type AutoDeny struct{}

// Resolve implements Responder.
func (AutoDeny) Resolve(*classify.Prompt) (classify.Outcome, error) {
	return classify.Outcome{Decision: classify.No, Reason: "auto-deny responder"}, nil
}

// TerminalResponder asks the human on the controlling terminal.
type TerminalResponder struct {
	In  io.Reader
	Out io.Writer
}

// Resolve implements Responder. Empty input leaves the prompt unanswered.
func (r *TerminalResponder) Resolve(p *classify.Prompt) (classify.Outcome, error) {
	options := "y/n/text"
	if len(p.Responses) > 0 {
		options = strings.Join(p.Responses, "/")
	}
	if _, err := fmt.Fprintf(r.Out, "escalated prompt: %s\nresponse [%s, empty to skip]: ", p.Text, options); err != nil {
		return classify.Outcome{}, fmt.Errorf("writing escalation prompt: %w", err)
	}

	line, err := bufio.NewReader(r.In).ReadString('\n')
	if err != nil && line == "" {
		return classify.Outcome{}, fmt.Errorf("reading escalation response: %w", err)
	}

	switch answer := strings.TrimSpace(strings.ToLower(line)); answer {
	case "":
		return classify.Outcome{Decision: classify.Abort, Reason: "operator skipped"}, nil
	case "y", "yes":
		return classify.Outcome{Decision: classify.Yes, Reason: "operator approved"}, nil
	case "n", "no":
		return classify.Outcome{Decision: classify.No, Reason: "operator declined"}, nil
	default:
		return classify.Outcome{Decision: classify.Custom, Text: strings.TrimSpace(line), Reason: "operator response"}, nil
	}
}
