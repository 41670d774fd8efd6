// Package route decides whether a free-text instruction is a shell
// command or a task for the coding assistant.
package route

import (
	"fmt"
	"strings"

	"github.com/termpilot/termpilot/internal/catalog"
)

// Target is the closed set of routing targets.
//
// ShellCommand is the zero value: an instruction that looks like nothing
// in particular is executed literally, never silently handed to the
// assistant.
type Target int

const (
	// ShellCommand routes the instruction to a local shell.
	ShellCommand Target = iota
	// AssistantTask routes the instruction to the coding assistant.
	AssistantTask
)

// String returns the string representation of a Target.
func (t Target) String() string {
	switch t {
	case ShellCommand:
		return "shell"
	case AssistantTask:
		return "assistant"
	default:
		return "unknown"
	}
}

// ParseTarget converts a stored string back to a Target.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "shell":
		return ShellCommand, nil
	case "assistant":
		return AssistantTask, nil
	default:
		return ShellCommand, fmt.Errorf("unknown routing target %q", s)
	}
}

// Result carries the routing target plus the rule that produced it.
type Result struct {
	Target Target
	// Rule is the matched prefix or keyword, empty for the shell default.
	Rule string
	// Reason is a short explanation for the audit trail.
	Reason string
}

// Route classifies one free-text instruction. Pure and total: every
// instruction maps to exactly one target.
//
// Order: assistant-intent prefix first, then the "how to" + code keyword
// rule, then the shell default.
func Route(instruction string, cat *catalog.Catalog) Result {
	if prefix, ok := cat.MatchPrefix(instruction); ok {
		return Result{Target: AssistantTask, Rule: prefix, Reason: "assistant-intent prefix"}
	}

	if strings.Contains(strings.ToLower(instruction), "how to") {
		if keyword, ok := cat.MatchKeyword(instruction); ok {
			return Result{Target: AssistantTask, Rule: keyword, Reason: "how-to question with code keyword"}
		}
	}

	return Result{Target: ShellCommand, Reason: "no assistant intent detected"}
}

// Session is the caller-level routing mode for one terminal session.
// While assistant mode is on, every instruction routes to the assistant
// regardless of the pure routing rules. The flag lives here, on the
// session, never inside Route.
type Session struct {
	ID            string
	AssistantMode bool
}

// Route applies the session override on top of the pure router.
func (s *Session) Route(instruction string, cat *catalog.Catalog) Result {
	if s != nil && s.AssistantMode {
		return Result{Target: AssistantTask, Reason: "session in assistant mode"}
	}
	return Route(instruction, cat)
}
