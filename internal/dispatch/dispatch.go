package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/termpilot/termpilot/internal/classify"
	"github.com/termpilot/termpilot/internal/route"
)

// ErrEscalated is returned when a prompt stays unanswered after
// escalation.
var ErrEscalated = errors.New("prompt escalated to operator and left unanswered")

// Result holds the result of running a command.
type Result struct {
	// ExitCode is the command's exit code.
	ExitCode int `json:"exit_code"`
	// Output is the combined stdout/stderr.
	Output string `json:"output"`
	// Duration is the execution time.
	Duration time.Duration `json:"duration"`
}

// ShellRunner executes shell-routed instructions locally.
type ShellRunner struct {
	// Timeout bounds each command; zero means no bound.
	Timeout time.Duration
	// LogDir receives per-command output logs; empty disables them.
	LogDir string
	// Logger defaults to log.Default.
	Logger *log.Logger
}

// Run parses the instruction into argv and executes it, capturing
// combined output. The command inherits the caller's environment.
func (r *ShellRunner) Run(ctx context.Context, instruction string) (*Result, error) {
	argv, err := shellwords.Parse(instruction)
	if err != nil {
		return nil, fmt.Errorf("parsing command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else if ctx.Err() != nil {
			return nil, fmt.Errorf("running command: %w", ctx.Err())
		} else {
			return nil, fmt.Errorf("running command: %w", runErr)
		}
	}

	result := &Result{ExitCode: exitCode, Output: buf.String(), Duration: duration}
	if err := r.writeLog(instruction, result); err != nil {
		r.logger().Warn("writing command log failed", "err", err)
	}
	return result, nil
}

func (r *ShellRunner) writeLog(instruction string, res *Result) error {
	if r.LogDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.LogDir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	name := fmt.Sprintf("cmd-%s.log", time.Now().UTC().Format("20060102-150405.000000000"))
	f, err := os.OpenFile(filepath.Join(r.LogDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening command log: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "command: %s\nexit_code: %d\nduration: %s\n\n%s", instruction, res.ExitCode, res.Duration, res.Output)
	return nil
}

func (r *ShellRunner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// AssistantRunner hands an instruction to the coding assistant CLI as a
// subprocess.
type AssistantRunner struct {
	// Command is the assistant binary, e.g. "claude".
	Command string
	// Args are fixed arguments placed before the instruction.
	Args []string
}

// Send invokes the assistant with the instruction as the final argument.
func (r *AssistantRunner) Send(ctx context.Context, instruction string) (*Result, error) {
	if r.Command == "" {
		return nil, fmt.Errorf("assistant command is not configured")
	}

	start := time.Now()
	args := append(append([]string(nil), r.Args...), instruction)
	cmd := exec.CommandContext(ctx, r.Command, args...)
	cmd.Env = os.Environ()

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	runErr := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("invoking assistant: %w", runErr)
		}
	}

	return &Result{ExitCode: exitCode, Output: buf.String(), Duration: duration}, nil
}

// Dispatcher ties routing targets and classification outcomes to their
// side effects.
type Dispatcher struct {
	Shell     *ShellRunner
	Assistant *AssistantRunner
	Responder Responder
}

// Dispatch executes an instruction according to its routing result.
func (d *Dispatcher) Dispatch(ctx context.Context, instruction string, res route.Result) (*Result, error) {
	switch res.Target {
	case route.ShellCommand:
		return d.Shell.Run(ctx, instruction)
	case route.AssistantTask:
		return d.Assistant.Send(ctx, instruction)
	default:
		return nil, fmt.Errorf("unknown routing target %v", res.Target)
	}
}

// Answer converts a classification outcome into the response text to key
// into the terminal. Abort outcomes are resolved through the Responder;
// if the prompt stays unanswered, Answer returns ErrEscalated.
func (d *Dispatcher) Answer(p *classify.Prompt, o classify.Outcome) (string, error) {
	if o.Decision == classify.Abort {
		if d.Responder == nil {
			return "", ErrEscalated
		}
		resolved, err := d.Responder.Resolve(p)
		if err != nil {
			return "", fmt.Errorf("resolving escalation: %w", err)
		}
		o = resolved
	}

	switch o.Decision {
	case classify.Yes:
		return "y", nil
	case classify.No:
		return "n", nil
	case classify.Custom:
		return o.Text, nil
	default:
		return "", ErrEscalated
	}
}
