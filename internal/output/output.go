// Package output implements consistent formatted output for termpilot.
// JSON output uses snake_case keys.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"
	"golang.org/x/term"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// TextRenderer lets a payload provide its own text rendering. Payloads
// without one are rendered as YAML in text mode.
type TextRenderer interface {
	RenderText(styled bool) string
}

// Writer handles formatted output.
type Writer struct {
	format Format
	out    io.Writer
	errOut io.Writer
	styled bool
}

// Option configures the Writer.
type Option func(*Writer)

// WithOutput sets the standard output writer.
func WithOutput(w io.Writer) Option {
	return func(wr *Writer) {
		wr.out = w
		wr.styled = false
	}
}

// WithErrorOutput sets the error output writer.
func WithErrorOutput(w io.Writer) Option {
	return func(wr *Writer) {
		wr.errOut = w
	}
}

// New creates a new output writer. Styling is enabled only when writing
// text to a terminal.
func New(format Format, opts ...Option) *Writer {
	w := &Writer{
		format: format,
		out:    os.Stdout,
		errOut: os.Stderr,
		styled: term.IsTerminal(int(os.Stdout.Fd())),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs data in the configured format.
func (w *Writer) Write(data any) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		if r, ok := data.(TextRenderer); ok {
			_, err := fmt.Fprintln(w.out, r.RenderText(w.styled))
			return err
		}
		// Fall back to YAML for structured payloads in text mode.
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("encoding text: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

// WriteError outputs an error payload to the error stream, in the
// configured format.
func (w *Writer) WriteError(code, message string) error {
	payload := map[string]string{
		"error":   code,
		"message": message,
	}
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.errOut)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case FormatYAML:
		enc := yaml.NewEncoder(w.errOut)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintf(w.errOut, "%s: %s\n", code, message)
		return err
	}
}

// Decision outcome styles used by text renderers.
var (
	StyleYes    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	StyleNo     = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	StyleAbort  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	StyleMuted  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	StyleHeader = lipgloss.NewStyle().Bold(true).Underline(true)
)

// StyleFor returns the lipgloss style for a decision/target string.
func StyleFor(outcome string) lipgloss.Style {
	switch outcome {
	case "yes", "shell":
		return StyleYes
	case "no", "custom", "assistant":
		return StyleNo
	default:
		return StyleAbort
	}
}

// Render applies style to s when styled is true, otherwise returns s.
func Render(style lipgloss.Style, s string, styled bool) string {
	if !styled {
		return s
	}
	return style.Render(s)
}
