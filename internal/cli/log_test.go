package cli

import (
	"strings"
	"testing"
	"time"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2026-08-01", want: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2026-08-01T10:30:00Z", want: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)},
		{in: "yesterday", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseSince(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSince(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseSince(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogViewRenderText(t *testing.T) {
	empty := logView{}
	if got := empty.RenderText(false); got != "no decisions recorded" {
		t.Fatalf("empty log view = %q", got)
	}

	view := logView{Decisions: []logEntryView{
		{Kind: "prompt", Input: "Do you want to proceed? [y/n]", Outcome: "yes", CreatedAt: "2026-08-23T10:00:00Z"},
		{Kind: "route", Input: "git status", Outcome: "shell", CreatedAt: "2026-08-23T10:00:01Z"},
	}}
	got := view.RenderText(false)
	if !strings.Contains(got, "prompt") || !strings.Contains(got, "Do you want to proceed? [y/n]") {
		t.Errorf("render missing prompt entry: %q", got)
	}
	if !strings.Contains(got, "route") || !strings.Contains(got, "git status") {
		t.Errorf("render missing route entry: %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("render should not end with a newline: %q", got)
	}
}

func TestClassifyViewRenderText(t *testing.T) {
	notPrompt := classifyView{IsPrompt: false}
	if got := notPrompt.RenderText(false); !strings.Contains(got, "not a prompt") {
		t.Fatalf("non-prompt view = %q", got)
	}

	view := classifyView{
		Input:             "Do you want to create a CLAUDE.md file? [y/n]",
		IsPrompt:          true,
		Decision:          "yes",
		Rule:              "create a claude.md",
		Reason:            "auto-approve pattern",
		PossibleResponses: []string{"y", "n"},
	}
	got := view.RenderText(false)
	if !strings.Contains(got, "yes") || !strings.Contains(got, "auto-approve pattern") {
		t.Errorf("render missing decision: %q", got)
	}
	if !strings.Contains(got, `"create a claude.md"`) {
		t.Errorf("render missing rule: %q", got)
	}
	if !strings.Contains(got, "options: [y n]") {
		t.Errorf("render missing responses: %q", got)
	}
}
