package route

import (
	"testing"

	"github.com/termpilot/termpilot/internal/catalog"
)

func TestRoute(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name        string
		instruction string
		want        Target
	}{
		{"explain prefix", "explain how this function works", AssistantTask},
		{"refactor prefix", "refactor the session handler", AssistantTask},
		{"fix bug prefix", "fix bug in the watcher debounce", AssistantTask},
		{"add comments prefix", "add comments to main.go", AssistantTask},
		{"uppercase prefix", "EXPLAIN this regex", AssistantTask},
		{"how to with keyword", "how to implement a function for binary search", AssistantTask},
		{"how to with api keyword", "tell me how to call the github api", AssistantTask},
		{"how to without keyword", "how to get to the airport", ShellCommand},
		{"git status", "git status", ShellCommand},
		{"ls", "ls -la", ShellCommand},
		{"keyword without how to", "cat function.go", ShellCommand},
		{"empty", "", ShellCommand},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Route(tc.instruction, cat)
			if got.Target != tc.want {
				t.Errorf("Route(%q) = %v (%s), want %v", tc.instruction, got.Target, got.Reason, tc.want)
			}
		})
	}
}

func TestRoute_Deterministic(t *testing.T) {
	cat := catalog.Default()
	first := Route("summarize the diff", cat)
	for i := 0; i < 5; i++ {
		if got := Route("summarize the diff", cat); got != first {
			t.Fatalf("routing is not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestSession_AssistantModeOverride(t *testing.T) {
	cat := catalog.Default()
	s := &Session{ID: "s1", AssistantMode: true}

	// Even a plain shell command routes to the assistant in assistant mode.
	if got := s.Route("git status", cat); got.Target != AssistantTask {
		t.Fatalf("assistant mode: Route(git status) = %v, want AssistantTask", got.Target)
	}

	s.AssistantMode = false
	if got := s.Route("git status", cat); got.Target != ShellCommand {
		t.Fatalf("normal mode: Route(git status) = %v, want ShellCommand", got.Target)
	}

	// A nil session falls back to the pure router.
	var nilSession *Session
	if got := nilSession.Route("git status", cat); got.Target != ShellCommand {
		t.Fatalf("nil session: Route(git status) = %v, want ShellCommand", got.Target)
	}
}

func TestTarget_StringRoundTrip(t *testing.T) {
	for _, target := range []Target{ShellCommand, AssistantTask} {
		parsed, err := ParseTarget(target.String())
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", target.String(), err)
		}
		if parsed != target {
			t.Fatalf("ParseTarget(%q) = %v, want %v", target.String(), parsed, target)
		}
	}
	if _, err := ParseTarget("bogus"); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}
