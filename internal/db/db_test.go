package db

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppendAndListDecisions(t *testing.T) {
	db := openTestDB(t)

	entries := []*Decision{
		{Kind: KindPrompt, Input: "Clear all settings? [y/n]", Outcome: "no", Rule: "clear all settings"},
		{Kind: KindPrompt, Input: "Enter your API key:", Outcome: "abort", Rule: "api key"},
		{Kind: KindRoute, Input: "git status", Outcome: "shell"},
	}
	for _, e := range entries {
		if err := db.AppendDecision(e); err != nil {
			t.Fatalf("AppendDecision: %v", err)
		}
		if e.ID == "" {
			t.Fatalf("expected generated ID")
		}
	}

	got, err := db.ListDecisions(DecisionFilter{})
	if err != nil {
		t.Fatalf("ListDecisions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(got))
	}
	// Insertion order is preserved.
	for i, e := range entries {
		if got[i].Input != e.Input {
			t.Errorf("entry %d: got %q, want %q", i, got[i].Input, e.Input)
		}
	}
}

func TestListDecisions_Filters(t *testing.T) {
	db := openTestDB(t)

	old := time.Now().UTC().Add(-time.Hour)
	seed := []*Decision{
		{Kind: KindPrompt, Input: "a", Outcome: "abort", CreatedAt: old},
		{Kind: KindPrompt, Input: "b", Outcome: "yes", SessionID: "s1"},
		{Kind: KindRoute, Input: "c", Outcome: "shell", SessionID: "s1"},
	}
	for _, e := range seed {
		if err := db.AppendDecision(e); err != nil {
			t.Fatalf("AppendDecision: %v", err)
		}
	}

	byKind, err := db.ListDecisions(DecisionFilter{Kind: KindRoute})
	if err != nil {
		t.Fatalf("ListDecisions(kind): %v", err)
	}
	if len(byKind) != 1 || byKind[0].Input != "c" {
		t.Fatalf("kind filter: got %v", byKind)
	}

	byOutcome, err := db.ListDecisions(DecisionFilter{Outcome: "abort"})
	if err != nil {
		t.Fatalf("ListDecisions(outcome): %v", err)
	}
	if len(byOutcome) != 1 || byOutcome[0].Input != "a" {
		t.Fatalf("outcome filter: got %v", byOutcome)
	}

	bySession, err := db.ListDecisions(DecisionFilter{SessionID: "s1"})
	if err != nil {
		t.Fatalf("ListDecisions(session): %v", err)
	}
	if len(bySession) != 2 {
		t.Fatalf("session filter: expected 2, got %d", len(bySession))
	}

	since, err := db.ListDecisions(DecisionFilter{Since: time.Now().UTC().Add(-time.Minute)})
	if err != nil {
		t.Fatalf("ListDecisions(since): %v", err)
	}
	if len(since) != 2 {
		t.Fatalf("since filter: expected 2, got %d", len(since))
	}

	limited, err := db.ListDecisions(DecisionFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListDecisions(limit): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit filter: expected 1, got %d", len(limited))
	}
}

func TestAppendDecision_RejectsUnknownKind(t *testing.T) {
	db := openTestDB(t)
	if err := db.AppendDecision(&Decision{Kind: "bogus", Input: "x", Outcome: "yes"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestCountDecisions(t *testing.T) {
	db := openTestDB(t)

	for _, outcome := range []string{"abort", "abort", "yes", "shell"} {
		kind := KindPrompt
		if outcome == "shell" {
			kind = KindRoute
		}
		if err := db.AppendDecision(&Decision{Kind: kind, Input: "x", Outcome: outcome}); err != nil {
			t.Fatalf("AppendDecision: %v", err)
		}
	}

	counts, err := db.CountDecisions()
	if err != nil {
		t.Fatalf("CountDecisions: %v", err)
	}
	if counts["abort"] != 2 || counts["yes"] != 1 || counts["shell"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestGetDecision(t *testing.T) {
	db := openTestDB(t)

	d := &Decision{Kind: KindPrompt, Input: "x", Outcome: "abort"}
	if err := db.AppendDecision(d); err != nil {
		t.Fatalf("AppendDecision: %v", err)
	}

	got, err := db.GetDecision(d.ID)
	if err != nil {
		t.Fatalf("GetDecision: %v", err)
	}
	if got.Input != "x" || got.Outcome != "abort" {
		t.Fatalf("unexpected decision: %+v", got)
	}

	if _, err := db.GetDecision("missing"); !errors.Is(err, ErrDecisionNotFound) {
		t.Fatalf("expected ErrDecisionNotFound, got %v", err)
	}
}

func TestSessions_Lifecycle(t *testing.T) {
	db := openTestDB(t)

	s := &Session{Actor: "dev@laptop", Program: "claude", ProjectPath: "/repo"}
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID == "" {
		t.Fatalf("expected generated session ID")
	}

	// Duplicate active session for the same actor+project is rejected.
	dup := &Session{Actor: "dev@laptop", ProjectPath: "/repo"}
	if err := db.CreateSession(dup); !errors.Is(err, ErrActiveSessionExists) {
		t.Fatalf("expected ErrActiveSessionExists, got %v", err)
	}

	if err := db.SetSessionAssistantMode(s.ID, true); err != nil {
		t.Fatalf("SetSessionAssistantMode: %v", err)
	}
	got, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !got.AssistantMode {
		t.Fatalf("expected assistant mode on")
	}

	active, err := db.GetActiveSession("dev@laptop", "/repo")
	if err != nil {
		t.Fatalf("GetActiveSession: %v", err)
	}
	if active.ID != s.ID {
		t.Fatalf("expected active session %s, got %s", s.ID, active.ID)
	}

	if err := db.EndSession(s.ID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if _, err := db.GetActiveSession("dev@laptop", "/repo"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after end, got %v", err)
	}

	// Ending twice is not found.
	if err := db.EndSession(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second end, got %v", err)
	}

	// A new session for the same actor+project is allowed once the old one ended.
	if err := db.CreateSession(&Session{Actor: "dev@laptop", ProjectPath: "/repo"}); err != nil {
		t.Fatalf("CreateSession after end: %v", err)
	}
}

func TestMemLog_ConcurrentAppends(t *testing.T) {
	l := NewMemLog()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Append(&Decision{Kind: KindPrompt, Input: "x", Outcome: "abort"})
		}()
	}
	wg.Wait()

	if l.Len() != 32 {
		t.Fatalf("expected 32 entries, got %d", l.Len())
	}
	for _, e := range l.Entries() {
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("expected filled entry, got %+v", e)
		}
	}
}

func TestMemLog_AppendCopies(t *testing.T) {
	l := NewMemLog()
	d := &Decision{Kind: KindPrompt, Input: "original", Outcome: "abort"}
	if err := l.Append(d); err != nil {
		t.Fatalf("Append: %v", err)
	}

	d.Input = "mutated"
	if got := l.Entries()[0].Input; got != "original" {
		t.Fatalf("log entry was mutated after append: %q", got)
	}
}
