package cli

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGetOutput_Precedence(t *testing.T) {
	t.Cleanup(func() { flagJSON = false; flagOutput = "" })

	flagJSON = false
	flagOutput = ""
	cfg.General.Output = "text"
	if got := GetOutput(); got != "text" {
		t.Fatalf("GetOutput() = %q, want text", got)
	}

	cfg.General.Output = "yaml"
	if got := GetOutput(); got != "yaml" {
		t.Fatalf("config output: GetOutput() = %q, want yaml", got)
	}

	flagOutput = "json"
	if got := GetOutput(); got != "json" {
		t.Fatalf("flag output: GetOutput() = %q, want json", got)
	}

	flagOutput = "yaml"
	flagJSON = true
	if got := GetOutput(); got != "json" {
		t.Fatalf("--json shorthand must win, got %q", got)
	}
}

func TestGetDB_Precedence(t *testing.T) {
	t.Cleanup(func() { flagDB = ""; cfg.General.DBPath = "" })

	flagDB = ""
	cfg.General.DBPath = ""
	if got := GetDB(); !strings.HasSuffix(got, filepath.Join(".termpilot", "state.db")) {
		t.Fatalf("default GetDB() = %q, want project-local path", got)
	}

	cfg.General.DBPath = "/tmp/custom.db"
	if got := GetDB(); got != "/tmp/custom.db" {
		t.Fatalf("config GetDB() = %q, want /tmp/custom.db", got)
	}

	flagDB = "/tmp/flag.db"
	if got := GetDB(); got != "/tmp/flag.db" {
		t.Fatalf("flag GetDB() = %q, want /tmp/flag.db", got)
	}
}

func TestGetActor_Fallback(t *testing.T) {
	t.Cleanup(func() { flagActor = ""; cfg.General.Actor = "" })

	flagActor = ""
	cfg.General.Actor = ""
	t.Setenv("TERMPILOT_ACTOR", "")
	t.Setenv("USER", "alice")
	if got := GetActor(); !strings.HasPrefix(got, "alice@") {
		t.Fatalf("GetActor() = %q, want alice@<host>", got)
	}

	flagActor = "bot-7"
	if got := GetActor(); got != "bot-7" {
		t.Fatalf("flag GetActor() = %q, want bot-7", got)
	}
}
