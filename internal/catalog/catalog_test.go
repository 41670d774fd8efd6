package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_MatchRequireUser(t *testing.T) {
	c := Default()

	tests := []struct {
		text  string
		match bool
	}{
		{"Enter your API key:", true},
		{"Please provide your PASSWORD", true},
		{"Delete file server.js? [y/n]", true},
		{"Overwrite existing config? (y/n)", true},
		{"git push --force to origin?", true},
		{"Do you want to create a CLAUDE.md file? [y/n]", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			_, ok := c.MatchRequireUser(tc.text)
			if ok != tc.match {
				t.Errorf("MatchRequireUser(%q) = %v, want %v", tc.text, ok, tc.match)
			}
		})
	}
}

func TestDefault_MatchIsCaseInsensitive(t *testing.T) {
	c := Default()
	if _, ok := c.MatchAutoApprove("DO YOU WANT TO CREATE A CLAUDE.MD FILE?"); !ok {
		t.Fatalf("expected case-insensitive auto-approve match")
	}
	if _, ok := c.MatchCritical("This change is PERMANENT."); !ok {
		t.Fatalf("expected case-insensitive critical match")
	}
}

func TestMatchPrefix_AnchoredAtStart(t *testing.T) {
	c := Default()
	if _, ok := c.MatchPrefix("explain how this works"); !ok {
		t.Fatalf("expected prefix match at start")
	}
	// "explain" in the middle of the instruction is not a prefix.
	if _, ok := c.MatchPrefix("please explain how this works"); ok {
		t.Fatalf("prefix must be anchored at the start")
	}
}

func TestNew_CopiesAndNormalizes(t *testing.T) {
	src := []string{"  ERASE ", ""}
	c := New(Groups{AutoDecline: src})

	// Mutating the caller's slice must not affect the catalog.
	src[0] = "keep everything"
	if _, ok := c.MatchAutoDecline("erase all data"); !ok {
		t.Fatalf("expected normalized pattern to survive caller mutation")
	}

	g := c.Groups()
	if len(g.AutoDecline) != 1 || g.AutoDecline[0] != "erase" {
		t.Fatalf("expected trimmed lowercase pattern, got %v", g.AutoDecline)
	}
}

func TestExtend_PreservesBuiltinOrder(t *testing.T) {
	c := Default().Extend(Groups{AutoDecline: []string{"discard draft"}})

	g := c.Groups()
	if g.AutoDecline[0] != "clear all settings" {
		t.Fatalf("builtin patterns must keep their position, got %v", g.AutoDecline)
	}
	if _, ok := c.MatchAutoDecline("Discard draft?"); !ok {
		t.Fatalf("expected extended pattern to match")
	}

	// Extend must not mutate the source catalog.
	if _, ok := Default().MatchAutoDecline("Discard draft?"); ok {
		t.Fatalf("Extend mutated the default catalog")
	}
}

func TestExportTOML_RoundTrip(t *testing.T) {
	doc, err := Default().ExportTOML()
	if err != nil {
		t.Fatalf("ExportTOML: %v", err)
	}
	if !strings.Contains(doc, "require_user") {
		t.Fatalf("expected require_user key in export, got:\n%s", doc)
	}

	path := filepath.Join(t.TempDir(), "catalog.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := loaded.MatchRequireUser("enter your api key"); !ok {
		t.Fatalf("round-tripped catalog lost require-user patterns")
	}
}

func TestLoadFile_PartialFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	content := "auto_decline = [\"wipe cache\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := c.MatchAutoDecline("wipe cache now?"); !ok {
		t.Fatalf("expected file pattern to match")
	}
	if _, ok := c.MatchAutoDecline("clear all settings?"); ok {
		t.Fatalf("auto_decline group was overridden; builtin should be gone")
	}
	if _, ok := c.MatchRequireUser("enter your api key"); !ok {
		t.Fatalf("groups absent from the file must fall back to defaults")
	}
}
