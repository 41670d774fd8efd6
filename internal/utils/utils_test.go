package utils

import (
	"testing"

	"github.com/charmbracelet/log"
)

func TestStripANSI(t *testing.T) {
	in := "\x1b[1;32mDo you want to proceed?\x1b[0m [y/n]"
	got := StripANSI(in)
	want := "Do you want to proceed? [y/n]"
	if got != want {
		t.Fatalf("StripANSI(%q) = %q, want %q", in, got, want)
	}
}

func TestSanitizeCapture(t *testing.T) {
	in := "line1\r\nline2\x07\tend\x1b[2J"
	got := SanitizeCapture(in)
	want := "line1\nline2\tend"
	if got != want {
		t.Fatalf("SanitizeCapture(%q) = %q, want %q", in, got, want)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"", log.InfoLevel},
		{"WARN", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"bogus", log.InfoLevel},
	}

	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
