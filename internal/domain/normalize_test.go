package domain

import (
	"testing"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1-Critical", "1 - Critical"},
		{"1 -  Critical", "1 - Critical"},
		{"  2 - High ", "2 - High"},
		{"3Medium", "3 Medium"},
		{"Critical1", "Critical 1"},
		{"1-Critical   2-Medium", "1 - Critical 2 - Medium"},
		{"", ""},
		{"nan", ""},
		{"NaN", ""},
		{"None", ""},
	}

	for _, c := range cases {
		got := NormalizeLabel(c.in)
		if got != c.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeLabelIdempotent(t *testing.T) {
	inputs := []string{
		"1-Critical",
		"1 - Critical - 2 - Medium",
		"  3Medium  ",
		"4 -Low-3- Low",
		"already clean text",
		"",
	}

	for _, in := range inputs {
		once := NormalizeLabel(in)
		twice := NormalizeLabel(once)
		if once != twice {
			t.Errorf("NormalizeLabel not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCriticalityKey(t *testing.T) {
	got := CriticalityKey("1-Critical", "1-High")
	want := "1 - Critical - 1 - High"
	if got != want {
		t.Errorf("CriticalityKey = %q, want %q", got, want)
	}
}

func TestCriticalityKeyMissingSides(t *testing.T) {
	if got := CriticalityKey("", ""); got != "" {
		t.Errorf("expected empty key for missing inputs, got %q", got)
	}
	if got := CriticalityKey("nan", "nan"); got != "" {
		t.Errorf("expected empty key for nan inputs, got %q", got)
	}
	if got := CriticalityKey("1-Critical", ""); got != "1 - Critical" {
		t.Errorf("expected one-sided key, got %q", got)
	}
	if got := CriticalityKey("", "2-Medium"); got != "2 - Medium" {
		t.Errorf("expected one-sided key, got %q", got)
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Reset Password  "); got != "reset password" {
		t.Errorf("NormalizeText = %q", got)
	}
	if got := NormalizeText("nan"); got != "" {
		t.Errorf("expected empty for nan marker, got %q", got)
	}
}
