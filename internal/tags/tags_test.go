package tags

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"UI", "UI."},
		{"UI.", "UI."},
		{"UI。。", "UI."},
		{"#UI。。", "UI."},
		{"＃モデリング．", "モデリング."},
		{"motion。", "motion."},
		{"  Branding  ", "Branding."},
		{"# spaced", "spaced."},
		{"", ""},
		{"   ", ""},
		{".", ""},
		{"。．.", ""},
		{"#", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"#UI。。", "motion。", "UI.", "", "   ", "＃タグ．", "a.b.c"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"#UI", "motion。", "", "  ", "UI"})
	want := []string{"UI.", "motion.", "UI."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeAll = %v, want %v", got, want)
	}

	// Duplicates survive, order is preserved.
	got = NormalizeAll([]string{"b", "a", "b"})
	want = []string{"b.", "a.", "b."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeAll = %v, want %v", got, want)
	}
}
