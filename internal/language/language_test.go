package language

import "testing"

func TestNormalizeTag(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"is-IS", "is-IS"},
		{"is", "is"},
		{" Icelandic ", "is-IS"},
		{"ENGLISH", "en"},
		{"nb-NO", "nb-NO"},
		{"norwegian", "nb-NO"},
	}
	for _, tc := range cases {
		got, err := NormalizeTag(tc.input)
		if err != nil {
			t.Fatalf("NormalizeTag(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeTag(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeTagRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "   ", "!!", "not a language"} {
		if _, err := NormalizeTag(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("is-IS"); got != "Icelandic (Iceland)" {
		t.Fatalf("DisplayName(is-IS) = %q", got)
	}
	if got := DisplayName("??"); got != "Unknown" {
		t.Fatalf("DisplayName(??) = %q", got)
	}
}
