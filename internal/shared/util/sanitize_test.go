package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"deck.pdf":          "deck.pdf",
		" dir/deck.pdf ":    "dir_deck.pdf",
		`win\path\a.pdf`:    "win_path_a.pdf",
		"q\"uote\".pdf":     "q_uote_.pdf",
		"line\r\nbreak.pdf": "linebreak.pdf",
		"café.pdf":          "café.pdf",
	}
	for in, want := range cases {
		got, err := SanitizeFileName(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %q, got %q", in, want, got)
		}
	}
	for _, bad := range []string{"", "   ", "../etc/passwd", "\x00\t"} {
		if _, err := SanitizeFileName(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
