package utils

import "testing"

func TestFormatSoles(t *testing.T) {
	cases := map[int64]string{
		2550:  "S/ 25.50",
		100:   "S/ 1.00",
		5:     "S/ 0.05",
		-2550: "-S/ 25.50",
	}
	for cents, want := range cases {
		if got := FormatSoles(cents); got != want {
			t.Fatalf("FormatSoles(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestParseSoles(t *testing.T) {
	cases := map[string]int64{
		"S/ 25.50": 2550,
		"25.5":     2550,
		"25":       2500,
		"s/100":    10000,
	}
	for in, want := range cases {
		got, err := ParseSoles(in)
		if err != nil {
			t.Fatalf("ParseSoles(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseSoles(%q) = %d, want %d", in, got, want)
		}
	}
	for _, bad := range []string{"", "abc", "1.234"} {
		if _, err := ParseSoles(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
