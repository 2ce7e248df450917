package utils

import (
	"testing"
)

func TestParseReleaseYear(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"2021-09-15", 2021},
		{"1984-12-14", 1984},
		{"1999", 1999},
		{"", 2000},
		{"   ", 2000},
		{"unknown", 2000},
		{"-05-16", 2000},
		{"0000-01-01", 2000},
	}

	for _, tc := range cases {
		if got := ParseReleaseYear(tc.in); got != tc.want {
			t.Errorf("ParseReleaseYear(%q) = %d，期望 %d", tc.in, got, tc.want)
		}
	}
}
