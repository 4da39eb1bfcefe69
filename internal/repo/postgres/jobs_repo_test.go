package postgres

import "testing"

// Listing input has to match literally: a keyword like "100%" must only hit
// rows whose text contains "100%", never act as a wildcard.
func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "engineer", want: "engineer"},
		{name: "percent", in: "100%", want: `100\%`},
		{name: "underscore", in: "c_level", want: `c\_level`},
		{name: "backslash", in: `path\to`, want: `path\\to`},
		{name: "mixed", in: `50%_\`, want: `50\%\_\\`},
		{name: "empty", in: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := escapeLike(tc.in); got != tc.want {
				t.Fatalf("escapeLike(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
