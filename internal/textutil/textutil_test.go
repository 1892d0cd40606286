package textutil

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"<p>Learn <b>Go</b></p>", "Learn Go"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<script>alert(1)</script>hooks", "hooks"},
		{"  many\n\n spaces\t", "many spaces"},
	}
	for _, tc := range tests {
		if got := Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 60, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestHead(t *testing.T) {
	if got := Head("readme body", 6); got != "readme" {
		t.Errorf("Head = %q", got)
	}
}
