package utils

import "testing"

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"bearer abc.def.ghi", ""},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
		{"Bearer one two", ""},
	}

	for _, tt := range tests {
		if got := ExtractTokenFromHeader(tt.header); got != tt.want {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
