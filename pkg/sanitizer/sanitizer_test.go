package sanitizer

import (
	"reflect"
	"testing"
)

func TestSanitizeCityOrLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "convert to lowercase",
			input: "MUMBAI",
			want:  "mumbai",
		},
		{
			name:  "spaces become underscores",
			input: "New Delhi",
			want:  "new_delhi",
		},
		{
			name:  "trim whitespace",
			input: "  Chennai  ",
			want:  "chennai",
		},
		{
			name:  "collapse repeated separators",
			input: "Navi -- Mumbai",
			want:  "navi_mumbai",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "---   ",
			want:  "",
		},
		{
			name:  "idempotent",
			input: "new_delhi",
			want:  "new_delhi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeCityOrLabel(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeCityOrLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameOrAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps digits",
			input: "Terminal 2",
			want:  "terminal_2",
		},
		{
			name:  "strips punctuation",
			input: "Gate B-14, Pier A",
			want:  "gate_b_14_pier_a",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeNameOrAddress(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeNameOrAddress(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "deduplicates after normalization",
			input: []string{"Mumbai", "mumbai", "MUMBAI"},
			want:  []string{"mumbai"},
		},
		{
			name:  "drops empty values",
			input: []string{"Delhi", "", "  ", "Goa"},
			want:  []string{"delhi", "goa"},
		},
		{
			name:  "empty input",
			input: []string{},
			want:  []string{},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSlice(tt.input, SanitizeCityOrLabel)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeSlice(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
