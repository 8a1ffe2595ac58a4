package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "non-positive limit hides the value",
			input:  "Senior Go engineer",
			limit:  0,
			expect: "",
		},
		{
			name:   "short description is kept",
			input:  "Go, AWS",
			limit:  10,
			expect: "Go, AWS",
		},
		{
			name:   "long description is cut",
			input:  "We are looking for a Python developer",
			limit:  14,
			expect: "We are looking...",
		},
		{
			name:   "surrounding whitespace is ignored",
			input:  "\n  Kubernetes operator  \n",
			limit:  10,
			expect: "Kubernetes...",
		},
		{
			name:   "cut happens on runes",
			input:  "Разработчик Go",
			limit:  11,
			expect: "Разработчик...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
