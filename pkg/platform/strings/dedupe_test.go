package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "broker list with spaces and repeats",
			input:    []string{" kafka-1:9092 ", "kafka-2:9092", "kafka-1:9092", ""},
			expected: []string{"kafka-1:9092", "kafka-2:9092"},
		},
		{
			name:     "whitespace-only entries removed",
			input:    []string{"  ", "a", " "},
			expected: []string{"a"},
		},
		{
			name:     "order preserved",
			input:    []string{"c", "a", "b", "a"},
			expected: []string{"c", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
