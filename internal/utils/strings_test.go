package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "REGULAR",
			expected: []string{"REGULAR"},
		},
		{
			name:     "two values",
			input:    "REGULAR, PREMIUM",
			expected: []string{"REGULAR", "PREMIUM"},
		},
		{
			name:     "varied spacing",
			input:    "REGULAR,  MIDGRADE , PREMIUM",
			expected: []string{"REGULAR", "MIDGRADE", "PREMIUM"},
		},
		{
			name:     "no spaces after comma",
			input:    "CIGARETTE,TOBACCO",
			expected: []string{"CIGARETTE", "TOBACCO"},
		},
		{
			name:     "trailing comma",
			input:    "DIESEL,",
			expected: []string{"DIESEL"},
		},
		{
			name:     "leading comma",
			input:    ",GROCERY",
			expected: []string{"GROCERY"},
		},
		{
			name:     "only spaces",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "comma only",
			input:    ",",
			expected: nil,
		},
		{
			name:     "multiple commas",
			input:    ",,BEER,,DELI,,",
			expected: []string{"BEER", "DELI"},
		},
		{
			name:     "value with internal spaces preserved",
			input:    "INSIDE SALES, LOTTERY",
			expected: []string{"INSIDE SALES", "LOTTERY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCSV(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseCSV_PreservesInput(t *testing.T) {
	input := "REGULAR, PREMIUM"
	originalInput := input

	_ = ParseCSV(input)

	assert.Equal(t, originalInput, input, "input should not be modified")
}
