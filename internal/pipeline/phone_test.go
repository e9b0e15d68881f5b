package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"canonical mobile", "010-1234-5678", "010-1234-5678"},
		{"bare mobile", "01012345678", "010-1234-5678"},
		{"spaced mobile", " 010 1234 5678 ", "010-1234-5678"},
		{"dotted mobile", "010.1234.5678", "010-1234-5678"},
		{"international", "+821012345678", "010-1234-5678"},
		{"international with spaces", "+82 10-1234-5678", "010-1234-5678"},
		{"international with trunk zero", "+82 010 1234 5678", "010-1234-5678"},
		{"bare country code", "821012345678", "010-1234-5678"},
		{"bare country code landline", "82312345678", "031-234-5678"},
		{"missing leading zero", "1012345678", "010-1234-5678"},
		{"ten digits without zero", "1234567890", "012-3456-7890"},
		{"ten digit landline", "0311234567", "031-123-4567"},
		{"ten digit landline canonical", "031-123-4567", "031-123-4567"},
		{"too short", "12345", "12345"},
		{"too long", "010123456789", "010123456789"},
		{"text", "abc", "abc"},
		{"country code only", "+82", "+82"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizePhoneIsIdempotent(t *testing.T) {
	inputs := []string{
		"010-1234-5678",
		"01012345678",
		"+821012345678",
		"1234567890",
		"0311234567",
		"abc",
		"12345",
		"",
	}

	for _, input := range inputs {
		once := NormalizePhone(input)
		assert.Equal(t, once, NormalizePhone(once), "input %q", input)
	}
}
