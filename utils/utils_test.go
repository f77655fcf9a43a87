package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhone10(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"9876543210", true},
		{"98765-43210", true},
		{"(987) 654 3210", true},
		{"987654321", false},
		{"+919876543210", false},
		{"98765abcde", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidatePhone10(tt.in), tt.in)
	}
}

func TestPhone10Tag(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidators(v))

	type req struct {
		Phone string `validate:"required,phone10"`
	}
	assert.NoError(t, v.Struct(req{Phone: "9876543210"}))
	assert.Error(t, v.Struct(req{Phone: "12345"}))
}

func TestParseUserAgent(t *testing.T) {
	browser, os, device := ParseUserAgent("")
	assert.Equal(t, "Unknown Browser", browser)
	assert.Equal(t, "Unknown OS", os)
	assert.Equal(t, "Unknown Device", device)

	chrome := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	browser, os, device = ParseUserAgent(chrome)
	assert.Equal(t, "Chrome", browser)
	assert.Equal(t, "Windows", os)
	assert.Equal(t, "Desktop", device)
	assert.Equal(t, "Chrome on Windows (Desktop)", DescribeDevice(chrome))
}
