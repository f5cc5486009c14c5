package errors

import (
	"strings"
	"testing"
)

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "6f1c2a0e-7d1b-4a44-9c55-1f0f8f0b6a11", false},

		{"empty", "", true},
		{"path traversal", "../../etc/passwd", true},
		{"plain word", "github", true},
		{"null byte", "6f1c2a0e-7d1b-4a44-9c55-1f0f8f0b6a1\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateSessionID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "make the button red", false},
		{"valid multiline", "add a header\nand a footer", false},
		{"valid tab", "indent\tthis", false},

		{"empty", "", true},
		{"whitespace", "  \n\t ", true},
		{"too long", strings.Repeat("a", MaxPromptLength+1), true},
		{"control char", "foo\x01bar", true},
		{"code fence", "here ``` there", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrompt(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePrompt(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFrameWidth(t *testing.T) {
	tests := []struct {
		name    string
		width   float64
		wantErr bool
	}{
		{"positive", 400, false},
		{"fractional", 0.5, false},
		{"zero", 0, true},
		{"negative", -10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFrameWidth(tt.width)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFrameWidth(%v) error = %v, wantErr %v", tt.width, err, tt.wantErr)
			}
		})
	}
}
