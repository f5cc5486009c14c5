package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxPromptLength bounds user prompts forwarded to the text model.
const MaxPromptLength = 4000

// ValidateSessionID validates a session identifier before it is used as a
// storage key (file name, redis key, document id).
//
// Session IDs are issued by the service as UUIDs; anything else is rejected so
// that a client cannot address files outside the session directory.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid session id %q", id)
	}
	return nil
}

// ValidatePrompt validates a free-text user prompt.
//
// Validation rules:
//   - Prompt cannot be empty or whitespace only
//   - Maximum length of MaxPromptLength bytes
//   - No control characters other than newline and tab
//   - No code fences, which would terminate the generated DSL block early
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return New(ErrCodeInvalidInput, "prompt cannot be empty")
	}

	if len(prompt) > MaxPromptLength {
		return New(ErrCodeInvalidInput, "prompt too long (max %d characters)", MaxPromptLength)
	}

	for _, r := range prompt {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "prompt contains invalid control characters")
		}
	}

	if strings.Contains(prompt, "```") {
		return New(ErrCodeInvalidInput, "prompt cannot contain code fences")
	}

	return nil
}

// ValidateFrameWidth validates the width of a denormalization frame.
func ValidateFrameWidth(width float64) error {
	if width <= 0 {
		return New(ErrCodeInvalidInput, "frame width must be positive, got %g", width)
	}
	return nil
}
