package errors

import (
	"strings"
	"unicode"
)

// Limits applied to identifiers and labels in input graphs.
const (
	MaxIDLength    = 256
	MaxLabelLength = 4096
)

// ValidateID validates a node or group identifier.
//
// The rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 256 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id %q contains control characters", kind, id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "%s id %q has surrounding whitespace", kind, id)
	}

	return nil
}

// ValidateLabel validates display text. Newlines and tabs are allowed,
// other control characters are not.
func ValidateLabel(kind, label string) error {
	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "%s label too long (max %d characters)", kind, MaxLabelLength)
	}

	for _, r := range label {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s label contains invalid control characters", kind)
		}
	}

	return nil
}
