package audio

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateText validates that the input text can be sent to a backend
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	if !utf8.ValidString(text) {
		return fmt.Errorf("text must be valid UTF-8")
	}

	return nil
}
