package audio

import (
	"errors"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"latin word", "ba", false},
		{"vietnamese with tone marks", "mã", false},
		{"phrase", "xin chào", false},
		{"empty string", "", true},
		{"whitespace only", " \t ", true},
		{"invalid utf8", string([]byte{0xff, 0xfe}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if !errors.Is(ValidateText(""), ErrEmptyText) {
		t.Error("Expected ErrEmptyText for empty input")
	}
}
