package testutil

import (
	"context"
	"os"
)

// MockMP3 is a minimal MP3 frame header used as fake audio
var MockMP3 = []byte{0xFF, 0xFB, 0x90, 0x00, 0x00, 0x00, 0x00, 0x00}

// MockProvider mocks a speech synthesis backend. It records every text it
// was asked to speak and writes Data to the output file.
type MockProvider struct {
	ProviderName string
	Data         []byte
	Errors       map[string]error // Per-text failures
	FailAll      error            // Returned for every text when set
	PartialWrite bool             // Write a partial file before failing
	Unavailable  error            // Returned by IsAvailable
	Calls        []string
}

// NewMockProvider creates a mock provider that always succeeds
func NewMockProvider() *MockProvider {
	return &MockProvider{
		ProviderName: "mock",
		Errors:       make(map[string]error),
	}
}

// GenerateAudio mocks speech synthesis
func (m *MockProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	m.Calls = append(m.Calls, text)

	err := m.FailAll
	if e, ok := m.Errors[text]; ok {
		err = e
	}
	if err == nil {
		err = ctx.Err()
	}

	if err != nil {
		if m.PartialWrite {
			_ = os.WriteFile(outputFile, []byte("partial"), 0644)
		}
		return err
	}

	data := m.Data
	if len(data) == 0 {
		data = MockMP3
	}
	return os.WriteFile(outputFile, data, 0644)
}

// Name returns the mock provider name
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// IsAvailable returns Unavailable
func (m *MockProvider) IsAvailable() error {
	return m.Unavailable
}

// CallCount returns how often text was synthesized
func (m *MockProvider) CallCount(text string) int {
	count := 0
	for _, call := range m.Calls {
		if call == text {
			count++
		}
	}
	return count
}
