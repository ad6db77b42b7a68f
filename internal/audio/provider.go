package audio

import (
	"context"
	"fmt"
	"time"
)

// Supported synthesis backends
const (
	ProviderAzure  = "azure"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderESpeak = "espeak"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio generates audio from text and saves it to the specified file
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds the synthesis configuration. It is built once at startup
// and passed to the provider; the voice stays fixed for the whole run.
type Config struct {
	Provider string // Provider name: "azure", "openai", "gemini" or "espeak"
	Voice    string // Voice chosen once per run, see ChooseVoice

	// Azure Speech settings
	SpeechKey     string
	SpeechRegion  string
	AzureEndpoint string // Overrides the regional endpoint when set
	OutputFormat  string // X-Microsoft-OutputFormat value

	// OpenAI settings
	OpenAIKey     string
	OpenAIModel   string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAISpeed   float64 // 0.25 to 4.0
	OpenAIBaseURL string

	// Gemini settings
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string

	// Consecutive backend failures before the circuit opens
	MaxConsecutiveFailures int

	// RequestTimeout bounds a single HTTP synthesis request
	RequestTimeout time.Duration
}

// IsKnownProvider reports whether name is a supported backend
func IsKnownProvider(name string) bool {
	switch name {
	case ProviderAzure, ProviderOpenAI, ProviderGemini, ProviderESpeak:
		return true
	}
	return false
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:               ProviderAzure,
		OutputFormat:           "audio-24khz-48kbitrate-mono-mp3",
		OpenAIModel:            "tts-1-hd",
		OpenAISpeed:            1.0,
		GeminiModel:            "gemini-2.5-flash-preview-tts",
		MaxConsecutiveFailures: 3,
		RequestTimeout:         60 * time.Second,
	}
}

// NewProvider creates the appropriate audio provider based on configuration.
// Missing credentials are reported as ErrMissingCredentials.
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case ProviderAzure:
		return NewAzureProvider(config)
	case ProviderOpenAI:
		return NewOpenAIProvider(config)
	case ProviderGemini:
		return NewGeminiProvider(context.Background(), config)
	case ProviderESpeak:
		return NewESpeakProvider(&ESpeakConfig{Voice: config.Voice, Speed: defaultESpeakSpeed})
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}
