package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Synthesizer returns audio files for texts, calling the provider only
// when the cache has no file for the text yet
type Synthesizer struct {
	provider Provider
	cache    Cache
	logger   zerolog.Logger
}

// NewSynthesizer creates a synthesizer. A nil cache uses the file system.
func NewSynthesizer(provider Provider, cache Cache, logger zerolog.Logger) *Synthesizer {
	if cache == nil {
		cache = NewFileCache()
	}
	return &Synthesizer{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// NewCheckedSynthesizer fails when provider reports itself unusable, then
// guards it with a circuit breaker tripping after maxFailures errors in a row.
func NewCheckedSynthesizer(provider Provider, maxFailures int, cache Cache, logger zerolog.Logger) (*Synthesizer, error) {
	if err := provider.IsAvailable(); err != nil {
		return nil, fmt.Errorf("%s backend not available: %w", provider.Name(), err)
	}
	return NewSynthesizer(NewBreakerProvider(provider, maxFailures, logger), cache, logger), nil
}

// Synthesize returns the path of an audio file containing speech for text.
// A cached file is returned as is. On failure any file written at the
// path is removed and a *SynthesisError is returned; nothing is retried.
func (s *Synthesizer) Synthesize(ctx context.Context, text, prefix string) (string, error) {
	if err := ValidateText(text); err != nil {
		return "", err
	}

	if path, ok := s.cache.Lookup(prefix, text); ok {
		s.logger.Debug().Str("text", text).Str("path", path).Msg("Audio cache hit")
		return path, nil
	}

	path := s.cache.Path(prefix, text)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create audio directory: %w", err)
		}
	}

	if err := s.provider.GenerateAudio(ctx, text, path); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove partial audio file")
		}

		synthErr := newSynthesisError(ctx, text, s.provider.Name(), err)
		event := s.logger.Error().Err(err).
			Str("text", text).
			Str("provider", synthErr.Provider).
			Stringer("reason", synthErr.Reason)
		if details := synthErr.Details(); details != "" {
			event = event.Str("details", details)
		}
		event.Msg("Speech synthesis failed")
		return "", synthErr
	}

	s.logger.Info().Str("text", text).Str("path", path).Msg("Speech synthesized")
	return path, nil
}
