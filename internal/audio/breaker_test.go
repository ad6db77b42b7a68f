package audio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/minpairs/internal/testutil"
)

func TestBreakerProviderOpensAfterConsecutiveFailures(t *testing.T) {
	dir := t.TempDir()
	mock := testutil.NewMockProvider()
	mock.FailAll = errors.New("service unavailable")

	provider := NewBreakerProvider(mock, 3, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := provider.GenerateAudio(ctx, "ba", filepath.Join(dir, "ba.mp3"))
		if err == nil || errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("Call %d: expected backend error, got %v", i+1, err)
		}
	}

	err := provider.GenerateAudio(ctx, "pa", filepath.Join(dir, "pa.mp3"))
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("Expected ErrBackendUnavailable, got %v", err)
	}
	if mock.CallCount("pa") != 0 {
		t.Errorf("Expected open circuit to skip the backend, got %d calls", mock.CallCount("pa"))
	}
	if err := provider.IsAvailable(); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("IsAvailable() = %v, want ErrBackendUnavailable", err)
	}
}

func TestBreakerProviderSuccessResetsCount(t *testing.T) {
	dir := t.TempDir()
	mock := testutil.NewMockProvider()
	mock.Errors["bad"] = errors.New("rejected")

	provider := NewBreakerProvider(mock, 2, zerolog.Nop())
	ctx := context.Background()

	texts := []string{"bad", "ok", "bad", "ok", "bad"}
	for _, text := range texts {
		err := provider.GenerateAudio(ctx, text, filepath.Join(dir, text+".mp3"))
		if errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("Circuit opened although failures were not consecutive")
		}
	}

	if provider.Name() != "mock" {
		t.Errorf("Name() = %s, want mock", provider.Name())
	}
	if len(mock.Calls) != len(texts) {
		t.Errorf("Expected %d calls, got %d", len(texts), len(mock.Calls))
	}
}
