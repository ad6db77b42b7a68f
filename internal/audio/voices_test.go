package audio

import (
	"math/rand"
	"testing"
)

func TestDefaultVoices(t *testing.T) {
	azure := DefaultVoices(ProviderAzure)
	want := []string{"vi-VN-HoaiMyNeural", "vi-VN-NamMinhNeural"}
	if len(azure) != len(want) {
		t.Fatalf("Expected %d Azure voices, got %d", len(want), len(azure))
	}
	for i := range want {
		if azure[i] != want[i] {
			t.Errorf("Voice %d = %s, want %s", i, azure[i], want[i])
		}
	}

	// Callers get a copy
	azure[0] = "changed"
	if DefaultVoices(ProviderAzure)[0] != want[0] {
		t.Error("DefaultVoices returned shared slice")
	}

	for _, provider := range []string{ProviderOpenAI, ProviderGemini, ProviderESpeak} {
		if len(DefaultVoices(provider)) == 0 {
			t.Errorf("No default voices for %s", provider)
		}
	}
}

func TestChooseVoice(t *testing.T) {
	voices := DefaultVoices(ProviderAzure)
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 20; i++ {
		voice, err := ChooseVoice(voices, rnd)
		if err != nil {
			t.Fatalf("ChooseVoice() error = %v", err)
		}
		if voice != voices[0] && voice != voices[1] {
			t.Errorf("ChooseVoice() = %s, not in %v", voice, voices)
		}
	}

	// Same seed, same choice
	a, _ := ChooseVoice(voices, rand.New(rand.NewSource(7)))
	b, _ := ChooseVoice(voices, rand.New(rand.NewSource(7)))
	if a != b {
		t.Errorf("Expected deterministic choice for equal seeds, got %s and %s", a, b)
	}

	if _, err := ChooseVoice(nil, rnd); err == nil {
		t.Error("Expected error for empty voice list")
	}
}
