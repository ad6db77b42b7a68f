package audio

import (
	"fmt"
	"math/rand"
)

// Voices each backend picks from when none are configured
var defaultVoices = map[string][]string{
	ProviderAzure:  {"vi-VN-HoaiMyNeural", "vi-VN-NamMinhNeural"},
	ProviderOpenAI: {"alloy", "ash", "ballad", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer", "verse"},
	ProviderGemini: {"Kore", "Puck", "Charon", "Aoede"},
	ProviderESpeak: {"vi", "vi+m1", "vi+f1"},
}

// DefaultVoices returns the voice set of a provider
func DefaultVoices(provider string) []string {
	voices := defaultVoices[provider]
	out := make([]string, len(voices))
	copy(out, voices)
	return out
}

// ChooseVoice picks one voice at random. It is called once at startup so
// that all audio of a run is spoken by the same voice.
func ChooseVoice(voices []string, rnd *rand.Rand) (string, error) {
	if len(voices) == 0 {
		return "", fmt.Errorf("no voices to choose from")
	}
	return voices[rnd.Intn(len(voices))], nil
}
