package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const defaultESpeakSpeed = 130

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Voice     string // Voice variant (e.g., "vi", "vi+m1", "vi+f1")
	Speed     int    // Speech speed in words per minute
	Pitch     int    // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int    // Volume/amplitude, 0 to 200 (default: 100)
}

// DefaultESpeakConfig returns the default configuration for Vietnamese
func DefaultESpeakConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Voice:     "vi",
		Speed:     defaultESpeakSpeed,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeak provides an interface to the espeak-ng text-to-speech engine
type ESpeak struct {
	config *ESpeakConfig
}

// NewESpeak creates a new ESpeak instance with the given configuration
func NewESpeak(config *ESpeakConfig) (*ESpeak, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}

	return &ESpeak{config: normalizeESpeakConfig(config)}, nil
}

// GenerateWAV writes a WAV file spoken by espeak-ng
func (e *ESpeak) GenerateWAV(ctx context.Context, text string, outputFile string) error {
	cmd := exec.CommandContext(ctx, "espeak-ng", e.args(text, outputFile)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &BackendError{
			Provider: ProviderESpeak,
			Details:  fmt.Sprintf("espeak-ng failed: %v: %s", err, strings.TrimSpace(string(output))),
		}
	}

	return nil
}

// GenerateMP3 generates an MP3 file by converting espeak-ng output with ffmpeg
func (e *ESpeak) GenerateMP3(ctx context.Context, text string, outputFile string) error {
	tempWAV := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_temp.wav"
	defer os.Remove(tempWAV)

	if err := e.GenerateWAV(ctx, text, tempWAV); err != nil {
		return err
	}

	return convertWAVToMP3(ctx, tempWAV, outputFile)
}

func (e *ESpeak) args(text, outputFile string) []string {
	return []string{
		"-v", e.config.Voice,
		"-s", fmt.Sprintf("%d", e.config.Speed),
		"-p", fmt.Sprintf("%d", e.config.Pitch),
		"-a", fmt.Sprintf("%d", e.config.Amplitude),
		"-w", outputFile,
		text,
	}
}

func normalizeESpeakConfig(config *ESpeakConfig) *ESpeakConfig {
	defaults := DefaultESpeakConfig()
	if config == nil {
		return defaults
	}

	out := *config
	if out.Voice == "" {
		out.Voice = defaults.Voice
	}
	if out.Speed < 80 || out.Speed > 450 {
		out.Speed = defaults.Speed
	}
	if out.Pitch <= 0 || out.Pitch > 99 {
		out.Pitch = defaults.Pitch
	}
	if out.Amplitude <= 0 || out.Amplitude > 200 {
		out.Amplitude = defaults.Amplitude
	}
	return &out
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

func checkFFmpegInstalled() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}
	return nil
}

// convertWAVToMP3 converts a WAV file to MP3 using ffmpeg
func convertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	if err := checkFFmpegInstalled(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-loglevel", "error", "-i", wavFile, "-acodec", "mp3", "-y", mp3File)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &BackendError{
			Provider: ProviderESpeak,
			Details:  fmt.Sprintf("ffmpeg conversion failed: %v: %s", err, strings.TrimSpace(string(output))),
		}
	}

	return nil
}
