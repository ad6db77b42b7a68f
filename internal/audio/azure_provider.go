package audio

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"codeberg.org/snonux/minpairs/internal"
)

const azureEndpointFormat = "https://%s.tts.speech.microsoft.com/cognitiveservices/v1"

// AzureProvider implements Provider for the Azure Speech REST API
type AzureProvider struct {
	client   *http.Client
	config   *Config
	endpoint string
}

// NewAzureProvider creates a new Azure Speech provider
func NewAzureProvider(config *Config) (Provider, error) {
	if config.SpeechKey == "" || config.SpeechRegion == "" {
		return nil, fmt.Errorf("%w: SPEECH_KEY and SPEECH_REGION are required", ErrMissingCredentials)
	}

	endpoint := config.AzureEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf(azureEndpointFormat, config.SpeechRegion)
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultProviderConfig().RequestTimeout
	}

	return &AzureProvider{
		client:   &http.Client{Timeout: timeout},
		config:   config,
		endpoint: endpoint,
	}, nil
}

// GenerateAudio synthesizes text with the configured voice and writes the
// response body to outputFile
func (p *AzureProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	ssml, err := buildSSML(text, p.config.Voice)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(ssml))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", p.config.SpeechKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", p.outputFormat())
	req.Header.Set("User-Agent", "minpairs/"+internal.Version)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("Azure Speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		details := strings.TrimSpace(string(body))
		if details == "" {
			details = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			details += " (check the speech resource key and region)"
		}
		return &BackendError{Provider: p.Name(), StatusCode: resp.StatusCode, Details: details}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	if written == 0 {
		return &BackendError{Provider: p.Name(), Details: "no audio data received"}
	}

	return nil
}

// Name returns the provider name
func (p *AzureProvider) Name() string {
	return ProviderAzure
}

// IsAvailable checks that credentials are configured
func (p *AzureProvider) IsAvailable() error {
	if p.config.SpeechKey == "" || p.config.SpeechRegion == "" {
		return fmt.Errorf("%w: Azure Speech key or region not configured", ErrMissingCredentials)
	}
	return nil
}

func (p *AzureProvider) outputFormat() string {
	if p.config.OutputFormat != "" {
		return p.config.OutputFormat
	}
	return DefaultProviderConfig().OutputFormat
}

// buildSSML wraps text in a speak/voice document for voice
func buildSSML(text, voice string) (string, error) {
	if voice == "" {
		return "", fmt.Errorf("no voice selected")
	}

	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return "", fmt.Errorf("failed to escape text: %w", err)
	}

	return fmt.Sprintf(
		`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s"><voice name="%s">%s</voice></speak>`,
		voiceLocale(voice), voice, escaped.String()), nil
}

// voiceLocale extracts "vi-VN" from "vi-VN-HoaiMyNeural"
func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}
