package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/minpairs/internal/audio"
	"codeberg.org/snonux/minpairs/internal/batch"
	"codeberg.org/snonux/minpairs/internal/testutil"
)

// sourceFunc adapts a function to AudioSource
type sourceFunc func(ctx context.Context, text, prefix string) (string, error)

func (f sourceFunc) Synthesize(ctx context.Context, text, prefix string) (string, error) {
	return f(ctx, text, prefix)
}

func newTestExpander(t *testing.T, provider audio.Provider) (*Expander, string) {
	t.Helper()
	synth := audio.NewSynthesizer(provider, nil, zerolog.Nop())
	return NewExpander(synth, zerolog.Nop()), filepath.Join(t.TempDir(), "list")
}

func pairs(words ...string) []batch.WordPair {
	var out []batch.WordPair
	for i := 0; i+1 < len(words); i += 2 {
		out = append(out, batch.WordPair{Left: words[i], Right: words[i+1]})
	}
	return out
}

func TestExpandTwoPairs(t *testing.T) {
	mock := testutil.NewMockProvider()
	exp, prefix := newTestExpander(t, mock)

	result, err := exp.Expand(context.Background(), pairs("ba", "pa", "ta", "da"), prefix)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if len(result.Records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(result.Records))
	}

	expected := []struct{ left, right, correct string }{
		{"ba", "pa", "ba"},
		{"ba", "pa", "pa"},
		{"ta", "da", "ta"},
		{"ta", "da", "da"},
	}
	for i, want := range expected {
		r := result.Records[i]
		if r.Left != want.left || r.Right != want.right || r.Correct != want.correct {
			t.Errorf("record %d = %s/%s correct %s, want %s/%s correct %s",
				i, r.Left, r.Right, r.Correct, want.left, want.right, want.correct)
		}
		if r.CorrectAudio != audio.AssetPath(prefix, want.correct) {
			t.Errorf("record %d CorrectAudio = %s", i, r.CorrectAudio)
		}
		if r.LeftAudio != audio.AssetPath(prefix, want.left) || r.RightAudio != audio.AssetPath(prefix, want.right) {
			t.Errorf("record %d has wrong pair audio", i)
		}
	}

	wantMedia := []string{
		audio.AssetPath(prefix, "ba"),
		audio.AssetPath(prefix, "pa"),
		audio.AssetPath(prefix, "ta"),
		audio.AssetPath(prefix, "da"),
	}
	if fmt.Sprint(result.Media) != fmt.Sprint(wantMedia) {
		t.Errorf("Media = %v, want %v", result.Media, wantMedia)
	}

	wantCalls := []string{"ba", "pa", "ta", "da"}
	if fmt.Sprint(mock.Calls) != fmt.Sprint(wantCalls) {
		t.Errorf("synthesis order = %v, want %v", mock.Calls, wantCalls)
	}
	if len(result.Failed) != 0 {
		t.Errorf("Expected no failed pairs, got %v", result.Failed)
	}
}

func TestExpandCardinality(t *testing.T) {
	words := []string{"ba", "pa", "ta", "da", "ka", "ga", "ma", "na", "la", "ra"}

	for n := 0; n <= len(words)/2; n++ {
		t.Run(fmt.Sprintf("%d pairs", n), func(t *testing.T) {
			exp, prefix := newTestExpander(t, testutil.NewMockProvider())

			result, err := exp.Expand(context.Background(), pairs(words[:2*n]...), prefix)
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if len(result.Records) != 2*n {
				t.Errorf("Expected %d records, got %d", 2*n, len(result.Records))
			}
		})
	}
}

func TestExpandMemoisesTexts(t *testing.T) {
	mock := testutil.NewMockProvider()
	exp, prefix := newTestExpander(t, mock)

	result, err := exp.Expand(context.Background(), pairs("ba", "pa", "ba", "ta", "pa", "ba"), prefix)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if len(result.Records) != 6 {
		t.Errorf("Expected 6 records, got %d", len(result.Records))
	}
	for _, word := range []string{"ba", "pa", "ta"} {
		if got := mock.CallCount(word); got != 1 {
			t.Errorf("%s synthesized %d times, want 1", word, got)
		}
	}
	if len(result.Media) != 3 {
		t.Errorf("Expected 3 media files, got %d", len(result.Media))
	}
}

func TestExpandIdenticalWords(t *testing.T) {
	mock := testutil.NewMockProvider()
	exp, prefix := newTestExpander(t, mock)

	result, err := exp.Expand(context.Background(), pairs("ba", "ba"), prefix)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if len(result.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(result.Records))
	}
	if mock.CallCount("ba") != 1 {
		t.Errorf("ba synthesized %d times, want 1", mock.CallCount("ba"))
	}
	if result.Records[0].CorrectAudio != result.Records[1].CorrectAudio {
		t.Error("identical words should share one audio file")
	}
}

func TestExpandSkipsFailedPairs(t *testing.T) {
	mock := testutil.NewMockProvider()
	mock.Errors["pa"] = errors.New("backend rejected text")
	exp, prefix := newTestExpander(t, mock)

	result, err := exp.Expand(context.Background(), pairs("ba", "pa", "ta", "da", "pa", "ma"), prefix)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if len(result.Records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(result.Records))
	}
	if result.Records[0].Correct != "ta" || result.Records[1].Correct != "da" {
		t.Errorf("unexpected records %+v", result.Records)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("Expected 2 failed pairs, got %d", len(result.Failed))
	}

	var synthErr *audio.SynthesisError
	if !errors.As(result.Failed[0].Err, &synthErr) || synthErr.Text != "pa" {
		t.Errorf("failed pair error = %v", result.Failed[0].Err)
	}

	// Failures are remembered for the run
	if got := mock.CallCount("pa"); got != 1 {
		t.Errorf("pa attempted %d times, want 1", got)
	}
	if got := mock.CallCount("ma"); got != 0 {
		t.Errorf("ma attempted %d times after its pair failed on pa", got)
	}

	// ba was synthesized before its pair failed; it is not part of the deck
	for _, path := range result.Media {
		if path == audio.AssetPath(prefix, "ba") {
			t.Error("media of a failed pair listed")
		}
	}
}

func TestExpandAbortsWhenBackendUnavailable(t *testing.T) {
	mock := testutil.NewMockProvider()
	mock.FailAll = errors.New("service unavailable")
	provider := audio.NewBreakerProvider(mock, 2, zerolog.Nop())
	exp, prefix := newTestExpander(t, provider)

	result, err := exp.Expand(context.Background(), pairs("ba", "pa", "ta", "da", "ka", "ga"), prefix)
	if !errors.Is(err, audio.ErrBackendUnavailable) {
		t.Fatalf("Expand() error = %v, want ErrBackendUnavailable", err)
	}

	if len(mock.Calls) != 2 {
		t.Errorf("backend called %d times, want 2", len(mock.Calls))
	}
	if len(result.Failed) != 2 {
		t.Errorf("Expected 2 failed pairs before abort, got %d", len(result.Failed))
	}
	if len(result.Records) != 0 {
		t.Errorf("Expected no records, got %d", len(result.Records))
	}
}

func TestExpandCancelled(t *testing.T) {
	mock := testutil.NewMockProvider()
	exp, prefix := newTestExpander(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := exp.Expand(ctx, pairs("ba", "pa"), prefix)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expand() error = %v, want context.Canceled", err)
	}
	if len(mock.Calls) != 0 || len(result.Records) != 0 {
		t.Errorf("work done after cancellation: %d calls, %d records", len(mock.Calls), len(result.Records))
	}
}

func TestExpandCancelledDuringSynthesis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls []string
	source := sourceFunc(func(ctx context.Context, text, prefix string) (string, error) {
		calls = append(calls, text)
		if text == "ta" {
			cancel()
			return "", ctx.Err()
		}
		return prefix + "_" + text + ".mp3", nil
	})

	result, err := NewExpander(source, zerolog.Nop()).Expand(ctx, pairs("ba", "pa", "ta", "da", "ka", "ga"), "list")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expand() error = %v, want context.Canceled", err)
	}

	if len(result.Records) != 2 {
		t.Errorf("Expected the 2 records of the first pair, got %d", len(result.Records))
	}
	if len(result.Failed) != 0 {
		t.Errorf("cancelled pair should not be listed as failed: %v", result.Failed)
	}
	if fmt.Sprint(calls) != "[ba pa ta]" {
		t.Errorf("calls = %v", calls)
	}
}

func TestExpandSkipsPairOnBackendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "slow") {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.Write([]byte("ID3 audio"))
	}))
	defer server.Close()

	provider, err := audio.NewAzureProvider(&audio.Config{
		SpeechKey:      "key",
		SpeechRegion:   "westeurope",
		AzureEndpoint:  server.URL,
		Voice:          "vi-VN-HoaiMyNeural",
		RequestTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewAzureProvider() error = %v", err)
	}
	exp, prefix := newTestExpander(t, provider)

	result, err := exp.Expand(context.Background(), pairs("slow", "pa", "ta", "da"), prefix)
	if err != nil {
		t.Fatalf("Expand() error = %v, a request timeout must not end the run", err)
	}

	if len(result.Failed) != 1 || result.Failed[0].Pair.Left != "slow" {
		t.Fatalf("Failed = %v, want the slow pair", result.Failed)
	}
	if audio.IsCancelled(result.Failed[0].Err) {
		t.Errorf("timeout classified as cancellation: %v", result.Failed[0].Err)
	}
	if len(result.Records) != 2 || result.Records[0].Correct != "ta" || result.Records[1].Correct != "da" {
		t.Errorf("Records = %+v, want the ta/da pair", result.Records)
	}
}
