package processor

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/minpairs/internal/audio"
	"codeberg.org/snonux/minpairs/internal/batch"
	"codeberg.org/snonux/minpairs/internal/deck"
)

// AudioSource resolves a text to an audio file path below prefix
type AudioSource interface {
	Synthesize(ctx context.Context, text, prefix string) (string, error)
}

// FailedPair is a pair left out of the deck because audio for one of its
// words could not be produced
type FailedPair struct {
	Pair batch.WordPair
	Err  error
}

// Expansion is the result of expanding word pairs into card records
type Expansion struct {
	Records []deck.CardRecord
	Media   []string // distinct audio paths in first-use order
	Failed  []FailedPair
}

// Expander turns word pairs into card records, two per pair. Within one
// Expander every text is synthesized at most once.
type Expander struct {
	source AudioSource
	logger zerolog.Logger
	paths  map[string]string
	errs   map[string]error
}

// NewExpander creates an expander drawing audio from source
func NewExpander(source AudioSource, logger zerolog.Logger) *Expander {
	return &Expander{
		source: source,
		logger: logger,
		paths:  make(map[string]string),
		errs:   make(map[string]error),
	}
}

// Expand processes pairs in order, left word before right word. Each pair
// yields a record with the left word as answer followed by one with the
// right word as answer. A pair whose audio fails is skipped and listed in
// Failed. Expansion stops with an error when ctx is done or the backend is
// unavailable; the returned Expansion then holds the pairs done so far.
func (e *Expander) Expand(ctx context.Context, pairs []batch.WordPair, prefix string) (*Expansion, error) {
	exp := &Expansion{
		Records: make([]deck.CardRecord, 0, 2*len(pairs)),
	}
	seen := make(map[string]bool)
	addMedia := func(path string) {
		if !seen[path] {
			seen[path] = true
			exp.Media = append(exp.Media, path)
		}
	}

	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return exp, err
		}

		log := e.logger.With().Int("pair", i+1).Str("left", pair.Left).Str("right", pair.Right).Logger()

		leftAudio, err := e.resolve(ctx, pair.Left, prefix)
		if err == nil {
			var rightAudio string
			rightAudio, err = e.resolve(ctx, pair.Right, prefix)
			if err == nil {
				exp.Records = append(exp.Records,
					deck.CardRecord{
						Left: pair.Left, Right: pair.Right, Correct: pair.Left,
						LeftAudio: leftAudio, RightAudio: rightAudio, CorrectAudio: leftAudio,
					},
					deck.CardRecord{
						Left: pair.Left, Right: pair.Right, Correct: pair.Right,
						LeftAudio: leftAudio, RightAudio: rightAudio, CorrectAudio: rightAudio,
					},
				)
				addMedia(leftAudio)
				addMedia(rightAudio)
				log.Debug().Msg("Pair expanded")
				continue
			}
		}

		if fatal(ctx, err) {
			return exp, err
		}
		log.Warn().Err(err).Msg("Skipping pair")
		exp.Failed = append(exp.Failed, FailedPair{Pair: pair, Err: err})
	}

	return exp, nil
}

// resolve returns the memoised result for text or asks the source
func (e *Expander) resolve(ctx context.Context, text, prefix string) (string, error) {
	key := prefix + "\x00" + text
	if path, ok := e.paths[key]; ok {
		return path, nil
	}
	if err, ok := e.errs[key]; ok {
		return "", err
	}

	path, err := e.source.Synthesize(ctx, text, prefix)
	if err != nil {
		// Cancellation says nothing about the text itself
		if !audio.IsCancelled(err) && ctx.Err() == nil {
			e.errs[key] = err
		}
		return "", err
	}
	e.paths[key] = path
	return path, nil
}

// fatal reports whether err ends the whole expansion. Timeouts of single
// requests only cost their pair.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, audio.ErrBackendUnavailable)
}
