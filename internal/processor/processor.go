package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/minpairs/internal"
	"codeberg.org/snonux/minpairs/internal/anki"
	"codeberg.org/snonux/minpairs/internal/batch"
	"codeberg.org/snonux/minpairs/internal/cli"
	"codeberg.org/snonux/minpairs/internal/deck"
)

// ErrPairsFailed is returned when the package was written but some pairs
// had to be left out
var ErrPairsFailed = errors.New("some pairs could not be synthesized")

// Processor runs the pipeline from an input file to an Anki package
type Processor struct {
	flags  *cli.Flags
	source AudioSource
	logger zerolog.Logger
	out    io.Writer
}

// NewProcessor creates a processor drawing audio from source
func NewProcessor(flags *cli.Flags, source AudioSource, logger zerolog.Logger) *Processor {
	return &Processor{
		flags:  flags,
		source: source,
		logger: logger,
		out:    os.Stdout,
	}
}

// SetOutput redirects the run summary, which goes to stdout by default
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// AudioPrefix returns the path prefix of the audio files for inputFile
func (p *Processor) AudioPrefix(inputFile string) string {
	dir := p.flags.CacheDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, internal.SanitizeFilename(internal.BaseName(inputFile)))
}

// ProcessFile reads the pairs from inputFile, synthesizes their audio and
// writes minimal_pairs_<name>.apkg to the working directory. The returned
// path is set whenever a package was written, including when some pairs
// failed and ErrPairsFailed is returned.
func (p *Processor) ProcessFile(ctx context.Context, inputFile string) (string, error) {
	result, err := batch.ReadPairsFile(inputFile, p.flags.SkipHeader)
	if err != nil {
		return "", err
	}

	log := p.logger.With().Str("input", inputFile).Logger()
	log.Info().Int("pairs", len(result.Pairs)).Int("skipped_rows", result.Skipped).Msg("Read word pairs")

	expansion, err := NewExpander(p.source, p.logger).Expand(ctx, result.Pairs, p.AudioPrefix(inputFile))
	if err != nil {
		return "", fmt.Errorf("expansion aborted after %d cards: %w", len(expansion.Records), err)
	}

	d := deck.Assemble(deck.NameFor(inputFile), expansion.Records)

	outputPath := deck.PackageFileName(inputFile)
	if err := anki.NewAPKGGenerator(d).GenerateAPKG(outputPath); err != nil {
		return "", err
	}
	log.Info().Str("package", outputPath).Int("cards", d.Len()).Msg("Package written")

	if p.flags.CSV {
		csvPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".csv"
		if err := anki.WriteCSV(d, csvPath); err != nil {
			return outputPath, fmt.Errorf("failed to write CSV: %w", err)
		}
		fmt.Fprintf(p.out, "CSV export created: %s\n", csvPath)
	}

	p.printSummary(result, expansion, outputPath)

	if len(expansion.Failed) > 0 {
		return outputPath, fmt.Errorf("%w: %d of %d", ErrPairsFailed, len(expansion.Failed), len(result.Pairs))
	}
	return outputPath, nil
}

func (p *Processor) printSummary(result *batch.ReadResult, expansion *Expansion, outputPath string) {
	fmt.Fprintf(p.out, "\n=== Minimal Pairs Summary ===\n")
	fmt.Fprintf(p.out, "Pairs read: %d\n", len(result.Pairs))
	if result.Skipped > 0 {
		fmt.Fprintf(p.out, "Rows skipped: %d\n", result.Skipped)
	}
	fmt.Fprintf(p.out, "Cards: %d\n", len(expansion.Records))
	fmt.Fprintf(p.out, "Audio files: %d\n", len(expansion.Media))
	if len(expansion.Failed) > 0 {
		fmt.Fprintf(p.out, "Failed pairs: %d\n", len(expansion.Failed))
		for _, f := range expansion.Failed {
			fmt.Fprintf(p.out, "  %s / %s: %v\n", f.Pair.Left, f.Pair.Right, f.Err)
		}
	}
	fmt.Fprintf(p.out, "Anki package created: %s\n", outputPath)
	fmt.Fprintf(p.out, "=============================\n")
}
