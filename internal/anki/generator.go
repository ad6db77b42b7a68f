package anki

import (
	"encoding/csv"
	"fmt"
	"os"

	"codeberg.org/snonux/minpairs/internal/deck"
)

// GeneratorOptions configures the CSV export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Include the field names as first row
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "anki_import.csv",
		IncludeHeaders: true,
	}
}

// Generator exports a deck as a CSV file for Anki's text importer. The
// audio files have to be copied into Anki's media folder separately.
type Generator struct {
	options *GeneratorOptions
	deck    *deck.Deck
}

// NewGenerator creates a new CSV generator for d
func NewGenerator(d *deck.Deck, options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{
		options: options,
		deck:    d,
	}
}

// GenerateCSV writes one row per record with the fields in note type order
func (g *Generator) GenerateCSV() error {
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	if err := g.writeRecords(csv.NewWriter(file)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (g *Generator) writeRecords(writer *csv.Writer) error {
	if g.options.IncludeHeaders {
		if err := writer.Write(deck.Fields); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for _, record := range g.deck.Records() {
		if err := writer.Write(record.FieldValues()); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteCSV exports d to path with a header row
func WriteCSV(d *deck.Deck, path string) error {
	options := DefaultGeneratorOptions()
	options.OutputPath = path
	return NewGenerator(d, options).GenerateCSV()
}
