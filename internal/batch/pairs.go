package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// WordPair is one minimal pair read from the input file
type WordPair struct {
	Left  string
	Right string
}

// ReadResult holds the parsed pairs together with the number of rows
// that were dropped because they did not contain exactly two words
type ReadResult struct {
	Pairs   []WordPair
	Skipped int
}

// ReadPairsFile reads word pairs from a CSV file.
// Supported rows:
//   - "ba,pa" - a pair
//   - "ba" or "ba,pa,ta" - wrong field count, skipped
//   - "ba," - empty word, skipped
//
// When skipHeader is true the first row is dropped before parsing.
func ReadPairsFile(filename string, skipHeader bool) (*ReadResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read pairs file: %w", err)
	}
	defer file.Close()

	return ReadPairs(file, skipHeader)
}

// ReadPairs parses CSV rows from r into word pairs
func ReadPairs(r io.Reader, skipHeader bool) (*ReadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Row length is checked below
	reader.LazyQuotes = true

	result := &ReadResult{}
	first := true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse pairs file: %w", err)
		}

		if first {
			first = false
			if skipHeader {
				continue
			}
		}

		pair, ok := parseRecord(record)
		if !ok {
			result.Skipped++
			continue
		}
		result.Pairs = append(result.Pairs, pair)
	}

	return result, nil
}

func parseRecord(record []string) (WordPair, bool) {
	if len(record) != 2 {
		return WordPair{}, false
	}

	left := strings.TrimSpace(record[0])
	right := strings.TrimSpace(record[1])
	if left == "" || right == "" {
		return WordPair{}, false
	}

	return WordPair{Left: left, Right: right}, true
}
