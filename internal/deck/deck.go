package deck

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"codeberg.org/snonux/minpairs/internal"
	"codeberg.org/snonux/minpairs/internal/phonetic"
)

// Fixed identities. Anki recognises a re-imported package as the same
// deck and note type only while these stay unchanged.
const (
	DeckID    int64 = 2059400110
	ModelID   int64 = 1607392319
	ModelName       = "Minimal Pair Training"
)

// Field names of the note type, in order
const (
	FieldAudio      = "Audio"
	FieldWordLeft   = "Word_Left"
	FieldWordRight  = "Word_Right"
	FieldCorrect    = "Correct_Word"
	FieldAudioLeft  = "Audio_Left"
	FieldAudioRight = "Audio_Right"
)

// Fields is the note type field layout. CardRecord.FieldValues returns
// values in the same order.
var Fields = []string{
	FieldAudio,
	FieldWordLeft,
	FieldWordRight,
	FieldCorrect,
	FieldAudioLeft,
	FieldAudioRight,
}

// Template is a card template of the note type
type Template struct {
	Name  string
	Front string
	Back  string
}

// CardTemplate plays the correct word and asks which of the two it was
var CardTemplate = Template{
	Name:  "Card 1",
	Front: `{{Audio}}<hr>{{Word_Left}} VS {{Word_Right}}`,
	Back: `{{FrontSide}}

<hr id="answer">

<div class="correct">{{Correct_Word}}</div>
<div class="pair">
<span class="word">{{Word_Left}} {{Audio_Left}}</span>
<span class="word">{{Word_Right}} {{Audio_Right}}</span>
</div>`,
}

// CSS styles the cards
const CSS = `.card {
  font-family: Arial, sans-serif;
  font-size: 28px;
  text-align: center;
  color: #333;
  background-color: white;
}

.correct {
  font-size: 36px;
  font-weight: bold;
  color: #c0392b;
  margin: 20px 0;
}

.pair .word {
  margin: 0 20px;
  color: #7f8c8d;
}`

var textPolicy = bluemonday.StrictPolicy()

// CardRecord is one quiz direction of a word pair: the audio of Correct is
// played and the learner picks between Left and Right
type CardRecord struct {
	Left         string
	Right        string
	Correct      string
	LeftAudio    string
	RightAudio   string
	CorrectAudio string
}

// FieldValues returns the note fields in Fields order. Words are
// sanitised for HTML and audio paths become [sound:] references.
func (r CardRecord) FieldValues() []string {
	return []string{
		SoundTag(r.CorrectAudio),
		textPolicy.Sanitize(r.Left),
		textPolicy.Sanitize(r.Right),
		textPolicy.Sanitize(r.Correct),
		SoundTag(r.LeftAudio),
		SoundTag(r.RightAudio),
	}
}

// TagMinimalPair marks every note of the deck
const TagMinimalPair = "minimal_pair"

// Tags returns the note tags: TagMinimalPair followed by the kinds of
// difference between the two words, when they can be told apart
func (r CardRecord) Tags() []string {
	tags := []string{TagMinimalPair}
	for _, kind := range phonetic.Classify(r.Left, r.Right) {
		tags = append(tags, string(kind))
	}
	return tags
}

// SortField returns the value Anki sorts notes by
func (r CardRecord) SortField() string {
	return textPolicy.Sanitize(r.Correct)
}

// MediaFiles returns the distinct audio paths the record references
func (r CardRecord) MediaFiles() []string {
	var files []string
	seen := make(map[string]bool)
	for _, path := range []string{r.CorrectAudio, r.LeftAudio, r.RightAudio} {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}

// NoteGUID returns a GUID derived from the note's fields and occurrence,
// the number of identical records before it in the deck. Regenerating a
// package yields the same GUIDs, so Anki updates instead of duplicating,
// while a repeated pair still gets notes of its own.
func NoteGUID(r CardRecord, occurrence int) string {
	key := strings.Join(r.FieldValues(), "\x1f") + "\x1f" + strconv.Itoa(occurrence)
	sum := sha256.Sum256([]byte(key))
	return "mp" + hex.EncodeToString(sum[:8])
}

// SoundTag formats an audio path as an Anki sound reference
func SoundTag(path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("[sound:%s]", filepath.Base(path))
}

// Deck is a fixed-identity collection of card records
type Deck struct {
	ID      int64
	ModelID int64
	Name    string
	records []CardRecord
}

// New creates an empty deck
func New(name string) *Deck {
	return &Deck{
		ID:      DeckID,
		ModelID: ModelID,
		Name:    name,
		records: make([]CardRecord, 0),
	}
}

// Assemble creates a deck holding records in order
func Assemble(name string, records []CardRecord) *Deck {
	d := New(name)
	for _, r := range records {
		d.Add(r)
	}
	return d
}

// Add appends a record. Identical records are kept.
func (d *Deck) Add(record CardRecord) {
	d.records = append(d.records, record)
}

// Records returns the records in insertion order
func (d *Deck) Records() []CardRecord {
	out := make([]CardRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Len returns the number of records
func (d *Deck) Len() int {
	return len(d.records)
}

// NoteGUIDs returns the GUID of every record in order
func (d *Deck) NoteGUIDs() []string {
	guids := make([]string, len(d.records))
	seen := make(map[CardRecord]int)
	for i, r := range d.records {
		guids[i] = NoteGUID(r, seen[r])
		seen[r]++
	}
	return guids
}

// MediaFiles returns the distinct audio paths of all records, in the
// order they are first referenced
func (d *Deck) MediaFiles() []string {
	var files []string
	seen := make(map[string]bool)
	for _, r := range d.records {
		for _, path := range r.MediaFiles() {
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}
	return files
}

// NameFor returns the deck name for an input file
func NameFor(inputFile string) string {
	return ModelName + " " + internal.BaseName(inputFile)
}

// PackageFileName returns the .apkg file name for an input file
func PackageFileName(inputFile string) string {
	return "minimal_pairs_" + internal.SanitizeFilename(internal.BaseName(inputFile)) + ".apkg"
}
