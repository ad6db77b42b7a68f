package phonetic

import (
	"strings"
)

// Tone is one of the six Vietnamese tones, ordered so that the highest
// tone mark found in a vowel cluster wins
type Tone int

const (
	Flat Tone = iota
	Rising
	Falling
	Question
	Broken
	LowBroken
)

var toneNames = [...]string{"flat", "rising", "falling", "question", "broken", "low_broken"}

func (t Tone) String() string {
	if t < Flat || t > LowBroken {
		return "unknown"
	}
	return toneNames[t]
}

// ParseTone returns the tone with the given name
func ParseTone(name string) (Tone, bool) {
	for i, n := range toneNames {
		if n == name {
			return Tone(i), true
		}
	}
	return Flat, false
}

type vowelInfo struct {
	tone Tone
	base rune
}

// Each row lists a base vowel followed by its rising, falling, question,
// broken and low broken forms.
var vowelRows = []string{
	"aáàảãạ",
	"ăắằẳẵặ",
	"âấầẩẫậ",
	"eéèẻẽẹ",
	"êếềểễệ",
	"iíìỉĩị",
	"oóòỏõọ",
	"ôốồổỗộ",
	"ơớờởỡợ",
	"uúùủũụ",
	"ưứừửữự",
	"yýỳỷỹỵ",
}

var vowels = buildVowels()

func buildVowels() map[rune]vowelInfo {
	table := make(map[rune]vowelInfo)
	for _, row := range vowelRows {
		forms := []rune(row)
		for i, r := range forms {
			table[r] = vowelInfo{tone: Tone(i), base: forms[0]}
		}
	}
	return table
}

// IsVowel reports whether r is a Vietnamese vowel letter in any tone
func IsVowel(r rune) bool {
	_, ok := vowels[toLower(r)]
	return ok
}

func toLower(r rune) rune {
	return []rune(strings.ToLower(string(r)))[0]
}

// Syllable is a single written Vietnamese syllable
type Syllable struct {
	Raw     string
	Initial string
	Vowel   string // Vowel cluster without tone marks
	Final   string
	Tone    Tone
}

// ParseSyllable splits raw at its first vowel cluster. The result is false
// when raw holds no vowel.
func ParseSyllable(raw string) (Syllable, bool) {
	word := strings.ToLower(raw)
	runes := []rune(word)

	start := -1
	end := len(runes)
	for i, r := range runes {
		_, vowel := vowels[r]
		if vowel && start < 0 {
			start = i
		} else if !vowel && start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return Syllable{}, false
	}

	s := Syllable{Raw: raw}
	var base strings.Builder
	for _, r := range runes[start:end] {
		info := vowels[r]
		base.WriteRune(info.base)
		if info.tone > s.Tone {
			s.Tone = info.tone
		}
	}
	s.Vowel = base.String()

	// A lone consonant run is initial when the word starts with it
	consonants := strings.FieldsFunc(word, func(r rune) bool {
		_, ok := vowels[r]
		return ok
	})
	switch {
	case len(consonants) >= 2:
		s.Initial, s.Final = consonants[0], consonants[1]
	case len(consonants) == 1 && strings.HasPrefix(word, consonants[0]):
		s.Initial = consonants[0]
	case len(consonants) == 1:
		s.Final = consonants[0]
	}
	return s, true
}

// Syllables parses every whitespace separated syllable of text, skipping
// those without a vowel
func Syllables(text string) []Syllable {
	var out []Syllable
	for _, field := range strings.Fields(text) {
		if s, ok := ParseSyllable(field); ok {
			out = append(out, s)
		}
	}
	return out
}

// DeltaKind names a part of a syllable two words differ in
type DeltaKind string

const (
	DeltaInitialConsonant DeltaKind = "initial_consonant"
	DeltaTone             DeltaKind = "tone"
	DeltaVowel            DeltaKind = "vowel"
	DeltaFinalConsonant   DeltaKind = "final_consonant"
)

// DeltaKinds lists every kind in the order Classify reports them
var DeltaKinds = []DeltaKind{DeltaInitialConsonant, DeltaTone, DeltaVowel, DeltaFinalConsonant}

// Classify compares left and right syllable by syllable and returns the
// kinds of difference found, each at most once. Words with a different
// syllable count cannot be compared and yield nil.
func Classify(left, right string) []DeltaKind {
	ls, rs := Syllables(left), Syllables(right)
	if len(ls) == 0 || len(ls) != len(rs) {
		return nil
	}

	found := make(map[DeltaKind]bool)
	for i := range ls {
		a, b := ls[i], rs[i]
		if a.Initial != b.Initial {
			found[DeltaInitialConsonant] = true
		}
		if a.Tone != b.Tone {
			found[DeltaTone] = true
		}
		if a.Vowel != b.Vowel {
			found[DeltaVowel] = true
		}
		if a.Final != b.Final {
			found[DeltaFinalConsonant] = true
		}
	}

	var kinds []DeltaKind
	for _, kind := range DeltaKinds {
		if found[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
