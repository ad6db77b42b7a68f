// Package phonetic splits Vietnamese syllables into initial consonant,
// vowel cluster, final consonant and tone, and names the parts in which
// the two words of a minimal pair differ.
package phonetic
