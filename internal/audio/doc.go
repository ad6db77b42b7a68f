// Package audio synthesizes speech for words. It wraps several
// text-to-speech backends behind the Provider interface and caches the
// generated files on disk, keyed by the SHA-256 of the spoken text.
package audio
