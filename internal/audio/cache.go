package audio

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// AudioExt is the extension of every cached audio file
const AudioExt = ".mp3"

// Cache maps a (prefix, text) combination to the location of its audio
type Cache interface {
	// Path returns where the audio for text is stored under prefix
	Path(prefix, text string) string

	// Lookup returns the path and true if audio for text already exists
	Lookup(prefix, text string) (string, bool)
}

// FileCache uses the file system as the cache index: a file at the
// computed path is a hit, whatever its content
type FileCache struct{}

// NewFileCache creates a file system backed cache
func NewFileCache() *FileCache {
	return &FileCache{}
}

// Path returns "<prefix>_<sha256(text)>.mp3"
func (c *FileCache) Path(prefix, text string) string {
	return AssetPath(prefix, text)
}

// Lookup checks whether the audio file exists
func (c *FileCache) Lookup(prefix, text string) (string, bool) {
	path := c.Path(prefix, text)
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// Digest returns the hex encoded SHA-256 of text
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// AssetPath returns the audio path for text under prefix
func AssetPath(prefix, text string) string {
	return prefix + "_" + Digest(text) + AudioExt
}
