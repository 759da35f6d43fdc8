// Package idgen provides short, URL-safe unique ID generation backed by
// nanoid, plus a deterministic variant driven by an explicit randomness
// source for reproducible runs.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/alfredjeanlab/synth/internal/randsrc"
)

// DefaultPrefix is prepended to every generated ID.
var DefaultPrefix = "synth-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Generate returns a new unique ID using the default prefix.
func Generate() (string, error) {
	return GenerateWithPrefix(DefaultPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// GenerateDeterministic draws a nanoid-shaped string the same way Generate
// does, but samples the alphabet from src instead of nanoid's internal
// crypto/rand reader, so callers that need reproducible output for a given
// seed (the faker "slug"/"nanoid" generators) don't fall back to OS entropy.
func GenerateDeterministic(src *randsrc.Source, alphabet string, length int) string {
	runes := []rune(alphabet)
	out := make([]rune, length)
	for i := range out {
		out[i] = runes[src.IntRangeInt(0, len(runes))]
	}
	return string(out)
}
