// Package knol identifies cards by their content.
package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize joins a card's sides after lowercasing, trimming and unifying line endings,
// so that cosmetic edits to an import file do not produce a new card.
func Normalize(front, back string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return strings.TrimSpace(p)
	}

	// Length prefixes keep text moved between sides from colliding.
	f, b := normalizePart(front), normalizePart(back)
	return fmt.Sprintf("%d:%s%d:%s", len(f), f, len(b), b)
}

// Hash returns the SHA-256 of the normalized card as a hex string.
func Hash(front, back string) string {
	sum := sha256.Sum256([]byte(Normalize(front, back)))
	return fmt.Sprintf("%x", sum)
}
