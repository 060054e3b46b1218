// Package deck reads and writes deck files.
package deck

import (
	"fmt"
	"os"

	"github.com/conorfennell/flashdeck/internal/codec"
	"github.com/conorfennell/flashdeck/internal/domain"
)

// Load reads and decodes the deck at path.
func Load(path string) ([]domain.Card, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cards, err := codec.DecodeDeck(b)
	if err != nil {
		return nil, fmt.Errorf("failed to decode deck %s: %w", path, err)
	}
	return cards, nil
}

// Save encodes cards and overwrites the deck at path.
// Nothing is written if any card fails to encode.
func Save(path string, cards []domain.Card) error {
	b, err := codec.EncodeDeck(cards)
	if err != nil {
		return fmt.Errorf("failed to encode deck %s: %w", path, err)
	}
	return os.WriteFile(path, b, 0o644)
}
