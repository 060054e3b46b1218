package deck

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flashdeck/internal/codec"
	"github.com/conorfennell/flashdeck/internal/domain"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spanish.flc")
	cards := []domain.Card{
		domain.NewCard("perro", "dog"),
		{Front: "gato", Back: "cat", Due: 1_700_000_000, Repetitions: 2, Easiness: 2.6, Interval: 6},
	}

	require.NoError(t, Save(path, cards))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cards, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.flc"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.flc")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x00, 0x05}, 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, codec.ErrTruncated)
}

func TestSaveRejectsLongTextWithoutWriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.flc")
	require.NoError(t, Save(path, []domain.Card{domain.NewCard("keep", "me")}))

	err := Save(path, []domain.Card{domain.NewCard(strings.Repeat("x", 300), "back")})
	assert.ErrorIs(t, err, codec.ErrTextTooLong)

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].Front)
}
