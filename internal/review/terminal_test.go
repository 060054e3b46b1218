package review

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRawInputSkipsNonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "keys"))
	require.NoError(t, err)
	defer f.Close()

	restore, err := RawInput(f)
	require.NoError(t, err)
	require.NoError(t, restore())
}
