package review

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// RawInput switches f to raw mode so single key presses arrive without Enter.
// When f is not a terminal it does nothing. The returned func restores the
// previous terminal state.
func RawInput(f *os.File) (restore func() error, err error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func() error { return nil }, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, state) }, nil
}
