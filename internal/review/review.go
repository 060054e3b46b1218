// Package review drives a session from key presses on a terminal.
package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/session"
)

const (
	title       = " Spaced Repetition Flashcards "
	doneMessage = "All cards for this session are done."

	keyReveal = ' '
	keyQuit   = 'q'
	// Ctrl-C arrives as a byte when the terminal is in raw mode.
	keyInterrupt = '\x03'
)

// Run shows cards and applies key presses until the user quits or input ends.
// End of input is treated as a quit. The session is always left in StageQuit.
func Run(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	defer s.Quit()

	if err := s.Start(); err != nil {
		return err
	}

	r := bufio.NewReader(in)
	redraw := true
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if redraw {
			render(out, s)
		}

		key, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		var quit bool
		redraw, quit, err = handleKey(s, key)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handleKey applies one key press and reports whether the screen changed.
// Keys that mean nothing in the current stage are ignored.
func handleKey(s *session.Session, key rune) (changed, quit bool, err error) {
	if key == keyQuit || key == 'Q' || key == keyInterrupt {
		return false, true, nil
	}

	switch s.Stage() {
	case session.StageFront:
		if key == keyReveal {
			return true, false, s.Reveal()
		}
	case session.StageBack:
		g, err := domain.ParseGrade(key)
		if err != nil {
			return false, false, nil
		}
		slog.Debug("Card graded", "grade", g, "remaining", s.Remaining())
		return true, false, s.Grade(g)
	}
	return false, false, nil
}

func render(out io.Writer, s *session.Session) {
	var text, hints string
	card, _ := s.Current()

	switch s.Stage() {
	case session.StageFront:
		text = card.Front
		hints = " Show Back <Space>  Quit <Q> "
	case session.StageBack:
		text = card.Back
		hints = " Difficulty <0..5>  Quit <Q> "
	case session.StageDone:
		text = doneMessage
		hints = " Quit <Q> "
	default:
		text = "Starting..."
		hints = " Wait "
	}

	rule := strings.Repeat("=", len(title))
	screen := fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n[%s] %d left\n", rule, title, rule, text, hints, s.Remaining())
	// Raw terminals do not translate \n into \r\n.
	fmt.Fprint(out, strings.ReplaceAll(screen, "\n", "\r\n"))
}
