// Command flashdeck reviews two-sided flashcards with spaced repetition.
//
//	flashdeck [flags] <deck>                review the cards due now
//	flashdeck [flags] <deck> import <src>   add cards from a CSV or markdown file, or a git repo
//	flashdeck [flags] <deck> stats          show deck and review history counts
//	flashdeck help                          show this message
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/conorfennell/flashdeck/internal/config"
	"github.com/conorfennell/flashdeck/internal/deck"
	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/importer"
	"github.com/conorfennell/flashdeck/internal/logger"
	"github.com/conorfennell/flashdeck/internal/parser"
	"github.com/conorfennell/flashdeck/internal/review"
	"github.com/conorfennell/flashdeck/internal/session"
	"github.com/conorfennell/flashdeck/internal/sm2"
	"github.com/conorfennell/flashdeck/internal/storage"
)

var errUsage = errors.New("incorrect arguments")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, sm2.SystemClock{}); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "flashdeck: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, clock sm2.Clock) error {
	cfg, args, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		usage(out)
		return nil
	}
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel, os.Stderr)

	switch {
	case len(args) == 0:
		fmt.Fprintln(out, "needs path to flashcards file")
		usage(out)
		return errUsage
	case args[0] == "help", len(args) > 1 && args[1] == "help":
		usage(out)
		return nil
	case len(args) == 1:
		return runReview(ctx, cfg, args[0], in, out, clock)
	case args[1] == "import" && len(args) == 3:
		return runImport(ctx, cfg, args[0], args[2], out)
	case args[1] == "stats" && len(args) == 2:
		return runStats(ctx, cfg, args[0], out, clock)
	}

	fmt.Fprintln(out, "Incorrect Arguments")
	usage(out)
	return errUsage
}

// runReview holds one sitting. The deck is read once before and written once after;
// progress is lost if the process dies in between.
func runReview(ctx context.Context, cfg *config.Config, path string, in io.Reader, out io.Writer, clock sm2.Clock) error {
	cards, err := deck.Load(path)
	if err != nil {
		return err
	}

	s := session.FromDeck(cards, clock)
	slog.Info("Starting sitting", "session", s.ID(), "deck", path, "due", s.Remaining())

	runErr := readKeys(ctx, s, in, out)
	if err := deck.Save(path, s.Persist()); err != nil {
		return errors.Join(runErr, err)
	}
	slog.Info("Deck saved", "deck", path, "reviews", len(s.Reviews()), "finished", len(s.Finished()))

	if cfg.History != "" {
		if err := recordHistory(ctx, cfg.History, s.Reviews()); err != nil {
			slog.Warn("Failed to record review history", "path", cfg.History, "error", err)
		}
	}
	return runErr
}

// readKeys runs the review loop, with the terminal in raw mode when input is a TTY.
// The terminal is restored before the deck is written.
func readKeys(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok {
		restore, err := review.RawInput(f)
		if err != nil {
			return err
		}
		defer func() {
			if err := restore(); err != nil {
				slog.Warn("Failed to restore terminal", "error", err)
			}
		}()
	}
	return review.Run(ctx, s, in, out)
}

func recordHistory(ctx context.Context, dsn string, reviews []domain.ReviewLog) error {
	db, err := storage.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.RecordReviews(ctx, reviews)
}

func runImport(ctx context.Context, cfg *config.Config, path, source string, out io.Writer) error {
	res, err := importer.Run(ctx, importer.Options{
		DeckPath: path,
		Source:   source,
		File:     cfg.File,
		Format:   parser.Format(cfg.Format),
		ReposDir: cfg.ReposDir,
		Replace:  cfg.Replace,
		Progress: os.Stderr,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d flashcards from %s to %s\n", res.Imported, res.Source, path)
	if res.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d duplicates\n", res.Skipped)
	}
	return nil
}

func runStats(ctx context.Context, cfg *config.Config, path string, out io.Writer, clock sm2.Clock) error {
	cards, err := deck.Load(path)
	if err != nil {
		return err
	}
	due, untouched := session.Partition(cards, clock.Now())
	fmt.Fprintf(out, "Cards:     %d\nDue now:   %d\nScheduled: %d\n", len(cards), len(due), len(untouched))

	if cfg.History == "" {
		return nil
	}
	db, err := storage.Open(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.Summarize(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sittings:  %d\nReviews:   %d\n", summary.Sessions, summary.Reviews)
	for g := domain.Grade(0); g <= domain.MaxGrade; g++ {
		fmt.Fprintf(out, "  grade %d: %d\n", g, summary.ByGrade[g])
	}
	return nil
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "Flashcards -- A Spaced Repetition Flashcard Program")
	fmt.Fprintln(out, "Layout 'flashdeck [flags] deck_file [command] ...'")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "    help - brings up this message")
	fmt.Fprintln(out, "    import <src> - import flashcards from a csv or markdown file or a git url (with --file)")
	fmt.Fprintln(out, "    stats - show deck and review history counts")
	fmt.Fprintln(out, "    `no command` - review the flashcards that are due")
	fmt.Fprintln(out, "Keys: <Space> show back, <0..5> grade, <Q> quit")
	fmt.Fprintln(out, "Flags:")
	fmt.Fprint(out, config.NewFlagSet("flashdeck").FlagUsages())
}
