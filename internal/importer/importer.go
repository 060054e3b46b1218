// Package importer turns import files into new cards in a deck.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/conorfennell/flashdeck/internal/deck"
	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/gitsource"
	"github.com/conorfennell/flashdeck/internal/knol"
	"github.com/conorfennell/flashdeck/internal/parser"
)

var ErrMissingRepoFile = errors.New("a file inside the repository is required for git sources")

// Options describes one import run.
type Options struct {
	DeckPath string
	// Source is a local file or a git URL. For git URLs, File names the import
	// file relative to the repository root.
	Source   string
	File     string
	Format   parser.Format
	ReposDir string
	// Replace discards the existing deck instead of merging into it.
	Replace  bool
	Progress io.Writer
}

// Result summarizes an import.
type Result struct {
	Source   string
	Imported int
	Skipped  int
	Total    int
}

// Run reads the import source and writes the merged deck.
// Pairs whose content already exists in the deck are skipped.
func Run(ctx context.Context, opts Options) (Result, error) {
	path, err := resolve(ctx, opts)
	if err != nil {
		return Result{}, err
	}

	pairs, err := parser.ParseFile(path, opts.Format)
	if err != nil {
		return Result{}, fmt.Errorf("error parsing %s: %w", path, err)
	}

	var existing []domain.Card
	if !opts.Replace {
		existing, err = deck.Load(opts.DeckPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Result{}, err
		}
	}

	cards, imported := Merge(existing, pairs)
	if err := deck.Save(opts.DeckPath, cards); err != nil {
		return Result{}, err
	}

	res := Result{
		Source:   path,
		Imported: imported,
		Skipped:  len(pairs) - imported,
		Total:    len(cards),
	}
	slog.Info("import complete",
		"source", path,
		"deck", opts.DeckPath,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"total", res.Total,
	)
	return res, nil
}

// Merge appends a fresh card for every pair whose content is not already in cards.
// Pairs are only compared against the existing deck, so every row of the source is kept.
// It returns the merged deck and the number of cards added.
func Merge(cards []domain.Card, pairs []domain.Pair) ([]domain.Card, int) {
	existing := make(map[string]bool, len(cards))
	for _, c := range cards {
		existing[knol.Hash(c.Front, c.Back)] = true
	}

	out := append(make([]domain.Card, 0, len(cards)+len(pairs)), cards...)
	added := 0
	for _, p := range pairs {
		if h := knol.Hash(p.Front, p.Back); existing[h] {
			slog.Debug("Skipping card already in deck", "hash", h)
			continue
		}
		out = append(out, domain.NewCard(p.Front, p.Back))
		added++
	}
	return out, added
}

func resolve(ctx context.Context, opts Options) (string, error) {
	if !gitsource.IsURL(opts.Source) {
		return opts.Source, nil
	}
	if opts.File == "" {
		return "", ErrMissingRepoFile
	}

	localRepoPath, err := gitsource.LocalPath(opts.ReposDir, opts.Source)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(localRepoPath), os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create repos directory: %w", err)
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	if err := gitsource.Sync(ctx, opts.Source, localRepoPath, progress); err != nil {
		return "", err
	}
	return filepath.Join(localRepoPath, opts.File), nil
}
