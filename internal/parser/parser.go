// Package parser extracts front/back pairs from import files.
package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Format selects how an import file is read.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

var ErrUnknownFormat = errors.New("unknown import format")

// DetectFormat picks a format from the file extension when f is FormatAuto.
func DetectFormat(path string, f Format) (Format, error) {
	switch f {
	case FormatCSV, FormatMarkdown:
		return f, nil
	case FormatAuto, "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: cannot infer from %s", ErrUnknownFormat, path)
}

// ParseFile reads a file from the given path and extracts all pairs.
func ParseFile(path string, f Format) ([]domain.Pair, error) {
	format, err := DetectFormat(path, f)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if format == FormatMarkdown {
		return ParseMarkdown(file)
	}
	return ParseCSV(file)
}

// ParseCSV reads two-column rows. The first row is a header and is skipped;
// columns beyond the second are ignored.
func ParseCSV(r io.Reader) ([]domain.Pair, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var pairs []domain.Pair
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected 2 columns, got %d", line, len(record))
		}
		pairs = append(pairs, domain.Pair{Front: record[0], Back: record[1]})
	}
	return pairs, nil
}

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	separator      = "---"
)

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
)

// ParseMarkdown reads cards written as
//
//	Q: question, possibly
//	spanning lines
//	A: answer
//
// A new Q: or a --- line ends the current card. Cards without an answer are dropped.
func ParseMarkdown(r io.Reader) ([]domain.Pair, error) {
	scanner := bufio.NewScanner(r)
	var pairs []domain.Pair
	var current domain.Pair
	var block []string
	st := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		switch st {
		case readingQuestion:
			current.Front = content
		case readingAnswer:
			current.Back = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Front != "" && current.Back != "" {
			pairs = append(pairs, current)
		}
		current = domain.Pair{}
		st = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == separator:
			finishCard()
		case strings.HasPrefix(line, questionPrefix):
			finishCard()
			st = readingQuestion
			block = append(block, trimPrefix(line, questionPrefix))
		case strings.HasPrefix(line, answerPrefix) && st != seeking:
			flushBlock()
			st = readingAnswer
			block = append(block, trimPrefix(line, answerPrefix))
		case st != seeking:
			block = append(block, line)
		}
	}
	finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func trimPrefix(line, prefix string) string {
	return strings.TrimPrefix(line[len(prefix):], " ")
}
