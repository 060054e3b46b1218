// Package codec reads and writes the binary deck format.
//
// A card is stored as
//
//	front length  1 byte
//	front text    UTF-8
//	back length   1 byte
//	back text     UTF-8
//	due           8 bytes, big-endian uint64
//	repetitions   2 bytes, big-endian uint16
//	easiness      4 bytes, big-endian IEEE-754 float32
//	interval      2 bytes, big-endian uint16
//
// A deck is a concatenation of cards, each preceded by its encoded length as a
// big-endian uint16. The end of the deck is the end of the buffer.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// MaxTextLen is the longest side, in bytes, a card can hold.
const MaxTextLen = math.MaxUint8

const (
	lengthPrefixSize = 2
	fixedFieldsSize  = 8 + 2 + 4 + 2
)

var (
	ErrTextTooLong   = errors.New("codec: text longer than 255 bytes")
	ErrTruncated     = errors.New("codec: data truncated")
	ErrInvalidText   = errors.New("codec: text is not valid UTF-8")
	ErrTrailingBytes = errors.New("codec: record has trailing bytes")
)

// EncodeCard returns the binary form of a single card.
func EncodeCard(c domain.Card) ([]byte, error) {
	return appendCard(make([]byte, 0, encodedSize(c)), c)
}

func encodedSize(c domain.Card) int {
	return 1 + len(c.Front) + 1 + len(c.Back) + fixedFieldsSize
}

func appendCard(dst []byte, c domain.Card) ([]byte, error) {
	var err error
	if dst, err = appendText(dst, "front", c.Front); err != nil {
		return nil, err
	}
	if dst, err = appendText(dst, "back", c.Back); err != nil {
		return nil, err
	}
	dst = binary.BigEndian.AppendUint64(dst, c.Due)
	dst = binary.BigEndian.AppendUint16(dst, c.Repetitions)
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(c.Easiness))
	dst = binary.BigEndian.AppendUint16(dst, c.Interval)
	return dst, nil
}

func appendText(dst []byte, side, s string) ([]byte, error) {
	if len(s) > MaxTextLen {
		return nil, fmt.Errorf("%s side is %d bytes: %w", side, len(s), ErrTextTooLong)
	}
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%s side: %w", side, ErrInvalidText)
	}
	dst = append(dst, byte(len(s)))
	return append(dst, s...), nil
}

// DecodeCard parses a single card. The buffer must hold exactly one card.
func DecodeCard(b []byte) (domain.Card, error) {
	r := reader{buf: b}
	var c domain.Card
	var err error

	if c.Front, err = r.text(); err != nil {
		return domain.Card{}, fmt.Errorf("front side: %w", err)
	}
	if c.Back, err = r.text(); err != nil {
		return domain.Card{}, fmt.Errorf("back side: %w", err)
	}
	fixed, err := r.next(fixedFieldsSize)
	if err != nil {
		return domain.Card{}, fmt.Errorf("schedule: %w", err)
	}
	c.Due = binary.BigEndian.Uint64(fixed[0:8])
	c.Repetitions = binary.BigEndian.Uint16(fixed[8:10])
	c.Easiness = math.Float32frombits(binary.BigEndian.Uint32(fixed[10:14]))
	c.Interval = binary.BigEndian.Uint16(fixed[14:16])

	if r.remaining() != 0 {
		return domain.Card{}, fmt.Errorf("%d extra bytes: %w", r.remaining(), ErrTrailingBytes)
	}
	return c, nil
}

// EncodeDeck returns the binary form of a deck. Card order is preserved.
func EncodeDeck(cards []domain.Card) ([]byte, error) {
	size := 0
	for _, c := range cards {
		size += lengthPrefixSize + encodedSize(c)
	}

	out := make([]byte, 0, size)
	for i, c := range cards {
		start := len(out)
		out = append(out, 0, 0)
		var err error
		if out, err = appendCard(out, c); err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		// 1+255+1+255+16 always fits in the uint16 prefix.
		binary.BigEndian.PutUint16(out[start:], uint16(len(out)-start-lengthPrefixSize))
	}
	return out, nil
}

// DecodeDeck parses a whole deck. Any malformed card fails the whole deck.
func DecodeDeck(b []byte) ([]domain.Card, error) {
	r := reader{buf: b}
	var cards []domain.Card

	for r.remaining() > 0 {
		offset := r.off
		prefix, err := r.next(lengthPrefixSize)
		if err != nil {
			return nil, fmt.Errorf("card %d length at offset %d: %w", len(cards), offset, err)
		}
		record, err := r.next(int(binary.BigEndian.Uint16(prefix)))
		if err != nil {
			return nil, fmt.Errorf("card %d at offset %d: %w", len(cards), offset, err)
		}
		c, err := DecodeCard(record)
		if err != nil {
			return nil, fmt.Errorf("card %d at offset %d: %w", len(cards), offset, err)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// reader is a bounds-checked cursor over a byte slice.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) next(n int) ([]byte, error) {
	if n > r.remaining() {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, r.off, r.remaining(), ErrTruncated)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) text() (string, error) {
	l, err := r.next(1)
	if err != nil {
		return "", err
	}
	b, err := r.next(int(l[0]))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidText
	}
	return string(b), nil
}
