package domain

import (
	"errors"
	"time"
)

// Initial scheduling state of a card that has never been reviewed.
const (
	InitialEasiness float32 = 2.5
	MinEasiness     float32 = 1.3
)

// ErrInvalidGrade is returned when a grade outside 0..5 is supplied.
var ErrInvalidGrade = errors.New("grade must be between 0 and 5")

// Card is a two-sided flashcard and its review schedule.
// Cards are values: scheduling returns a new Card and never mutates the caller's copy.
type Card struct {
	Front string
	Back  string

	// Due is the epoch second after which the card is up for review.
	// Zero means the card is due now regardless of the clock.
	Due         uint64
	Repetitions uint16 // consecutive successful recalls
	Easiness    float32
	Interval    uint16 // days
}

// NewCard returns a card that is immediately due.
func NewCard(front, back string) Card {
	return Card{
		Front:       front,
		Back:        back,
		Due:         0,
		Repetitions: 0,
		Easiness:    InitialEasiness,
		Interval:    0,
	}
}

// Grade is the recall quality a user gives a card.
// 0-2: failed, 3: recalled with effort, 4-5: recalled well.
type Grade uint8

const MaxGrade Grade = 5

// Valid reports whether g is within 0..5.
func (g Grade) Valid() bool {
	return g <= MaxGrade
}

// ParseGrade maps a key press '0'..'5' to a Grade.
func ParseGrade(r rune) (Grade, error) {
	if r < '0' || r > '5' {
		return 0, ErrInvalidGrade
	}
	return Grade(r - '0'), nil
}

// Pair is a front/back text pair produced by an import source.
type Pair struct {
	Front string
	Back  string
}

// ReviewLog records a single graded review within a sitting.
// Interval, Easiness and Due hold the state after the grade was applied.
type ReviewLog struct {
	SessionID  string
	Front      string
	Back       string
	Grade      Grade
	ReviewedAt time.Time
	Interval   uint16
	Easiness   float32
	Due        uint64
}
