// Package session runs a single review sitting over the due cards of a deck.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/sm2"
)

// ErrInvalidAction is returned when an action is not accepted in the current stage.
var ErrInvalidAction = errors.New("session: action not allowed")

// Stage is the position of a sitting in its review cycle.
type Stage int

const (
	StageStart Stage = iota
	StageFront
	StageBack
	StageDone
	StageQuit
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageFront:
		return "front"
	case StageBack:
		return "back"
	case StageDone:
		return "done"
	case StageQuit:
		return "quit"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Session sequences the due cards of one sitting.
// Cards graded 4 or 5 are finished; lower grades send the card to the back of
// the queue so it is drilled again before the sitting ends.
type Session struct {
	id    string
	clock sm2.Clock
	stage Stage

	queue      *Queue
	current    domain.Card
	hasCurrent bool

	finished  []domain.Card
	untouched []domain.Card
	reviews   []domain.ReviewLog
}

// New creates a sitting over the due cards. Untouched cards are passed through to
// Persist unchanged.
func New(due, untouched []domain.Card, clock sm2.Clock) *Session {
	u := make([]domain.Card, len(untouched))
	copy(u, untouched)
	return &Session{
		id:        uuid.NewString(),
		clock:     clock,
		stage:     StageStart,
		queue:     NewQueue(due),
		untouched: u,
	}
}

// FromDeck partitions the deck at the clock's current time and creates a sitting.
func FromDeck(cards []domain.Card, clock sm2.Clock) *Session {
	due, untouched := Partition(cards, clock.Now())
	return New(due, untouched, clock)
}

func (s *Session) ID() string { return s.id }

func (s *Session) Stage() Stage { return s.stage }

// Current returns the card being shown, if any.
func (s *Session) Current() (domain.Card, bool) {
	return s.current, s.hasCurrent
}

// Remaining is the number of cards still queued, not counting the current one.
func (s *Session) Remaining() int { return s.queue.Len() }

// Finished returns the cards completed this sitting.
func (s *Session) Finished() []domain.Card {
	return append([]domain.Card(nil), s.finished...)
}

// Reviews returns every grade applied this sitting in order.
func (s *Session) Reviews() []domain.ReviewLog {
	return append([]domain.ReviewLog(nil), s.reviews...)
}

// Start shows the first due card, or ends the sitting when nothing is due.
func (s *Session) Start() error {
	if s.stage != StageStart {
		return fmt.Errorf("start in stage %s: %w", s.stage, ErrInvalidAction)
	}
	s.showNext()
	return nil
}

// Reveal shows the back of the current card.
func (s *Session) Reveal() error {
	if s.stage != StageFront {
		return fmt.Errorf("reveal in stage %s: %w", s.stage, ErrInvalidAction)
	}
	s.stage = StageBack
	return nil
}

// Grade schedules the current card and moves on to the next one.
func (s *Session) Grade(g domain.Grade) error {
	if s.stage != StageBack {
		return fmt.Errorf("grade in stage %s: %w", s.stage, ErrInvalidAction)
	}
	if !g.Valid() {
		return fmt.Errorf("grade %d: %w", g, domain.ErrInvalidGrade)
	}

	now := s.clock.Now()
	next := sm2.Advance(s.current, g, now)
	s.reviews = append(s.reviews, domain.ReviewLog{
		SessionID:  s.id,
		Front:      next.Front,
		Back:       next.Back,
		Grade:      g,
		ReviewedAt: time.Unix(int64(now), 0).UTC(),
		Interval:   next.Interval,
		Easiness:   next.Easiness,
		Due:        next.Due,
	})

	if g >= sm2.ScheduleGrade {
		s.finished = append(s.finished, next)
	} else {
		s.queue.Push(next)
	}
	s.current, s.hasCurrent = domain.Card{}, false

	s.showNext()
	return nil
}

// Quit ends the sitting. Cards not yet graded keep the state they had when the
// sitting started or when they were last graded.
func (s *Session) Quit() {
	s.stage = StageQuit
}

// Persist returns every card of the deck as it should be written back:
// untouched cards, finished cards, cards still queued and the card being shown.
func (s *Session) Persist() []domain.Card {
	out := make([]domain.Card, 0, len(s.untouched)+len(s.finished)+s.queue.Len()+1)
	out = append(out, s.untouched...)
	out = append(out, s.finished...)
	out = append(out, s.queue.cards...)
	if s.hasCurrent {
		out = append(out, s.current)
	}
	return out
}

func (s *Session) showNext() {
	c, ok := s.queue.Pop()
	if !ok {
		s.stage = StageDone
		return
	}
	s.current, s.hasCurrent = c, true
	s.stage = StageFront
}
