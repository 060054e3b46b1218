package session

import (
	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/sm2"
)

// Queue is a FIFO of cards waiting to be reviewed.
type Queue struct {
	cards []domain.Card
}

// NewQueue returns a queue holding a copy of cards in order.
func NewQueue(cards []domain.Card) *Queue {
	q := &Queue{cards: make([]domain.Card, len(cards))}
	copy(q.cards, cards)
	return q
}

func (q *Queue) Push(c domain.Card) {
	q.cards = append(q.cards, c)
}

// Pop removes and returns the card at the front of the queue.
func (q *Queue) Pop() (domain.Card, bool) {
	if len(q.cards) == 0 {
		return domain.Card{}, false
	}
	c := q.cards[0]
	q.cards[0] = domain.Card{}
	q.cards = q.cards[1:]
	return c, true
}

func (q *Queue) Len() int {
	return len(q.cards)
}

// Partition splits a deck into the cards due at now and the rest, preserving order.
func Partition(cards []domain.Card, now uint64) (due, untouched []domain.Card) {
	for _, c := range cards {
		if sm2.IsDue(c, now) {
			due = append(due, c)
		} else {
			untouched = append(untouched, c)
		}
	}
	return due, untouched
}
