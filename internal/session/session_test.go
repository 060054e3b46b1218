package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/sm2"
)

const now = 1_700_000_000

func cards(fronts ...string) []domain.Card {
	out := make([]domain.Card, len(fronts))
	for i, f := range fronts {
		out[i] = domain.NewCard(f, f+"-back")
	}
	return out
}

func grade(t *testing.T, s *Session, g domain.Grade) {
	t.Helper()
	require.NoError(t, s.Reveal())
	require.NoError(t, s.Grade(g))
}

func fronts(cs []domain.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Front
	}
	return out
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(cards("a", "b"))
	q.Push(domain.NewCard("c", "c"))
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		c, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, c.Front)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestPartition(t *testing.T) {
	deck := []domain.Card{
		{Front: "new", Due: 0},
		{Front: "later", Due: now + 10},
		{Front: "past", Due: now - 10},
		{Front: "exact", Due: now},
	}

	due, untouched := Partition(deck, now)

	assert.Equal(t, []string{"new", "past"}, fronts(due))
	assert.Equal(t, []string{"later", "exact"}, fronts(untouched))
}

func TestEmptySittingIsDoneImmediately(t *testing.T) {
	untouched := []domain.Card{{Front: "later", Due: now + 100, Easiness: 2.5}}
	s := New(nil, untouched, sm2.FixedClock(now))

	require.NoError(t, s.Start())

	assert.Equal(t, StageDone, s.Stage())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, untouched, s.Persist())
}

func TestStageTransitions(t *testing.T) {
	s := New(cards("a"), nil, sm2.FixedClock(now))
	assert.Equal(t, StageStart, s.Stage())

	assert.ErrorIs(t, s.Reveal(), ErrInvalidAction)
	assert.ErrorIs(t, s.Grade(5), ErrInvalidAction)

	require.NoError(t, s.Start())
	assert.Equal(t, StageFront, s.Stage())
	assert.ErrorIs(t, s.Start(), ErrInvalidAction)
	assert.ErrorIs(t, s.Grade(5), ErrInvalidAction)

	require.NoError(t, s.Reveal())
	assert.Equal(t, StageBack, s.Stage())
	assert.ErrorIs(t, s.Reveal(), ErrInvalidAction)
	assert.ErrorIs(t, s.Grade(6), domain.ErrInvalidGrade)
	assert.Equal(t, StageBack, s.Stage())

	require.NoError(t, s.Grade(4))
	assert.Equal(t, StageDone, s.Stage())
	assert.ErrorIs(t, s.Reveal(), ErrInvalidAction)

	s.Quit()
	assert.Equal(t, StageQuit, s.Stage())
	assert.ErrorIs(t, s.Start(), ErrInvalidAction)
}

func TestLowGradesAreDrilledAgain(t *testing.T) {
	s := New(cards("a", "b"), nil, sm2.FixedClock(now))
	require.NoError(t, s.Start())

	var shown []string
	for _, g := range []domain.Grade{3, 5, 1, 4} {
		c, ok := s.Current()
		require.True(t, ok)
		shown = append(shown, c.Front)
		grade(t, s, g)
	}

	assert.Equal(t, []string{"a", "b", "a", "a"}, shown)
	assert.Equal(t, StageDone, s.Stage())
	assert.Equal(t, []string{"b", "a"}, fronts(s.Finished()))

	reviews := s.Reviews()
	require.Len(t, reviews, 4)
	for _, r := range reviews {
		assert.Equal(t, s.ID(), r.SessionID)
		assert.Equal(t, int64(now), r.ReviewedAt.Unix())
	}
	assert.Equal(t, domain.Grade(1), reviews[2].Grade)
	assert.Equal(t, uint64(0), reviews[2].Due)
}

func TestLastCardFailedIsShownAgain(t *testing.T) {
	s := New(cards("only"), nil, sm2.FixedClock(now))
	require.NoError(t, s.Start())

	grade(t, s, 2)

	assert.Equal(t, StageFront, s.Stage())
	c, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "only", c.Front)
	assert.Equal(t, uint16(1), c.Interval)
}

func TestQuitFlushesUngradedCardsUnchanged(t *testing.T) {
	deck := cards("first", "second", "third")
	later := domain.Card{Front: "later", Back: "x", Due: now + 1000, Repetitions: 2, Easiness: 2.2, Interval: 6}
	s := New(deck, []domain.Card{later}, sm2.FixedClock(now))
	require.NoError(t, s.Start())

	grade(t, s, 5)
	grade(t, s, 2)
	c, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "third", c.Front)

	s.Quit()

	persisted := s.Persist()
	require.Len(t, persisted, 4)
	assert.Equal(t, later, persisted[0])
	assert.Equal(t, sm2.Advance(deck[0], 5, now), persisted[1])
	assert.Equal(t, sm2.Advance(deck[1], 2, now), persisted[2])
	assert.Equal(t, deck[2], persisted[3])
}

func TestQuitWhileShowingBack(t *testing.T) {
	deck := cards("a", "b")
	s := New(deck, nil, sm2.FixedClock(now))
	require.NoError(t, s.Start())
	require.NoError(t, s.Reveal())

	s.Quit()

	assert.Equal(t, []domain.Card{deck[1], deck[0]}, s.Persist())
}

func TestPersistKeepsEveryCardExactlyOnce(t *testing.T) {
	deck := append(cards("a", "b", "c", "d"), domain.Card{Front: "e", Due: now + 5, Easiness: 2.5})
	s := FromDeck(deck, sm2.FixedClock(now))
	require.NoError(t, s.Start())

	for _, g := range []domain.Grade{0, 4, 3, 5, 2} {
		grade(t, s, g)
	}
	s.Quit()

	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, fronts(s.Persist()))
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "front", StageFront.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}
