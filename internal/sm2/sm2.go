// Package sm2 schedules card reviews with the SM-2 spaced repetition algorithm.
package sm2

import (
	"math"
	"time"

	"github.com/conorfennell/flashdeck/internal/domain"
)

const (
	// PassGrade is the lowest grade that counts as a successful recall.
	PassGrade domain.Grade = 3
	// ScheduleGrade is the lowest grade that pushes the due date forward.
	// Grades below it leave the card due immediately.
	ScheduleGrade domain.Grade = 4

	secondsPerDay = 86400
	// dueOffset shifts due dates eight hours back so cards come up at the start of the day in UTC-8.
	dueOffset = 28800
)

// Clock supplies the current time in epoch seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// FixedClock always returns the same instant.
type FixedClock uint64

func (c FixedClock) Now() uint64 {
	return uint64(c)
}

// Advance returns the card's state after being reviewed with grade g at now.
// g must be valid; the caller's card is not modified.
func Advance(c domain.Card, g domain.Grade, now uint64) domain.Card {
	next := c

	if g >= PassGrade {
		switch c.Repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = scaleInterval(c.Interval, c.Easiness)
		}
		next.Repetitions = c.Repetitions + 1
	} else {
		next.Repetitions = 0
		next.Interval = 1
	}

	next.Easiness = nextEasiness(c.Easiness, g)

	// A grade of 3 counts as a pass above but is still shown again this sitting.
	if g >= ScheduleGrade {
		next.Due = dueAt(now, next.Interval)
	} else {
		next.Due = 0
	}

	return next
}

// dueAt is now plus interval days, less the day offset. A zero interval from
// a stored card must not wrap below zero, so the result floors at 0.
func dueAt(now uint64, interval uint16) uint64 {
	due := now + uint64(interval)*secondsPerDay
	if due < dueOffset {
		return 0
	}
	return due - dueOffset
}

// IsDue reports whether the card should be reviewed at now.
func IsDue(c domain.Card, now uint64) bool {
	return c.Due < now
}

func nextEasiness(ef float32, g domain.Grade) float32 {
	q := float32(domain.MaxGrade) - float32(g)
	ef += 0.1 - q*(0.08+q*0.02)
	if ef < domain.MinEasiness {
		ef = domain.MinEasiness
	}
	return ef
}

// scaleInterval multiplies the interval by the easiness factor, rounding half away
// from zero. Results beyond the uint16 range saturate.
func scaleInterval(interval uint16, ef float32) uint16 {
	r := math.Round(float64(float32(interval) * ef))
	switch {
	case r <= 0:
		return 0
	case r >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(r)
}
