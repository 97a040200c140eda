package booking

import (
	"crypto/rand"
	"fmt"
	"time"
)

// NumberGenerator produces human-presentable booking numbers. Uniqueness here
// is best-effort; the store's unique index on booking_number is the hard
// backstop, and creation retries once on a collision.
type NumberGenerator interface {
	Next(now time.Time) string
}

// Alphabet without 0/O/1/I to keep numbers readable over the phone.
const numberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const numberSuffixLen = 6

type RandomNumberGenerator struct{}

func NewRandomNumberGenerator() *RandomNumberGenerator {
	return &RandomNumberGenerator{}
}

// Next returns a number like "TRB-20260831-K7KQ2M": a date component for
// rough monotonicity plus a random suffix.
func (g *RandomNumberGenerator) Next(now time.Time) string {
	buf := make([]byte, numberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure is unrecoverable; fall back to the clock
		return fmt.Sprintf("TRB-%s-%06d", now.Format("20060102"), now.UnixNano()%1000000)
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("TRB-%s-%s", now.Format("20060102"), string(buf))
}
