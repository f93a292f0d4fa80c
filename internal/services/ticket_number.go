package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	ticketNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ticketSuffixLength   = 9
	maxNumberAttempts    = 10
)

// ErrTicketNumberExhausted is returned when no unused ticket number could be produced
var ErrTicketNumberExhausted = errors.New("could not generate a unique ticket number")

// TicketNumberGenerator produces TKT-<unix millis>-<9 uppercase alphanumerics> numbers
// and remembers every number it returned for the life of the process.
type TicketNumberGenerator struct {
	mu     sync.Mutex
	clock  Clock
	random io.Reader
	issued map[string]struct{}
}

// NewTicketNumberGenerator creates a generator. A nil random source uses crypto/rand.
func NewTicketNumberGenerator(clock Clock, random io.Reader) *TicketNumberGenerator {
	if clock == nil {
		clock = SystemClock{}
	}
	if random == nil {
		random = rand.Reader
	}
	return &TicketNumberGenerator{
		clock:  clock,
		random: random,
		issued: make(map[string]struct{}),
	}
}

// Next returns a ticket number that this generator has never returned before
func (g *TicketNumberGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		suffix, err := g.suffix()
		if err != nil {
			return "", fmt.Errorf("failed to generate ticket number: %w", err)
		}

		number := fmt.Sprintf("TKT-%d-%s", g.clock.Now().UnixMilli(), suffix)
		if _, taken := g.issued[number]; taken {
			continue
		}

		g.issued[number] = struct{}{}
		return number, nil
	}

	return "", ErrTicketNumberExhausted
}

// suffix draws one byte per character, masks it to 6 bits and rejects values
// outside the alphabet so every character is equally likely.
func (g *TicketNumberGenerator) suffix() (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for b.Len() < ticketSuffixLength {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return "", err
		}
		n := int(buf[0] & 0x3f)
		if n >= len(ticketNumberAlphabet) {
			continue
		}
		b.WriteByte(ticketNumberAlphabet[n])
	}
	return b.String(), nil
}
