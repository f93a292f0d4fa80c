package services

import (
	"bytes"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketNumberPattern = regexp.MustCompile(`^TKT-\d+-[0-9A-Z]{9}$`)

func TestTicketNumberGenerator_Format(t *testing.T) {
	clock := newFakeClock(testNow)
	gen := NewTicketNumberGenerator(clock, nil)

	number, err := gen.Next()
	require.NoError(t, err)
	assert.Regexp(t, ticketNumberPattern, number)
	assert.Contains(t, number, fmt.Sprintf("TKT-%d-", testNow.UnixMilli()))
	assert.Contains(t, gen.issued, number)
}

func TestTicketNumberGenerator_RegeneratesOnCollision(t *testing.T) {
	// identical suffix twice, then a different one
	random := bytes.NewReader(append(bytes.Repeat([]byte{0}, 18), bytes.Repeat([]byte{1}, 9)...))
	gen := NewTicketNumberGenerator(newFakeClock(testNow), random)

	first, err := gen.Next()
	require.NoError(t, err)
	second, err := gen.Next()
	require.NoError(t, err)

	prefix := fmt.Sprintf("TKT-%d-", testNow.UnixMilli())
	assert.Equal(t, prefix+"000000000", first)
	assert.Equal(t, prefix+"111111111", second)
}

func TestTicketNumberGenerator_GivesUp(t *testing.T) {
	random := bytes.NewReader(bytes.Repeat([]byte{0}, 9*(maxNumberAttempts+1)))
	gen := NewTicketNumberGenerator(newFakeClock(testNow), random)

	_, err := gen.Next()
	require.NoError(t, err)

	_, err = gen.Next()
	assert.ErrorIs(t, err, ErrTicketNumberExhausted)
}

func TestTicketNumberGenerator_RandomSourceFailure(t *testing.T) {
	gen := NewTicketNumberGenerator(newFakeClock(testNow), bytes.NewReader(nil))
	_, err := gen.Next()
	assert.Error(t, err)
}

func TestTicketNumberGenerator_Concurrent(t *testing.T) {
	gen := NewTicketNumberGenerator(newFakeClock(testNow), nil)

	const workers, perWorker = 8, 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				n, err := gen.Next()
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				numbers[n] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, workers*perWorker)
}
