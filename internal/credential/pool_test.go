package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RoundRobinFairness(t *testing.T) {
	p := NewPool([]string{"a", "b", "c"}, 10)

	seen := map[string]int{}
	for range 3 {
		c := p.Acquire()
		require.NotNil(t, c)
		seen[c.Token]++
	}
	// Every credential returned once before any repeats.
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)

	c := p.Acquire()
	require.NotNil(t, c)
	assert.Equal(t, "a", c.Token)
}

func TestPool_DrainsAtCapThenResets(t *testing.T) {
	const n, perKey = 2, 3
	p := NewPool([]string{"k1", "k2"}, perKey)

	for i := 0; i < n*perKey; i++ {
		require.NotNil(t, p.Acquire(), "acquisition %d", i)
	}
	assert.Nil(t, p.Acquire())
	assert.Equal(t, 0, p.Available())

	// Simulate a calendar-day rollover.
	p.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	c := p.Acquire()
	require.NotNil(t, c)
	assert.Equal(t, n, p.Available())
}

func TestPool_MarkExhaustedSkipsKey(t *testing.T) {
	p := NewPool([]string{"a", "b"}, 100)

	c := p.Acquire()
	require.Equal(t, "a", c.Token)
	p.MarkExhausted(c)

	for range 4 {
		got := p.Acquire()
		require.NotNil(t, got)
		assert.Equal(t, "b", got.Token)
	}
	assert.Equal(t, 1, p.Available())
}

func TestPool_ResetClearsExhaustion(t *testing.T) {
	p := NewPool([]string{"only"}, 100)

	c := p.Acquire()
	p.MarkExhausted(c)
	assert.Nil(t, p.Acquire())

	p.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	assert.NotNil(t, p.Acquire())
}

func TestPool_AllExhaustedReturnsNil(t *testing.T) {
	p := NewPool([]string{"a", "b"}, 100)
	p.MarkExhausted(p.Acquire())
	p.MarkExhausted(p.Acquire())
	assert.Nil(t, p.Acquire())
}
