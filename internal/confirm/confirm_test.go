package confirm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfirmed(t *testing.T) {
	m := NewManager()
	var got Outcome
	done := make(chan struct{})
	m.Begin("tok", time.Minute, func(o Outcome) {
		got = o
		close(done)
	})

	assert.True(t, m.Awaiting("tok"))
	assert.True(t, m.Resolve("tok", true))
	<-done
	assert.Equal(t, Confirmed, got)
	assert.False(t, m.Awaiting("tok"))
}

func TestResolveCancelled(t *testing.T) {
	m := NewManager()
	var got Outcome
	done := make(chan struct{})
	m.Begin("tok", time.Minute, func(o Outcome) {
		got = o
		close(done)
	})

	require.True(t, m.Resolve("tok", false))
	<-done
	assert.Equal(t, Cancelled, got)
}

func TestExpiry(t *testing.T) {
	m := NewManager()
	outcomes := make(chan Outcome, 1)
	m.Begin("tok", 10*time.Millisecond, func(o Outcome) {
		outcomes <- o
	})

	select {
	case o := <-outcomes:
		assert.Equal(t, Expired, o)
	case <-time.After(time.Second):
		t.Fatal("confirmation never expired")
	}

	// A late button press on the expired prompt reports stale.
	assert.False(t, m.Resolve("tok", true))
}

func TestCallbackRunsExactlyOnce(t *testing.T) {
	m := NewManager()
	calls := make(chan Outcome, 4)
	m.Begin("tok", 100*time.Millisecond, func(o Outcome) {
		calls <- o
	})

	first := m.Resolve("tok", true)
	second := m.Resolve("tok", true)
	assert.True(t, first)
	assert.False(t, second)

	// Give the expiry timer a chance to misfire.
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, calls, 1)
}

func TestUnknownToken(t *testing.T) {
	m := NewManager()
	assert.False(t, m.Resolve("nope", true))
	assert.False(t, m.Awaiting("nope"))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "expired", Expired.String())
}
