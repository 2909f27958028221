package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCountdown(t *testing.T) {
	c := NewCountdown()
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, Seconds, c.SecondsLeft())
	assert.False(t, c.Open())

	d := c.Display()
	assert.Equal(t, "30s", d.Label)
	assert.False(t, d.Danger)
	assert.False(t, d.InputEnabled)
	assert.Equal(t, hintIdle, d.Hint)
}

func TestCountdown_TickIgnoredWhileIdle(t *testing.T) {
	c := NewCountdown()
	assert.False(t, c.Tick())
	assert.Equal(t, Seconds, c.SecondsLeft())
	assert.Equal(t, StateIdle, c.State())
}

func TestCountdown_DecrementsByOne(t *testing.T) {
	c := NewCountdown()
	c.Start()
	for want := Seconds - 1; want >= 1; want-- {
		require.False(t, c.Tick())
		require.Equal(t, want, c.SecondsLeft())
		require.Equal(t, StateRunning, c.State())
	}
	assert.True(t, c.Tick(), "last tick should expire the round")
	assert.Equal(t, 0, c.SecondsLeft())
	assert.Equal(t, StateExpired, c.State())
}

func TestCountdown_NeverNegative(t *testing.T) {
	c := NewCountdown()
	c.Start()
	for i := 0; i < Seconds*2; i++ {
		c.Tick()
		require.GreaterOrEqual(t, c.SecondsLeft(), 0)
	}
	assert.Equal(t, 0, c.SecondsLeft())
	assert.Equal(t, StateExpired, c.State())
}

func TestCountdown_StartResets(t *testing.T) {
	c := NewCountdown()
	c.Start()
	c.Tick()
	c.Tick()
	c.Start()
	assert.Equal(t, Seconds, c.SecondsLeft())
	assert.Equal(t, StateRunning, c.State())
}

func TestCountdown_Accepts(t *testing.T) {
	c := NewCountdown()
	assert.False(t, c.Accepts("hello"), "idle round rejects")

	c.Start()
	assert.True(t, c.Accepts("hello"))
	assert.True(t, c.Accepts("  padded  "))
	assert.False(t, c.Accepts(""))
	assert.False(t, c.Accepts(" \t\n "))

	for c.State() == StateRunning {
		c.Tick()
	}
	assert.False(t, c.Accepts("hello"), "expired round rejects")
}

func TestCountdown_DangerAtFive(t *testing.T) {
	c := NewCountdown()
	c.Start()
	for i := 0; i < Seconds-DangerThreshold-1; i++ {
		c.Tick()
	}
	d := c.Display()
	require.Equal(t, 6, d.SecondsLeft)
	assert.False(t, d.Danger)

	c.Tick()
	d = c.Display()
	assert.Equal(t, "5s", d.Label)
	assert.True(t, d.Danger)
	assert.True(t, d.InputEnabled)
	assert.Equal(t, hintRunning, d.Hint)
}

func TestCountdown_ExpiredDisplay(t *testing.T) {
	c := NewCountdown()
	c.Start()
	for c.State() == StateRunning {
		c.Tick()
	}
	d := c.Display()
	assert.Equal(t, "0s", d.Label)
	assert.True(t, d.Danger)
	assert.False(t, d.InputEnabled)
	assert.Equal(t, hintExpired, d.Hint)
	assert.Equal(t, "expired", d.State.String())
}
