package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)

func TestManualClockFiresInDueOrder(t *testing.T) {
	c := NewManualClock(epoch)
	var fired []string

	c.AfterFunc(150*time.Millisecond, func() { fired = append(fired, "heavy") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "recalc") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "persist") })
	assert.Equal(t, 3, c.Pending())

	c.Advance(99 * time.Millisecond)
	assert.Empty(t, fired)

	c.Advance(time.Millisecond)
	assert.Equal(t, []string{"recalc", "persist"}, fired)
	assert.Equal(t, epoch.Add(100*time.Millisecond), c.Now())

	c.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"recalc", "persist", "heavy"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestManualClockRunsTimersScheduledByCallbacks(t *testing.T) {
	c := NewManualClock(epoch)
	var at []time.Time

	c.AfterFunc(100*time.Millisecond, func() {
		at = append(at, c.Now())
		c.AfterFunc(150*time.Millisecond, func() {
			at = append(at, c.Now())
		})
	})

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, []time.Time{
		epoch.Add(100 * time.Millisecond),
		epoch.Add(250 * time.Millisecond),
	}, at)

	// Stop after the timer fired reports false.
	timer := c.AfterFunc(time.Millisecond, func() {})
	c.Advance(time.Millisecond)
	assert.False(t, timer.Stop())
}
