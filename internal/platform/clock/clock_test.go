package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	c := NewFake(start)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(time.Hour), c.Advance(time.Hour))

	helsinki := time.FixedZone("EEST", 3*60*60)
	c.Set(time.Date(2026, 10, 16, 12, 0, 0, 0, helsinki))
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.Equal(t, 9, c.Now().Hour())
}

func TestSystem(t *testing.T) {
	t.Parallel()
	now := System{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
