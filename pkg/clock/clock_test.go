package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemNeverGoesBackwards(t *testing.T) {
	readings := []int64{100, 105, 90, 105, 110}
	i := 0
	s := NewSystem()
	s.now = func() time.Time {
		ts := time.Unix(readings[i], 0)
		i++
		return ts
	}

	var got []uint64
	for range readings {
		got = append(got, s.Now())
	}
	assert.Equal(t, []uint64{100, 105, 105, 105, 110}, got)
}

func TestSystemTracksWallClock(t *testing.T) {
	s := NewSystem()
	now := uint64(time.Now().Unix())
	assert.InDelta(t, float64(now), float64(s.Now()), 2)
}

func TestManual(t *testing.T) {
	m := NewManual(10)
	assert.Equal(t, uint64(10), m.Now())

	m.Advance(5)
	assert.Equal(t, uint64(15), m.Now())

	m.Set(12)
	assert.Equal(t, uint64(15), m.Now(), "manual clock does not move backwards")

	m.Set(20)
	assert.Equal(t, uint64(20), m.Now())
}
