package timing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced millisecond clock.
type fakeClock struct{ nowMs float64 }

func (c *fakeClock) now() float64       { return c.nowMs }
func (c *fakeClock) advance(ms float64) { c.nowMs += ms }

func TestStartEnd(t *testing.T) {
	c := &fakeClock{}
	r := NewRegistry(c.now)

	r.Start("render")
	c.advance(12.5)
	require.Equal(t, 12.5, r.End("render"))
	require.Equal(t, 12.5, r.Average("render"))
}

func TestEnd_WithoutStart(t *testing.T) {
	r := NewRegistry((&fakeClock{}).now)
	require.NotPanics(t, func() {
		require.Equal(t, 0.0, r.End("never-started"))
	})
	require.Equal(t, Stats{}, r.Stats("never-started"))
}

func TestEnd_Twice(t *testing.T) {
	c := &fakeClock{}
	r := NewRegistry(c.now)
	r.Start("x")
	c.advance(5)
	r.End("x")
	require.Equal(t, 0.0, r.End("x"), "second End must be a no-op")
	require.Equal(t, 1, r.Stats("x").Count)
}

func TestStats(t *testing.T) {
	c := &fakeClock{}
	r := NewRegistry(c.now)
	for _, d := range []float64{10, 20, 30} {
		r.Start("frame")
		c.advance(d)
		r.End("frame")
	}
	s := r.Stats("frame")
	require.Equal(t, 20.0, s.Avg)
	require.Equal(t, 10.0, s.Min)
	require.Equal(t, 30.0, s.Max)
	require.Equal(t, 3, s.Count)
}

func TestRollingEviction(t *testing.T) {
	c := &fakeClock{}
	r := NewRegistry(c.now)
	for i := 0; i < 150; i++ {
		r.Start("span")
		c.advance(1)
		r.End("span")
	}
	require.Equal(t, maxSamples, r.Stats("span").Count)
}

func TestClear(t *testing.T) {
	c := &fakeClock{}
	r := NewRegistry(c.now)
	r.Start("a")
	c.advance(3)
	r.End("a")
	r.Start("b")
	r.Clear()
	require.Equal(t, Stats{}, r.Stats("a"))
	require.Equal(t, 0.0, r.End("b"), "open spans are dropped by Clear")
	require.Empty(t, r.Labels())
}
