package surface

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAndString(t *testing.T) {
	s := newSurface(2, 1)
	s.Set(0, 0)
	got := s.String()
	require.Equal(t, "⠁⠀\n", got)
}

func TestUnset(t *testing.T) {
	s := newSurface(2, 1)
	s.Set(0, 0)
	s.Unset(0, 0)
	require.Equal(t, "⠀⠀\n", s.String())
}

func TestSet_OutOfBounds(t *testing.T) {
	s := newSurface(2, 2)
	require.NotPanics(t, func() {
		s.Set(-1, 0)
		s.Set(0, -1)
		s.Set(100, 100)
	})
}

func TestDrawLine_Endpoints(t *testing.T) {
	s := newSurface(10, 10)
	s.DrawLine(0, 0, 19, 39)
	out := s.String()
	require.NotEqual(t, newSurface(10, 10).String(), out)
	// both endpoint cells must be lit
	rows := strings.Split(out, "\n")
	require.NotEqual(t, '⠀', []rune(rows[0])[0], "start cell unlit")
	require.NotEqual(t, '⠀', []rune(rows[9])[9], "end cell unlit")
}

func TestResize(t *testing.T) {
	s := newSurface(4, 4)
	s.Set(1, 1)
	gen := s.Generation()
	s.Resize(8, 2)
	require.Equal(t, 8, s.Width())
	require.Equal(t, 2, s.Height())
	require.Greater(t, s.Generation(), gen)
	require.Equal(t, newSurface(8, 2).String(), s.String(), "resize should clear contents")
}

func TestClear(t *testing.T) {
	s := newSurface(3, 3)
	s.Set(2, 2)
	s.DrawLine(0, 0, 5, 11)
	s.Clear()
	require.Equal(t, newSurface(3, 3).String(), s.String())
}
