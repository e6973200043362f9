// Package surface provides reusable off-screen drawing surfaces and a
// bounded pool that hands them out keyed by dimensions, avoiding per-frame
// allocation in visualization hot paths.
package surface

import "strings"

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Surface is an off-screen braille raster. Width and Height are in terminal
// cells; the drawable area in sub-pixels is (Width*2) x (Height*4).
//
// Each surface carries a generation counter that is bumped whenever the
// raster is invalidated (resize or forced pool reclaim). Callers that hold a
// surface across frames can compare generations to detect that the pool has
// repurposed it underneath them.
type Surface struct {
	width, height int
	grid          [][]rune
	generation    uint64
}

func newSurface(w, h int) *Surface {
	s := &Surface{}
	s.alloc(w, h)
	return s
}

func (s *Surface) alloc(w, h int) {
	s.width = w
	s.height = h
	s.grid = make([][]rune, h)
	for i := range s.grid {
		s.grid[i] = make([]rune, w)
		for j := range s.grid[i] {
			s.grid[i][j] = 0x2800 // Empty braille char
		}
	}
}

func (s *Surface) Width() int  { return s.width }
func (s *Surface) Height() int { return s.height }

// Generation returns the surface's invalidation counter.
func (s *Surface) Generation() uint64 { return s.generation }

// Resize reallocates the raster to the new dimensions. Prior contents are
// lost and the generation counter is bumped.
func (s *Surface) Resize(w, h int) {
	s.alloc(w, h)
	s.generation++
}

// Set lights the sub-pixel at (x, y).
func (s *Surface) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= s.width || row >= s.height {
		return
	}

	s.grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Unset clears the sub-pixel at (x, y).
func (s *Surface) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= s.width || row >= s.height {
		return
	}

	s.grid[row][col] &= ^rune(pixelMap[y%4][x%2])
	if s.grid[row][col] < 0x2800 {
		s.grid[row][col] = 0x2800
	}
}

// Clear resets the raster without reallocating.
func (s *Surface) Clear() {
	for i := range s.grid {
		for j := range s.grid[i] {
			s.grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line in sub-pixel coordinates using Bresenham's algorithm.
func (s *Surface) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		s.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (s *Surface) String() string {
	var b strings.Builder
	for _, row := range s.grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
