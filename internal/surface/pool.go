package surface

import "sync"

// DefaultPoolSize bounds the number of surfaces a pool retains.
const DefaultPoolSize = 8

// Pool hands out reusable surfaces keyed by exact dimensions. It retains at
// most maxSize surfaces; once full, an Acquire that finds no free match
// forcibly reclaims the least-recently-added surface and resizes it. That
// last-resort reuse assumes the evicted surface's previous owner already
// finished with it, so callers must treat acquired surfaces as borrowed for
// a single render pass and release them promptly.
type Pool struct {
	mu       sync.Mutex
	maxSize  int
	surfaces []*Surface
	inUse    map[*Surface]struct{}
}

func NewPool(maxSize int) *Pool {
	if maxSize <= 0 {
		maxSize = DefaultPoolSize
	}
	return &Pool{
		maxSize: maxSize,
		inUse:   make(map[*Surface]struct{}),
	}
}

// Acquire returns a surface of exactly the requested dimensions, reusing a
// free pooled surface when one matches, allocating while spare capacity
// remains, and reclaiming the oldest surface once the pool is full.
func (p *Pool) Acquire(width, height int) *Surface {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.surfaces {
		if _, busy := p.inUse[s]; busy {
			continue
		}
		if s.width == width && s.height == height {
			p.inUse[s] = struct{}{}
			return s
		}
	}

	if len(p.surfaces) < p.maxSize {
		s := newSurface(width, height)
		p.surfaces = append(p.surfaces, s)
		p.inUse[s] = struct{}{}
		return s
	}

	// Forced reclaim: repurpose the oldest surface. Resizing clears the
	// raster and bumps its generation so a stale holder can detect the
	// reclaim. The reclaimed surface moves to the back of the list to keep
	// eviction round-robin.
	s := p.surfaces[0]
	p.surfaces = append(p.surfaces[1:], s)
	s.Resize(width, height)
	p.inUse[s] = struct{}{}
	return s
}

// Release returns a surface to the pool without destroying it. Releasing a
// surface the pool does not consider checked out is a no-op.
func (p *Pool) Release(s *Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inUse, s)
}

// Cleanup clears the raster content of every pooled surface and empties the
// in-use set. Intended for teardown, not between frames.
func (p *Pool) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.surfaces {
		s.Clear()
	}
	p.inUse = make(map[*Surface]struct{})
}

// Size returns the number of surfaces the pool currently retains.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.surfaces)
}

// InUse returns the number of surfaces currently checked out.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inUse)
}
