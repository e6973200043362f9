package render

import (
	"runtime"
	"sync"
	"time"
)

// Capabilities abstracts the host facilities the controller samples: a
// monotonic millisecond clock and optional heap introspection. Injecting it
// keeps the state machine testable without a real host and lets missing
// facilities degrade to inert defaults instead of failing.
type Capabilities interface {
	// NowMs returns monotonic milliseconds.
	NowMs() float64
	// MemoryMB reports the current heap footprint. ok is false when the
	// host offers no memory introspection; the controller then freezes the
	// metric at 0 and excludes memory from transition triggers.
	MemoryMB() (float64, bool)
}

type runtimeCaps struct {
	epoch time.Time
}

// Host returns Capabilities backed by the Go runtime: wall clock plus
// runtime.ReadMemStats heap sampling.
func Host() Capabilities {
	return &runtimeCaps{epoch: time.Now()}
}

func (c *runtimeCaps) NowMs() float64 {
	return float64(time.Since(c.epoch)) / float64(time.Millisecond)
}

func (c *runtimeCaps) MemoryMB() (float64, bool) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / (1 << 20), true
}

// Manual is a hand-advanced Capabilities implementation for tests and
// headless bench runs. The zero value has no memory introspection.
type Manual struct {
	mu     sync.Mutex
	nowMs  float64
	memMB  float64
	hasMem bool
}

func NewManual() *Manual { return &Manual{} }

// Advance moves the clock forward by ms.
func (m *Manual) Advance(ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowMs += ms
}

// SetMemoryMB enables memory introspection and pins the reported value.
func (m *Manual) SetMemoryMB(mb float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memMB = mb
	m.hasMem = true
}

func (m *Manual) NowMs() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nowMs
}

func (m *Manual) MemoryMB() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memMB, m.hasMem
}
