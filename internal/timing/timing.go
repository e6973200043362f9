// Package timing is a generic stopwatch registry: named start/end spans with
// rolling per-label statistics. It knows nothing about frames or quality.
package timing

import (
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const maxSamples = 100

// Stats aggregates the rolling duration window of one label.
type Stats struct {
	Avg   float64
	Min   float64
	Max   float64
	Count int
}

// Registry records durations in milliseconds per label, keeping a bounded
// rolling window per label. The clock is injected so tests never sleep.
type Registry struct {
	mu      sync.Mutex
	clock   func() float64
	samples map[string][]float64
	open    map[string]float64
}

func NewRegistry(clock func() float64) *Registry {
	return &Registry{
		clock:   clock,
		samples: make(map[string][]float64),
		open:    make(map[string]float64),
	}
}

// Start opens a span for label. A second Start before End restarts the span.
func (r *Registry) Start(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open[label] = r.clock()
}

// End closes the span for label and records its duration. An End with no
// matching Start returns 0 and records nothing.
func (r *Registry) End(label string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	start, ok := r.open[label]
	if !ok {
		return 0
	}
	delete(r.open, label)

	d := r.clock() - start
	window := append(r.samples[label], d)
	if len(window) > maxSamples {
		window = window[1:]
	}
	r.samples[label] = window
	return d
}

// Average returns the mean duration recorded for label, 0 if none.
func (r *Registry) Average(label string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	window := r.samples[label]
	if len(window) == 0 {
		return 0
	}
	return stat.Mean(window, nil)
}

// Stats returns the rolling aggregate for label.
func (r *Registry) Stats(label string) Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	window := r.samples[label]
	if len(window) == 0 {
		return Stats{}
	}
	return Stats{
		Avg:   stat.Mean(window, nil),
		Min:   floats.Min(window),
		Max:   floats.Max(window),
		Count: len(window),
	}
}

// Labels returns the labels with at least one recorded sample.
func (r *Registry) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	labels := make([]string, 0, len(r.samples))
	for label := range r.samples {
		labels = append(labels, label)
	}
	return labels
}

// Clear drops all recorded samples and open spans.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = make(map[string][]float64)
	r.open = make(map[string]float64)
}
