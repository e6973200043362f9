package render

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ExportPerformanceReport serializes a diagnostic snapshot: current metrics,
// the active profile, aggregate FPS statistics and a plot of the recent
// frame-time history.
func (o *Orchestrator) ExportPerformanceReport() string {
	o.mu.Lock()
	m := o.metrics
	prof := o.profiles[o.current]
	frameTimes := append([]float64(nil), o.frameTimes...)
	fpsHistory := o.pace.History()
	dropped := o.pace.DroppedFrames()
	spanStats := o.spans.Stats(renderSpanLabel)
	o.mu.Unlock()

	var b strings.Builder
	b.WriteString("renderpace performance report\n")
	b.WriteString("=============================\n\n")

	fmt.Fprintf(&b, "profile:          %s (%s)\n", prof.Name, prof.Description)
	fmt.Fprintf(&b, "fps:              %.1f\n", m.FPS)
	fmt.Fprintf(&b, "frame time:       %.2f ms\n", m.FrameTimeMs)
	fmt.Fprintf(&b, "render time:      %.2f ms (avg %.2f, min %.2f, max %.2f over %d spans)\n",
		m.RenderTimeMs, spanStats.Avg, spanStats.Min, spanStats.Max, spanStats.Count)
	fmt.Fprintf(&b, "cpu proxy:        %.1f%%\n", m.CPUUsageProxy)
	fmt.Fprintf(&b, "memory:           %.1f MB\n", m.MemoryUsageMB)
	fmt.Fprintf(&b, "dropped frames:   %d\n", dropped)
	fmt.Fprintf(&b, "adaptive quality: %.2f\n", m.AdaptiveQuality)
	fmt.Fprintf(&b, "data points:      %d\n", m.DataPoints)
	fmt.Fprintf(&b, "buffer health:    %.2f\n", m.BufferHealth)
	if m.HasNetworkLatency {
		fmt.Fprintf(&b, "network latency:  %.1f ms\n", m.NetworkLatencyMs)
	}

	if len(fpsHistory) > 0 {
		fmt.Fprintf(&b, "\nfps history:      avg %.1f, min %.1f, max %.1f (%d samples)\n",
			stat.Mean(fpsHistory, nil), floats.Min(fpsHistory), floats.Max(fpsHistory), len(fpsHistory))
	}

	if len(frameTimes) >= 2 {
		b.WriteString("\nframe time (ms), recent history:\n")
		b.WriteString(asciigraph.Plot(frameTimes, asciigraph.Height(8), asciigraph.Width(60)))
		b.WriteString("\n")
	}

	return b.String()
}
