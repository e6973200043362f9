package render

// Metrics is the controller's view of live rendering performance. The
// orchestrator owns the mutable instance; callers only ever see value
// snapshots from Metrics().
type Metrics struct {
	// FPS is the rolling realized frame rate.
	FPS float64 `json:"fps"`
	// FrameTimeMs is the rolling average inter-frame interval.
	FrameTimeMs float64 `json:"frame_time_ms"`
	// RenderTimeMs is the duration of the last completed render span.
	RenderTimeMs float64 `json:"render_time_ms"`
	// CPUUsageProxy (0-100) is derived from frame-time overshoot relative
	// to a 60 fps budget; it is not an OS CPU reading.
	CPUUsageProxy float64 `json:"cpu_usage_proxy"`
	// MemoryUsageMB is sampled at ~1 Hz from heap introspection when the
	// host provides it, else stays 0.
	MemoryUsageMB float64 `json:"memory_usage_mb"`
	// DroppedFrames counts ticks where pacing rejected a render.
	DroppedFrames uint64 `json:"dropped_frames"`
	// AdaptiveQuality is a smoothed fps/60 proxy clamped to [0.1, 1.0].
	AdaptiveQuality float64 `json:"adaptive_quality"`
	// DataPoints is the size of the most recently decimated series.
	DataPoints int `json:"data_points"`
	// BufferHealth is the externally reported playback-buffer fullness
	// ratio in [0, 1].
	BufferHealth float64 `json:"buffer_health"`
	// NetworkLatencyMs is the externally reported round-trip time; valid
	// only when HasNetworkLatency is set.
	NetworkLatencyMs  float64 `json:"network_latency_ms,omitempty"`
	HasNetworkLatency bool    `json:"has_network_latency,omitempty"`
}
