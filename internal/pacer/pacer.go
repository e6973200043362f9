// Package pacer decides which animation ticks are allowed to produce a frame
// and tracks the realized frame rate.
package pacer

const historyCapacity = 60

// Pacer gates rendering to a target frame rate. Timestamps are monotonic
// wall-clock milliseconds supplied by the caller, so the pacer itself never
// reads a clock and is fully deterministic under test.
type Pacer struct {
	frameIntervalMs float64
	targetFPS       float64

	lastFrameMs float64
	hasFrame    bool

	frameCount    int
	droppedFrames uint64

	fps            float64
	lastFPSCheckMs float64
	hasFPSCheck    bool
	history        []float64
}

func New(targetFPS float64) *Pacer {
	if targetFPS <= 0 {
		targetFPS = 60
	}
	return &Pacer{
		frameIntervalMs: 1000 / targetFPS,
		targetFPS:       targetFPS,
		history:         make([]float64, 0, historyCapacity),
	}
}

// ShouldRender reports whether a frame is due at the given timestamp. The
// first call always renders. A rejected tick counts as a dropped frame.
func (p *Pacer) ShouldRender(nowMs float64) bool {
	if p.hasFrame && nowMs-p.lastFrameMs < p.frameIntervalMs {
		p.droppedFrames++
		return false
	}
	p.lastFrameMs = nowMs
	p.hasFrame = true
	p.frameCount++
	return true
}

// UpdateFPS recomputes the realized frame rate. Callers invoke it only on
// ticks where a render actually happened; the value refreshes once at least
// one second of frames has accumulated.
func (p *Pacer) UpdateFPS(nowMs float64) {
	if !p.hasFPSCheck {
		p.lastFPSCheckMs = nowMs
		p.hasFPSCheck = true
		// the render that preceded the baseline belongs to no window
		p.frameCount = 0
		return
	}
	elapsed := nowMs - p.lastFPSCheckMs
	if elapsed < 1000 {
		return
	}
	p.fps = float64(p.frameCount) * 1000 / elapsed
	p.history = append(p.history, p.fps)
	if len(p.history) > historyCapacity {
		p.history = p.history[1:]
	}
	p.frameCount = 0
	p.lastFPSCheckMs = nowMs
}

// FPS returns the most recently computed frame rate.
func (p *Pacer) FPS() float64 { return p.fps }

// AverageFPS averages the rolling FPS history.
func (p *Pacer) AverageFPS() float64 {
	if len(p.history) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range p.history {
		sum += v
	}
	return sum / float64(len(p.history))
}

// History returns a copy of the rolling FPS history, oldest first.
func (p *Pacer) History() []float64 {
	out := make([]float64, len(p.history))
	copy(out, p.history)
	return out
}

// AdjustTargetFPS changes the pacing interval live. Used when the
// orchestrator switches to a profile with a different update rate.
func (p *Pacer) AdjustTargetFPS(targetFPS float64) {
	if targetFPS <= 0 {
		return
	}
	p.targetFPS = targetFPS
	p.frameIntervalMs = 1000 / targetFPS
}

func (p *Pacer) TargetFPS() float64 { return p.targetFPS }

// DroppedFrames returns the count of ticks where pacing rejected a render.
func (p *Pacer) DroppedFrames() uint64 { return p.droppedFrames }
