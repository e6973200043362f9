package render

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/matiaszanolli/renderpace/internal/decimate"
	"github.com/matiaszanolli/renderpace/internal/pacer"
	"github.com/matiaszanolli/renderpace/internal/profile"
	"github.com/matiaszanolli/renderpace/internal/surface"
	"github.com/matiaszanolli/renderpace/internal/timing"
)

var (
	ErrUnknownProfile = errors.New("render: unknown profile")
	ErrClosed         = errors.New("render: controller closed")
	ErrAlreadyRunning = errors.New("render: tick loop already running")
)

const (
	frameHistoryCapacity = 120
	cpuProxyWindow       = 10
	frameBudgetMs        = 1000.0 / 60

	// Downgrades react to degradation quickly; upgrades wait out a longer
	// window so recovery near a threshold cannot flap the profile.
	downgradeCooldownMs = 2000.0
	upgradeCooldownMs   = 5000.0

	upgradeFPSMargin   = 10.0
	upgradeCPUMargin   = 20.0
	upgradeMemMarginMB = 200.0

	memSampleIntervalMs = 1000.0
	qualitySmoothing    = 0.1
	minAdaptiveQuality  = 0.1
	minPointBudget      = 16

	// Transitions stay inert until fps is measurable at all: the first tick
	// completes no frame interval, and requiring a second sample keeps one
	// startup hitch from forcing an immediate downgrade.
	minSamplesForTransition = 2

	renderSpanLabel = "render"
	tickLoopPeriod  = 16 * time.Millisecond
)

// Effect names a quality-gated visual effect.
type Effect string

const (
	EffectAntiAliasing Effect = "anti-aliasing"
	EffectShadows      Effect = "shadows"
	EffectGlow         Effect = "glow"
	EffectAnimations   Effect = "animations"
)

// Listener receives a metrics snapshot and the newly current profile after
// every profile transition.
type Listener func(Metrics, profile.Profile)

// Orchestrator is the adaptive-quality controller a visualization binds to.
// It paces frames, shapes data series to the current profile's budget, pools
// drawing surfaces, and walks the fixed profile ladder with hysteresis as
// live metrics move.
//
// One instance serves one visualization surface, or several if handed around
// explicitly; all methods are safe for concurrent use. Close releases the
// tick loop, the sampler state, the pool and all listeners together.
type Orchestrator struct {
	mu sync.Mutex

	caps     Capabilities
	profiles []profile.Profile
	current  int

	pace    *pacer.Pacer
	spans   *timing.Registry
	pool    *surface.Pool
	metrics Metrics

	frameTimes   []float64
	lastTickMs   float64
	haveLastTick bool

	renderOpen bool

	cooldownUntilMs float64
	memAvailable    bool
	lastMemMs       float64
	haveMemSample   bool

	subs   []subscriber
	nextID uint64

	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

type subscriber struct {
	id uint64
	fn Listener
}

// Subscription is the handle returned by OnPerformanceChange; Unsubscribe
// removes the listener so components can clean up on teardown.
type Subscription struct {
	o  *Orchestrator
	id uint64
}

func (s *Subscription) Unsubscribe() {
	if s == nil || s.o == nil {
		return
	}
	s.o.mu.Lock()
	defer s.o.mu.Unlock()
	for i, sub := range s.o.subs {
		if sub.id == s.id {
			s.o.subs = append(s.o.subs[:i], s.o.subs[i+1:]...)
			break
		}
	}
	s.o = nil
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithCapabilities injects the host capability provider.
func WithCapabilities(c Capabilities) Option {
	return func(o *Orchestrator) { o.caps = c }
}

// WithLadder replaces the default profile ladder with a tuned one. The
// ladder is validated by New.
func WithLadder(ladder []profile.Profile) Option {
	return func(o *Orchestrator) { o.profiles = ladder }
}

// WithInitialProfile overrides the starting profile (default balanced).
func WithInitialProfile(name string) Option {
	return func(o *Orchestrator) { o.current = profile.Index(o.profiles, name) }
}

// WithPoolSize bounds the drawing-surface pool.
func WithPoolSize(n int) Option {
	return func(o *Orchestrator) { o.pool = surface.NewPool(n) }
}

// New builds an orchestrator starting on the balanced profile.
func New(opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		profiles:   profile.DefaultLadder(),
		current:    1, // balanced
		frameTimes: make([]float64, 0, frameHistoryCapacity),
		metrics:    Metrics{AdaptiveQuality: 1.0},
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := profile.Validate(o.profiles); err != nil {
		return nil, err
	}
	if o.current < 0 || o.current >= len(o.profiles) {
		return nil, ErrUnknownProfile
	}
	if o.caps == nil {
		o.caps = Host()
	}
	if o.pool == nil {
		o.pool = surface.NewPool(surface.DefaultPoolSize)
	}
	o.pace = pacer.New(o.profiles[o.current].Quality.UpdateRate)
	o.spans = timing.NewRegistry(o.caps.NowMs)
	return o, nil
}

// ShouldRender reports whether the current tick should produce a frame, and
// refreshes the pacing metrics when it does.
func (o *Orchestrator) ShouldRender() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	now := o.caps.NowMs()
	ok := o.pace.ShouldRender(now)
	if ok {
		o.pace.UpdateFPS(now)
		if f := o.pace.FPS(); f > 0 {
			o.metrics.FPS = f
		}
	}
	o.metrics.DroppedFrames = o.pace.DroppedFrames()
	return ok
}

// StartRender opens the render timing span. Callers pair it with EndRender
// around their drawing code, after a true ShouldRender.
func (o *Orchestrator) StartRender() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.renderOpen = true
	o.spans.Start(renderSpanLabel)
}

// EndRender closes the render span and records its duration. Without a
// matching StartRender it is a no-op.
func (o *Orchestrator) EndRender() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.renderOpen {
		return
	}
	o.renderOpen = false
	o.metrics.RenderTimeMs = o.spans.End(renderSpanLabel)
}

// Tick runs the continuous per-animation-tick update: it accumulates the
// frame-time history, recomputes fps, frame time, the CPU proxy and the
// smoothed adaptive quality, samples memory at ~1 Hz, and evaluates the
// profile transition rule. Hosts call it once per animation tick regardless
// of whether the tick rendered; a transition never affects the frame that
// just completed, only subsequent ones.
func (o *Orchestrator) Tick() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	now := o.caps.NowMs()

	if o.haveLastTick {
		if dt := now - o.lastTickMs; dt > 0 {
			o.frameTimes = append(o.frameTimes, dt)
			if len(o.frameTimes) > frameHistoryCapacity {
				o.frameTimes = o.frameTimes[1:]
			}
		}
	}
	o.lastTickMs = now
	o.haveLastTick = true

	if len(o.frameTimes) > 0 {
		avg := mean(o.frameTimes)
		o.metrics.FrameTimeMs = avg
		if avg > 0 {
			o.metrics.FPS = 1000 / avg
		}

		window := o.frameTimes
		if len(window) > cpuProxyWindow {
			window = window[len(window)-cpuProxyWindow:]
		}
		o.metrics.CPUUsageProxy = clamp(mean(window)/frameBudgetMs*50, 0, 100)

		target := clamp(o.metrics.FPS/60, minAdaptiveQuality, 1)
		q := o.metrics.AdaptiveQuality
		q += (target - q) * qualitySmoothing
		o.metrics.AdaptiveQuality = clamp(q, minAdaptiveQuality, 1)
	}

	if !o.haveMemSample || now-o.lastMemMs >= memSampleIntervalMs {
		o.lastMemMs = now
		o.haveMemSample = true
		if mb, ok := o.caps.MemoryMB(); ok {
			o.metrics.MemoryUsageMB = mb
			o.memAvailable = true
		}
	}

	notify, snapshot, prof, subs := o.evaluateTransitionLocked(now)
	o.mu.Unlock()

	if notify {
		for _, sub := range subs {
			sub.fn(snapshot, prof)
		}
	}
}

// evaluateTransitionLocked applies the hysteresis state machine. Downgrade
// fires when any trigger of the current profile is breached; upgrade needs
// every metric comfortably inside the thresholds. Returns the notification
// payload so the caller can invoke listeners outside the lock.
func (o *Orchestrator) evaluateTransitionLocked(nowMs float64) (bool, Metrics, profile.Profile, []subscriber) {
	if nowMs < o.cooldownUntilMs || len(o.frameTimes) < minSamplesForTransition {
		return false, Metrics{}, profile.Profile{}, nil
	}

	cur := o.profiles[o.current]
	m := o.metrics

	breach := m.FPS < cur.Triggers.FPSThreshold ||
		m.CPUUsageProxy > cur.Triggers.CPUThreshold ||
		(o.memAvailable && m.MemoryUsageMB > cur.Triggers.MemoryThresholdMB)
	if breach {
		if o.current >= len(o.profiles)-1 {
			return false, Metrics{}, profile.Profile{}, nil
		}
		o.current++
		o.applyProfileLocked(nowMs, downgradeCooldownMs)
		return true, o.metrics, o.profiles[o.current], append([]subscriber(nil), o.subs...)
	}

	comfortable := m.FPS > cur.Triggers.FPSThreshold+upgradeFPSMargin &&
		m.CPUUsageProxy < cur.Triggers.CPUThreshold-upgradeCPUMargin &&
		(!o.memAvailable || m.MemoryUsageMB < cur.Triggers.MemoryThresholdMB-upgradeMemMarginMB)
	if comfortable && o.current > 0 {
		o.current--
		o.applyProfileLocked(nowMs, upgradeCooldownMs)
		return true, o.metrics, o.profiles[o.current], append([]subscriber(nil), o.subs...)
	}
	return false, Metrics{}, profile.Profile{}, nil
}

func (o *Orchestrator) applyProfileLocked(nowMs, cooldownMs float64) {
	o.cooldownUntilMs = nowMs + cooldownMs
	o.pace.AdjustTargetFPS(o.profiles[o.current].Quality.UpdateRate)
}

// Optimizing reports whether a transition cooldown window is active.
func (o *Orchestrator) Optimizing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.caps.NowMs() < o.cooldownUntilMs
}

// OptimizeData shrinks a numeric series to the current profile's point
// budget scaled by the adaptive quality.
func (o *Orchestrator) OptimizeData(series []float64) []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.profiles[o.current].Quality
	budget := int(float64(q.MaxDataPoints) * o.metrics.AdaptiveQuality)
	if budget < minPointBudget {
		budget = minPointBudget
	}
	out := decimate.AdaptiveDecimate(series, budget)
	o.metrics.DataPoints = len(out)
	return out
}

// OptimizeDataArray stride-filters an arbitrary record slice: first by the
// profile's decimation stride, then by a second pass if the result still
// exceeds the profile's point ceiling. Order is preserved; the input is
// never mutated.
func OptimizeDataArray[T any](o *Orchestrator, items []T) []T {
	o.mu.Lock()
	stride := o.profiles[o.current].Quality.DataDecimation
	maxPoints := o.profiles[o.current].Quality.MaxDataPoints
	o.mu.Unlock()

	out := strideFilter(items, stride)
	if len(out) > maxPoints {
		out = strideFilter(out, int(math.Ceil(float64(len(out))/float64(maxPoints))))
	}
	return out
}

func strideFilter[T any](items []T, stride int) []T {
	if stride <= 1 {
		return items
	}
	out := make([]T, 0, len(items)/stride+1)
	for i := 0; i < len(items); i += stride {
		out = append(out, items[i])
	}
	return out
}

// ShouldUseEffect reports whether the current profile affords the effect.
func (o *Orchestrator) ShouldUseEffect(kind Effect) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.profiles[o.current].Quality
	switch kind {
	case EffectAntiAliasing:
		return q.AntiAliasing
	case EffectShadows:
		return q.Shadows
	case EffectGlow:
		return q.Glow
	case EffectAnimations:
		return q.Animations
	default:
		return false
	}
}

// SmoothingFactor returns the current profile's temporal smoothing factor.
func (o *Orchestrator) SmoothingFactor() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profiles[o.current].Quality.Smoothing
}

// UpdateRate returns the current profile's target update rate in Hz.
func (o *Orchestrator) UpdateRate() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profiles[o.current].Quality.UpdateRate
}

// OptimizedCanvasSize scales requested dimensions by the current profile's
// render scale, for handing to AcquireCanvas.
func (o *Orchestrator) OptimizedCanvasSize(width, height int) (int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	scale := o.profiles[o.current].Quality.RenderScale
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// AcquireCanvas checks a drawing surface out of the pool. Surfaces are
// borrowed for a single render pass; see surface.Pool for the reclaim
// contract.
func (o *Orchestrator) AcquireCanvas(width, height int) *surface.Surface {
	return o.pool.Acquire(width, height)
}

// ReleaseCanvas returns a surface to the pool.
func (o *Orchestrator) ReleaseCanvas(s *surface.Surface) {
	o.pool.Release(s)
}

// Metrics returns a snapshot of the live metrics.
func (o *Orchestrator) Metrics() Metrics {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.metrics
}

// CurrentProfile returns a snapshot of the active profile.
func (o *Orchestrator) CurrentProfile() profile.Profile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profiles[o.current]
}

// SetProfile manually overrides the active profile. The override resets the
// transition cooldown (a fresh downgrade-length window) so the automatic
// rule cannot immediately fight the caller; after that window the automatic
// triggers apply as usual. Listeners are notified when the profile changes.
func (o *Orchestrator) SetProfile(name string) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	idx := profile.Index(o.profiles, name)
	if idx < 0 {
		o.mu.Unlock()
		return ErrUnknownProfile
	}
	changed := idx != o.current
	o.current = idx
	o.applyProfileLocked(o.caps.NowMs(), downgradeCooldownMs)
	snapshot := o.metrics
	prof := o.profiles[o.current]
	subs := append([]subscriber(nil), o.subs...)
	o.mu.Unlock()

	if changed {
		for _, sub := range subs {
			sub.fn(snapshot, prof)
		}
	}
	return nil
}

// SetBufferHealth records the externally reported playback-buffer fullness
// ratio, clamped to [0, 1].
func (o *Orchestrator) SetBufferHealth(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metrics.BufferHealth = clamp(v, 0, 1)
}

// SetNetworkLatency records the externally reported round-trip time.
func (o *Orchestrator) SetNetworkLatency(ms float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metrics.NetworkLatencyMs = ms
	o.metrics.HasNetworkLatency = true
}

// OnPerformanceChange registers a listener for profile transitions.
// Listeners run in registration order with a fresh metrics snapshot.
func (o *Orchestrator) OnPerformanceChange(fn Listener) *Subscription {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	o.subs = append(o.subs, subscriber{id: o.nextID, fn: fn})
	return &Subscription{o: o, id: o.nextID}
}

// Start drives Tick from an internal ~60 Hz loop for hosts without their own
// animation-frame scheduling. The loop stops when ctx is cancelled or the
// orchestrator is closed.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.cancel != nil {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	done := make(chan struct{})
	o.done = done
	o.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(tickLoopPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.Tick()
			}
		}
	}()
	return nil
}

// Close tears the controller down: the tick loop, the sampler state, the
// surface pool and every listener go together, so nothing leaks a timer or
// a closure. Close is idempotent.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	cancel, done := o.cancel, o.done
	o.cancel = nil
	o.done = nil
	o.subs = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	o.pool.Cleanup()
	o.spans.Clear()
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
