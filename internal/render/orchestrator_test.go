package render

import (
	"context"
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/matiaszanolli/renderpace/internal/profile"
)

func newTestOrchestrator(t *testing.T, opts ...Option) (*Orchestrator, *Manual) {
	t.Helper()
	caps := NewManual()
	o, err := New(append([]Option{WithCapabilities(caps)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(o.Close)
	return o, caps
}

// tickN advances the clock by dtMs and ticks, n times.
func tickN(o *Orchestrator, caps *Manual, n int, dtMs float64) {
	for i := 0; i < n; i++ {
		caps.Advance(dtMs)
		o.Tick()
	}
}

func TestInitialProfileIsBalanced(t *testing.T) {
	g := NewWithT(t)
	o, _ := newTestOrchestrator(t)
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Balanced))
	g.Expect(o.Metrics().AdaptiveQuality).To(Equal(1.0))
}

func TestDowngradeOnLowFPS(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)

	var transitions []string
	o.OnPerformanceChange(func(_ Metrics, p profile.Profile) {
		transitions = append(transitions, p.Name)
	})

	// three consecutive frames at 5 fps are enough: exactly one downgrade,
	// no waiting on a longer history window
	tickN(o, caps, 3, 200)
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Performance))
	g.Expect(transitions).To(Equal([]string{profile.Performance}))

	// metrics recover immediately, but the cooldown window blocks flapping
	tickN(o, caps, 60, 16)
	g.Expect(transitions).To(HaveLen(1), "no second transition inside the cooldown window")
}

func TestUpgradeNeedsComfortableMetrics(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t, WithInitialProfile(profile.Performance))

	// 100 fps, low cpu proxy, no memory capability: all upgrade conditions met
	tickN(o, caps, 12, 10)
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Balanced))

	// upgrade cooldown is the long one: 5 s must pass before the next step up
	tickN(o, caps, 20, 10)
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Balanced))
	tickN(o, caps, 600, 10)
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Ultra))
}

func TestNoUpgradePastUltra_NoDowngradePastMinimal(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t, WithInitialProfile(profile.Minimal))
	tickN(o, caps, 400, 200) // far past any cooldown, still terrible
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Minimal))

	o2, caps2 := newTestOrchestrator(t, WithInitialProfile(profile.Ultra))
	tickN(o2, caps2, 2000, 10) // excellent metrics for 20 s
	g.Expect(o2.CurrentProfile().Name).To(Equal(profile.Ultra))
}

func TestMemoryTrigger(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)
	caps.SetMemoryMB(5000) // far above every threshold

	// frame rate is fine; memory alone forces the downgrade
	tickN(o, caps, 12, 16)
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Performance))
}

func TestMemoryAbsent_NeverTriggers(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)
	tickN(o, caps, 100, 16) // healthy ticks, no memory capability
	g.Expect(o.Metrics().MemoryUsageMB).To(BeZero())
	g.Expect(o.CurrentProfile().Name).NotTo(Equal(profile.Minimal))
}

func TestSetProfile(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)

	g.Expect(o.SetProfile("turbo")).To(MatchError(ErrUnknownProfile))
	g.Expect(o.SetProfile(profile.Minimal)).To(Succeed())
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Minimal))

	// the manual override starts a fresh cooldown: sustained good metrics
	// cannot pull the profile back up inside it
	tickN(o, caps, 30, 10) // 300 ms of excellent ticks
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Minimal))

	// after the window the automatic rule reasserts itself
	tickN(o, caps, 300, 10)
	g.Expect(o.CurrentProfile().Name).To(Equal(profile.Performance))
}

func TestListeners_OrderAndUnsubscribe(t *testing.T) {
	g := NewWithT(t)
	o, _ := newTestOrchestrator(t)

	var order []string
	subA := o.OnPerformanceChange(func(Metrics, profile.Profile) { order = append(order, "a") })
	o.OnPerformanceChange(func(Metrics, profile.Profile) { order = append(order, "b") })

	g.Expect(o.SetProfile(profile.Ultra)).To(Succeed())
	g.Expect(order).To(Equal([]string{"a", "b"}))

	subA.Unsubscribe()
	g.Expect(o.SetProfile(profile.Minimal)).To(Succeed())
	g.Expect(order).To(Equal([]string{"a", "b", "b"}))
}

func TestShouldRenderPacing(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t) // balanced: 60 Hz target

	g.Expect(o.ShouldRender()).To(BeTrue(), "first call always renders")
	caps.Advance(5)
	g.Expect(o.ShouldRender()).To(BeFalse())
	caps.Advance(5)
	g.Expect(o.ShouldRender()).To(BeFalse())
	caps.Advance(10)
	g.Expect(o.ShouldRender()).To(BeTrue())
	g.Expect(o.Metrics().DroppedFrames).To(Equal(uint64(2)))
}

func TestRenderSpan(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)

	o.StartRender()
	caps.Advance(7)
	o.EndRender()
	g.Expect(o.Metrics().RenderTimeMs).To(Equal(7.0))

	// unmatched EndRender is absorbed
	o.EndRender()
	g.Expect(o.Metrics().RenderTimeMs).To(Equal(7.0))
}

func TestOptimizeData_Budget(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)

	series := make([]float64, 5000)
	for i := range series {
		series[i] = float64(i % 100)
	}

	out := o.OptimizeData(series)
	maxPoints := o.CurrentProfile().Quality.MaxDataPoints
	g.Expect(len(out)).To(BeNumerically("<=", maxPoints))
	g.Expect(o.Metrics().DataPoints).To(Equal(len(out)))

	// degrade: adaptive quality shrinks the budget further
	tickN(o, caps, 120, 200)
	out2 := o.OptimizeData(series)
	g.Expect(len(out2)).To(BeNumerically("<", len(out)))
	g.Expect(len(out2)).To(BeNumerically("<=", o.CurrentProfile().Quality.MaxDataPoints))
}

func TestAdaptiveQualityClamped(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)

	tickN(o, caps, 500, 500) // abysmal frame times for a long while
	g.Expect(o.Metrics().AdaptiveQuality).To(BeNumerically(">=", 0.1))

	tickN(o, caps, 2000, 5) // then excellent
	g.Expect(o.Metrics().AdaptiveQuality).To(BeNumerically("<=", 1.0))
}

func TestOptimizeDataArray(t *testing.T) {
	g := NewWithT(t)
	o, _ := newTestOrchestrator(t) // balanced: stride 2, ceiling 1024

	type point struct{ id int }
	items := make([]point, 5000)
	for i := range items {
		items[i] = point{id: i}
	}

	out := OptimizeDataArray(o, items)
	g.Expect(len(out)).To(BeNumerically("<=", 1024))
	g.Expect(out[0].id).To(Equal(0), "order preserved from the front")
	for i := 1; i < len(out); i++ {
		g.Expect(out[i].id).To(BeNumerically(">", out[i-1].id))
	}
}

func TestShouldUseEffect(t *testing.T) {
	g := NewWithT(t)
	o, _ := newTestOrchestrator(t, WithInitialProfile(profile.Ultra))
	g.Expect(o.ShouldUseEffect(EffectGlow)).To(BeTrue())
	g.Expect(o.ShouldUseEffect(Effect("bloom"))).To(BeFalse(), "unknown effects are never affordable")

	g.Expect(o.SetProfile(profile.Minimal)).To(Succeed())
	g.Expect(o.ShouldUseEffect(EffectGlow)).To(BeFalse())
	g.Expect(o.ShouldUseEffect(EffectAnimations)).To(BeFalse())
}

func TestExternalMetrics(t *testing.T) {
	g := NewWithT(t)
	o, _ := newTestOrchestrator(t)

	o.SetBufferHealth(1.7)
	o.SetNetworkLatency(42)
	m := o.Metrics()
	g.Expect(m.BufferHealth).To(Equal(1.0), "buffer health clamps to [0,1]")
	g.Expect(m.NetworkLatencyMs).To(Equal(42.0))
	g.Expect(m.HasNetworkLatency).To(BeTrue())
}

func TestExportPerformanceReport(t *testing.T) {
	g := NewWithT(t)
	o, caps := newTestOrchestrator(t)
	tickN(o, caps, 20, 16)
	o.StartRender()
	caps.Advance(3)
	o.EndRender()

	report := o.ExportPerformanceReport()
	g.Expect(report).To(ContainSubstring(profile.Balanced))
	g.Expect(report).To(ContainSubstring("fps"))
	g.Expect(strings.Count(report, "\n")).To(BeNumerically(">", 5))
}

func TestCloseTeardown(t *testing.T) {
	g := NewWithT(t)
	caps := NewManual()
	o, err := New(WithCapabilities(caps))
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(o.Start(context.Background())).To(Succeed())
	g.Expect(o.Start(context.Background())).To(MatchError(ErrAlreadyRunning))

	o.Close()
	o.Close() // idempotent

	g.Expect(o.ShouldRender()).To(BeFalse())
	g.Expect(o.SetProfile(profile.Ultra)).To(MatchError(ErrClosed))
	g.Expect(o.Start(context.Background())).To(MatchError(ErrClosed))
}

func TestNew_RejectsBadLadder(t *testing.T) {
	g := NewWithT(t)
	bad := profile.DefaultLadder()[:2]
	_, err := New(WithLadder(bad))
	g.Expect(err).To(HaveOccurred())

	_, err = New(WithInitialProfile("turbo"))
	g.Expect(err).To(MatchError(ErrUnknownProfile))
}
