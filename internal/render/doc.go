// Package render implements the adaptive rendering performance controller:
// a self-regulating loop that keeps continuous visualizations inside a
// frame-time budget by trading visual fidelity for throughput.
//
// The [Orchestrator] is the single façade a visualization binds to. Per
// animation tick a host calls:
//
//	orch.Tick()                    // metrics + transition evaluation
//	if orch.ShouldRender() {
//		orch.StartRender()
//		pts := orch.OptimizeData(series)
//		w, h := orch.OptimizedCanvasSize(baseW, baseH)
//		s := orch.AcquireCanvas(w, h)
//		// ... draw pts onto s ...
//		orch.ReleaseCanvas(s)
//		orch.EndRender()
//	}
//
// The orchestrator walks a fixed four-profile ladder (ultra, balanced,
// performance, minimal) with asymmetric hysteresis: any breached trigger
// downgrades after a 2 s cooldown, while an upgrade needs every metric
// comfortably inside the thresholds and waits 5 s. Nothing in this package
// fails under normal operation; missing host capabilities degrade to inert
// defaults and misuse of the instrumentation is silently absorbed.
package render
