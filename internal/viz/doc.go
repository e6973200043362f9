// Package viz is the reference host for the adaptive rendering controller: a
// terminal visualization built on Bubble Tea that drives the orchestrator
// exactly the way an embedded waveform component would.
//
// Per 60 Hz tick the model calls Tick for continuous metrics, asks
// ShouldRender for pacing, shapes a synthetic waveform through OptimizeData,
// borrows a pooled braille surface sized by OptimizedCanvasSize, and draws a
// polyline (with a glow pass when the profile affords it). The side panel
// shows live metrics, the active profile, and an FPS graph.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	P     - Cycle profile (manual override)
//	M     - Toggle waveform/spectrum view
//	?     - Toggle help
//	Q     - Quit
package viz
