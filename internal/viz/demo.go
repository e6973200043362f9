package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/matiaszanolli/renderpace/internal/easing"
	"github.com/matiaszanolli/renderpace/internal/profile"
	"github.com/matiaszanolli/renderpace/internal/render"
	"github.com/matiaszanolli/renderpace/internal/signal"
	"github.com/matiaszanolli/renderpace/internal/surface"
)

const (
	baseWidth       = 80
	baseHeight      = 20
	sourcePoints    = 4096
	graphHistoryCap = 120
)

type TickMsg time.Time

// Model hosts the orchestrator the way a real visualization component would:
// one tick callback that asks for pacing, shapes its data, borrows a pooled
// surface, draws, and reads back metrics for the side panel.
type Model struct {
	orch *render.Orchestrator

	phase      float64
	pulse      float64
	spectrum   bool
	paused     bool
	showHelp   bool
	frame      string
	fpsHistory []float64

	profileName string
	transitions int
}

func NewModel(orch *render.Orchestrator) Model {
	return Model{
		orch:        orch,
		profileName: orch.CurrentProfile().Name,
		fpsHistory:  make([]float64, 0, graphHistoryCap),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "p":
			m.cycleProfile()
		case "m":
			m.spectrum = !m.spectrum
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if !m.paused {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// cycleProfile manually overrides to the next profile down the ladder,
// wrapping back to ultra.
func (m *Model) cycleProfile() {
	ladder := profile.DefaultLadder()
	idx := profile.Index(ladder, m.orch.CurrentProfile().Name)
	next := ladder[(idx+1)%len(ladder)].Name
	if err := m.orch.SetProfile(next); err == nil {
		m.profileName = next
	}
}

// step is the per-animation-tick body: continuous metrics update first, then
// the paced render pass.
func (m *Model) step() {
	m.orch.Tick()
	// the playback transport would report this in the real app
	m.orch.SetBufferHealth(signal.Meter(m.phase))

	if name := m.orch.CurrentProfile().Name; name != m.profileName {
		m.profileName = name
		m.transitions++
	}

	if m.orch.ShouldRender() {
		m.orch.StartRender()
		m.draw()
		m.orch.EndRender()
	}

	met := m.orch.Metrics()
	if met.FPS > 0 {
		m.fpsHistory = append(m.fpsHistory, met.FPS)
		if len(m.fpsHistory) > graphHistoryCap {
			m.fpsHistory = m.fpsHistory[1:]
		}
	}
}

// draw renders one frame onto a pooled surface at the profile's render scale
// and point budget.
func (m *Model) draw() {
	var series []float64
	if m.spectrum {
		series = signal.Spectrum(sourcePoints/4, m.phase)
	} else {
		series = signal.Waveform(sourcePoints, m.phase)
	}
	pts := m.orch.OptimizeData(series)

	w, h := m.orch.OptimizedCanvasSize(baseWidth, baseHeight)
	s := m.orch.AcquireCanvas(w, h)
	s.Clear()

	if m.spectrum {
		m.drawBars(s, pts)
	} else {
		m.drawPolyline(s, pts)
	}

	m.frame = s.String()
	m.orch.ReleaseCanvas(s)

	if m.orch.ShouldUseEffect(render.EffectAnimations) {
		m.phase += 0.008
		m.pulse += 0.02
		if m.pulse > 1 {
			m.pulse -= 1
		}
	} else {
		m.phase += 0.002
	}
}

func (m *Model) drawPolyline(s *surface.Surface, pts []float64) {
	subW := s.Width() * 2
	subH := s.Height() * 4
	mid := subH / 2
	glow := m.orch.ShouldUseEffect(render.EffectGlow)

	// breathing amplitude envelope, eased so the pulse has no corners
	amp := 1.0
	if m.orch.ShouldUseEffect(render.EffectAnimations) {
		amp = 0.7 + 0.3*easing.InOutSine(m.pulse)
	}

	prevX, prevY := -1, -1
	for i, v := range pts {
		x := i * (subW - 1) / max(len(pts)-1, 1)
		y := mid - int(v*amp*float64(mid-1))
		if prevX >= 0 {
			s.DrawLine(prevX, prevY, x, y)
			if glow {
				s.DrawLine(prevX, prevY+1, x, y+1)
			}
		}
		prevX, prevY = x, y
	}
}

func (m *Model) drawBars(s *surface.Surface, pts []float64) {
	subW := s.Width() * 2
	subH := s.Height() * 4

	peak := 0.0
	for _, v := range pts {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}
	for i, v := range pts {
		x := i * (subW - 1) / max(len(pts)-1, 1)
		top := subH - 1 - int(v/peak*float64(subH-1))
		s.DrawLine(x, subH-1, x, top)
	}
}

func (m Model) View() string {
	canvas := canvasStyle.Render(m.frame)
	stats := statsStyle.Render(m.statsPanel())
	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas, stats)
	if m.showHelp {
		body += helpStyle.Render("\n  space pause · p cycle profile · m waveform/spectrum · ? help · q quit")
	}
	return body
}

func (m Model) statsPanel() string {
	met := m.orch.Metrics()
	prof := m.orch.CurrentProfile()

	var b strings.Builder
	b.WriteString(headerStyle.Render("renderpace demo"))
	b.WriteString("\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	profName := prof.Name
	if m.orch.Optimizing() {
		profName += " (settling)"
	}
	row("profile", profName)
	row("fps", fmt.Sprintf("%.1f", met.FPS))
	row("frame time", fmt.Sprintf("%.2f ms", met.FrameTimeMs))
	row("render time", fmt.Sprintf("%.2f ms", met.RenderTimeMs))
	row("cpu proxy", fmt.Sprintf("%.0f%%", met.CPUUsageProxy))
	row("quality", fmt.Sprintf("%.2f", met.AdaptiveQuality))
	row("data points", fmt.Sprintf("%d", met.DataPoints))
	row("buffer", fmt.Sprintf("%.0f%%", met.BufferHealth*100))
	if met.DroppedFrames > 0 {
		b.WriteString(labelStyle.Render("dropped"))
		b.WriteString(alertStyle.Render(fmt.Sprintf("%d", met.DroppedFrames)))
		b.WriteString("\n")
	}
	row("transitions", fmt.Sprintf("%d", m.transitions))

	if len(m.fpsHistory) >= 2 {
		b.WriteString(graphStyle.Render(asciigraph.Plot(m.fpsHistory,
			asciigraph.Height(6), asciigraph.Width(36))))
	}

	if m.paused {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render("paused"))
	}
	return b.String()
}

// Run starts the demo TUI around an orchestrator the caller owns.
func Run(orch *render.Orchestrator) error {
	p := tea.NewProgram(NewModel(orch), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
