// Package report renders bench-run diagnostics as JSON or as an HTML page
// with interactive charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/matiaszanolli/renderpace/internal/render"
)

// Sample captures the controller's state at one point of a bench run.
type Sample struct {
	TMs          float64 `json:"t_ms"`
	FPS          float64 `json:"fps"`
	FrameTimeMs  float64 `json:"frame_time_ms"`
	CPUProxy     float64 `json:"cpu_proxy"`
	Quality      float64 `json:"adaptive_quality"`
	Profile      string  `json:"profile"`
	ProfileIndex int     `json:"profile_index"`
}

// Transition records one profile change during a run.
type Transition struct {
	TMs  float64 `json:"t_ms"`
	From string  `json:"from"`
	To   string  `json:"to"`
}

// Run is a complete bench-run record.
type Run struct {
	ID          string         `json:"id"`
	StartedAt   time.Time      `json:"started_at"`
	Description string         `json:"description"`
	Samples     []Sample       `json:"samples"`
	Transitions []Transition   `json:"transitions"`
	Final       render.Metrics `json:"final_metrics"`
}

// NewRun starts a run record with a fresh identifier.
func NewRun(description string) *Run {
	return &Run{
		ID:          uuid.New().String(),
		StartedAt:   time.Now(),
		Description: description,
	}
}

// WriteJSON serializes the run, indented for human inspection.
func (r *Run) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteHTML renders the run as a page of line charts: frame rate, frame
// time, and the profile index over the run.
func (r *Run) WriteHTML(w io.Writer) error {
	xs := make([]string, len(r.Samples))
	fps := make([]opts.LineData, len(r.Samples))
	frameTimes := make([]opts.LineData, len(r.Samples))
	profiles := make([]opts.LineData, len(r.Samples))
	for i, s := range r.Samples {
		xs[i] = fmt.Sprintf("%.1fs", s.TMs/1000)
		fps[i] = opts.LineData{Value: s.FPS}
		frameTimes[i] = opts.LineData{Value: s.FrameTimeMs}
		profiles[i] = opts.LineData{Value: s.ProfileIndex}
	}

	fpsChart := charts.NewLine()
	fpsChart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Frame rate",
			Subtitle: fmt.Sprintf("run %s — %d transitions", r.ID, len(r.Transitions)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	fpsChart.SetXAxis(xs).AddSeries("fps", fps)

	frameChart := charts.NewLine()
	frameChart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Frame time (ms)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	frameChart.SetXAxis(xs).AddSeries("frame time", frameTimes)

	profileChart := charts.NewLine()
	profileChart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Profile index",
			Subtitle: "0=ultra 1=balanced 2=performance 3=minimal",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	profileChart.SetXAxis(xs).AddSeries("profile", profiles)

	page := components.NewPage()
	page.PageTitle = "renderpace bench " + r.ID
	page.AddCharts(fpsChart, frameChart, profileChart)
	return page.Render(w)
}
