package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matiaszanolli/renderpace/internal/profile"
	"github.com/matiaszanolli/renderpace/internal/render"
	"github.com/matiaszanolli/renderpace/internal/report"
	"github.com/matiaszanolli/renderpace/internal/signal"
	"github.com/matiaszanolli/renderpace/internal/viz"
)

var (
	configFile   string
	startProfile string
	poolSize     int
	jsonOut      string
	htmlOut      string
	showReport   bool
	writePath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "renderpace",
		Short: "adaptive rendering performance controller",
		Run: func(cmd *cobra.Command, args []string) {
			// Default to the live demo when no command given
			if err := runDemo(cmd, args); err != nil {
				log.Fatal(err)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "profile tuning file (yaml)")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "run the live visualization demo",
		RunE:  runDemo,
	}
	demoCmd.Flags().StringVar(&startProfile, "profile", profile.Balanced, "starting profile")
	demoCmd.Flags().IntVar(&poolSize, "pool", 0, "surface pool size (0 = default)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "drive the controller through a scripted load curve",
		RunE:  runBench,
	}
	benchCmd.Flags().StringVar(&jsonOut, "json", "", "write run record to file (json)")
	benchCmd.Flags().StringVar(&htmlOut, "html", "", "write chart report to file (html)")
	benchCmd.Flags().BoolVar(&showReport, "report", false, "print the controller's diagnostic report")

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "list the quality profile ladder",
		RunE:  listProfiles,
	}
	profilesCmd.Flags().StringVar(&writePath, "write", "", "write the ladder to a yaml file for tuning")

	rootCmd.AddCommand(demoCmd, benchCmd, profilesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadLadder() ([]profile.Profile, error) {
	if configFile == "" {
		return profile.DefaultLadder(), nil
	}
	return profile.Load(configFile)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ladder, err := loadLadder()
	if err != nil {
		return err
	}

	opts := []render.Option{render.WithLadder(ladder)}
	if startProfile != "" {
		opts = append(opts, render.WithInitialProfile(startProfile))
	}
	if poolSize > 0 {
		opts = append(opts, render.WithPoolSize(poolSize))
	}

	orch, err := render.New(opts...)
	if err != nil {
		return err
	}
	defer orch.Close()

	return viz.Run(orch)
}

// loadStage is one segment of the bench's scripted load curve. tickMs is the
// simulated interval between animation ticks, drawMs the simulated cost of a
// render pass.
type loadStage struct {
	name       string
	durationMs float64
	tickMs     float64
	drawMs     float64
}

var loadCurve = []loadStage{
	{"calm", 5000, 16, 2},
	{"surge", 8000, 45, 12},
	{"heavy", 8000, 90, 30},
	{"recovery", 12000, 16, 2},
}

func runBench(cmd *cobra.Command, args []string) error {
	ladder, err := loadLadder()
	if err != nil {
		return err
	}

	caps := render.NewManual()
	orch, err := render.New(render.WithCapabilities(caps), render.WithLadder(ladder))
	if err != nil {
		return err
	}
	defer orch.Close()

	run := report.NewRun("calm → surge → heavy → recovery")

	prev := orch.CurrentProfile().Name
	sub := orch.OnPerformanceChange(func(_ render.Metrics, p profile.Profile) {
		run.Transitions = append(run.Transitions, report.Transition{
			TMs:  caps.NowMs(),
			From: prev,
			To:   p.Name,
		})
		prev = p.Name
	})
	defer sub.Unsubscribe()

	var lastSampleMs float64
	phase := 0.0
	for _, stage := range loadCurve {
		stageEnd := caps.NowMs() + stage.durationMs
		for caps.NowMs() < stageEnd {
			orch.Tick()
			if orch.ShouldRender() {
				orch.StartRender()
				caps.Advance(stage.drawMs)
				orch.OptimizeData(signal.Waveform(4096, phase))
				orch.EndRender()
				phase += 0.01
			}
			caps.Advance(stage.tickMs)

			if caps.NowMs()-lastSampleMs >= 250 {
				lastSampleMs = caps.NowMs()
				m := orch.Metrics()
				p := orch.CurrentProfile()
				run.Samples = append(run.Samples, report.Sample{
					TMs:          caps.NowMs(),
					FPS:          m.FPS,
					FrameTimeMs:  m.FrameTimeMs,
					CPUProxy:     m.CPUUsageProxy,
					Quality:      m.AdaptiveQuality,
					Profile:      p.Name,
					ProfileIndex: profile.Index(ladder, p.Name),
				})
			}
		}
	}
	run.Final = orch.Metrics()

	printBenchSummary(run, orch)

	if jsonOut != "" {
		if err := writeRun(jsonOut, run.WriteJSON); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonOut)
	}
	if htmlOut != "" {
		if err := writeRun(htmlOut, run.WriteHTML); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", htmlOut)
	}
	if showReport {
		fmt.Println()
		fmt.Println(orch.ExportPerformanceReport())
	}
	return nil
}

func writeRun(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func printBenchSummary(run *report.Run, orch *render.Orchestrator) {
	fmt.Printf("bench run %s\n\n", run.ID)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "T\tFPS\tFRAME MS\tCPU\tQUALITY\tPROFILE")
	step := len(run.Samples) / 12
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(run.Samples); i += step {
		s := run.Samples[i]
		fmt.Fprintf(w, "%.1fs\t%.1f\t%.1f\t%.0f%%\t%.2f\t%s\n",
			s.TMs/1000, s.FPS, s.FrameTimeMs, s.CPUProxy, s.Quality, s.Profile)
	}
	w.Flush()

	fmt.Printf("\n%d transitions:\n", len(run.Transitions))
	for _, tr := range run.Transitions {
		fmt.Printf("  %.1fs  %s → %s\n", tr.TMs/1000, tr.From, tr.To)
	}
	fmt.Printf("\nfinal profile: %s, dropped frames: %d\n",
		orch.CurrentProfile().Name, run.Final.DroppedFrames)
}

func listProfiles(cmd *cobra.Command, args []string) error {
	ladder, err := loadLadder()
	if err != nil {
		return err
	}

	if writePath != "" {
		if err := profile.Save(writePath, ladder); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", writePath)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tSCALE\tRATE\tSTRIDE\tPOINTS\tEFFECTS\tFPS<\tCPU>\tMEM>")
	for _, p := range ladder {
		q := p.Quality
		var effects []string
		if q.AntiAliasing {
			effects = append(effects, "aa")
		}
		if q.Shadows {
			effects = append(effects, "shadow")
		}
		if q.Glow {
			effects = append(effects, "glow")
		}
		if q.Animations {
			effects = append(effects, "anim")
		}
		if len(effects) == 0 {
			effects = []string{"-"}
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.0f\t%d\t%d\t%s\t%.0f\t%.0f\t%.0f\n",
			p.Name, q.RenderScale, q.UpdateRate, q.DataDecimation, q.MaxDataPoints,
			strings.Join(effects, ","), p.Triggers.FPSThreshold,
			p.Triggers.CPUThreshold, p.Triggers.MemoryThresholdMB)
	}
	return w.Flush()
}
