package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

func runLive(cmd *cobra.Command, args []string) error {
	opts := viz.Options{
		Theme:        theme,
		FPS:          frameRate,
		HidePreviews: noPreview,
		GIFPath:      gifPath,
	}

	if preset == "" && configFile == "" {
		logger.Debug("opening preset menu")
		return viz.RunInteractive(opts, nil)
	}

	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := sim.New(cfg)
	if err != nil {
		return err
	}
	opts.Title = filepath.Base(name)
	opts.FPS = cfg.FPS

	logger.Info("starting live view", "source", name, "fps", cfg.FPS)
	return viz.Run(s, opts)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var simOpts []sim.Option
	var gif *viz.GIFRecorder
	if gifPath != "" {
		world := r2.Box{Max: r2.Vec{X: cfg.World.Width, Y: cfg.World.Height}}
		gif = viz.NewGIFRecorder(world, 320, int(math.Round(1/dt)), max(1, sampleEvery))
		simOpts = append(simOpts, sim.WithObserver(gif))
	}

	exp, err := experiment.New(experiment.Config{
		Preset:          filepath.Base(name),
		Sim:             cfg,
		Dt:              dt,
		Duration:        duration,
		SampleEvery:     sampleEvery,
		StabilityRadius: stability,
	}, simOpts...)
	if err != nil {
		return err
	}

	logger.Info("running", "source", name, "dt", dt, "duration", duration, "integrator", cfg.Integrator)
	res, runErr := exp.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run interrupted", "frames", res.Frames)
	}

	meta := exp.Metadata(res)
	if gif != nil {
		if err := gif.Save(gifPath); err != nil {
			return fmt.Errorf("gif: %w", err)
		}
		logger.Info("gif written", "path", gifPath, "frames", gif.Len())
	}
	if svgPath != "" {
		world := r2.Box{Max: r2.Vec{X: cfg.World.Width, Y: cfg.World.Height}}
		if err := export.WriteFile(svgPath, os.Stdout, export.FrameSVG(res.Final, world, 1280)); err != nil {
			return fmt.Errorf("svg: %w", err)
		}
	}

	if jsonOut {
		return storage.ExportJSON(os.Stdout, meta, res.Recording)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, res.Recording)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	printSummary(res)
	return nil
}

func printSummary(res *experiment.Result) {
	fmt.Printf("frames: %d (t=%.2fs)\n", res.Frames, res.Time)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(res.Metrics))
	for n := range res.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s: %.6g\n", n, res.Metrics[n])
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running scenario", "name", sc.Name, "events", len(sc.Events))
	res, outcomes, err := automation.RunScenario(ctx, sc)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if jsonOut {
		meta := storage.RunMetadata{
			Preset:   sc.Name,
			Dt:       sc.Dt,
			Duration: res.Time,
			Frames:   res.Frames,
			Bodies:   len(res.Final.Bodies),
			Metrics:  res.Metrics,
		}
		return storage.ExportJSON(os.Stdout, meta, res.Recording)
	}

	if sc.Description != "" {
		fmt.Println(sc.Description)
		fmt.Println()
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tFRAME\tACTION\tRESULT")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%.2fs\t%d\t%s\t%s\n", o.At, o.Frame, o.Action, o.Result)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	printSummary(res)
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("monte carlo", "source", name, "trials", trials, "seed", seed)
	results, err := automation.RunMonteCarlo(ctx, automation.MonteCarloConfig{
		Base:         cfg,
		Trials:       trials,
		MinDistance:  minDist,
		MaxDistance:  maxDist,
		Kick:         kick,
		EscapeRadius: escape,
		Dt:           dt,
		Duration:     trialTime,
		Seed:         seed,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	bound, escaped := automation.MonteCarloStats(results)
	failed := len(results) - bound - escaped
	fmt.Printf("%d trials on %s (r in [%.0f, %.0f], kick %.2f)\n", len(results), filepath.Base(name), minDist, maxDist, kick)
	if len(results) > 0 {
		fmt.Printf("  bound:   %d (%.1f%%)\n", bound, 100*float64(bound)/float64(len(results)))
		fmt.Printf("  escaped: %d (%.1f%%)\n", escaped, 100*float64(escaped)/float64(len(results)))
	}
	if failed > 0 {
		fmt.Printf("  failed:  %d\n", failed)
		for _, r := range results {
			if r.Err != nil {
				logger.Debug("trial failed", "trial", r.Trial, "err", r.Err)
			}
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tINTEG\tBODIES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Bodies,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}
	if len(rec.Energy) == 0 && len(rec.Positions) == 0 {
		return fmt.Errorf("no data to plot")
	}

	ids := bodyIDs(rec)
	tracks := make([][]r2.Vec, len(ids))
	for i, id := range ids {
		tracks[i] = rec.Track(id)
	}
	var center *r2.Vec
	if meta.Config != nil {
		center = &r2.Vec{X: meta.Config.Attractor.X, Y: meta.Config.Attractor.Y}
	}
	if svgPath != "" {
		world := r2.Box{Max: r2.Vec{X: config.DefaultWidth, Y: config.DefaultHeight}}
		if meta.Config != nil {
			world.Max = r2.Vec{X: meta.Config.World.Width, Y: meta.Config.World.Height}
		}
		svgTracks := make([]export.Track, len(ids))
		for i, id := range ids {
			svgTracks[i] = export.Track{ID: id, Points: tracks[i]}
		}
		return export.WriteFile(svgPath, os.Stdout, export.TracksSVG(svgTracks, center, world, 1280))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(rec.Energy))

	series := map[string]func(storage.EnergyRow) float64{
		"kinetic energy":   func(r storage.EnergyRow) float64 { return r.Kinetic },
		"potential energy": func(r storage.EnergyRow) float64 { return r.Potential },
		"total energy":     func(r storage.EnergyRow) float64 { return r.Total },
	}
	for _, caption := range []string{"kinetic energy", "potential energy", "total energy"} {
		if len(rec.Energy) < 2 {
			break
		}
		data := make([]float64, len(rec.Energy))
		for i, row := range rec.Energy {
			data[i] = series[caption](row)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(caption),
		))
		fmt.Println()
	}

	fmt.Print(analysis.TrackToASCII(tracks, center, plotWidth, plotHeight))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Config == nil {
		return fmt.Errorf("run %s has no stored config", meta.ID)
	}
	rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}
	ids := bodyIDs(rec)
	if len(ids) == 0 {
		return fmt.Errorf("no position data")
	}

	sampleDt := sampleInterval(rec)
	center := r2.Vec{X: meta.Config.Attractor.X, Y: meta.Config.Attractor.Y}

	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("sample interval: %.4fs\n\n", sampleDt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tSAMPLES\tR_MIN\tR_MAX\tECC\tREVS\tT_FFT\tT_ANGLE\tT_KEPLER")
	for _, id := range ids {
		rep, err := analysis.AnalyzeOrbit(rec.Track(id), center, sampleDt, meta.Config.Attractor.Mass, meta.Config.G)
		if err != nil {
			fmt.Fprintf(w, "%d\t%d\t%s\n", id, rep.Samples, err)
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%.1f\t%.1f\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			id, rep.Samples, rep.MinRadius, rep.MaxRadius, rep.Eccentricity,
			rep.Revolutions, rep.FFTPeriod, rep.AngularPeriod, rep.KeplerPeriod)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println("\nperiods need a couple of full revolutions in the recording to be meaningful")
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := storage.ExportJSONFile(outFile, *meta, rec); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
		return nil
	}
	return storage.ExportJSON(os.Stdout, *meta, rec)
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("comparing integrators on %s (dt=%.4f, duration=%.1fs)\n\n", filepath.Base(name), dt, duration)
	fmt.Printf("%-12s  %-14s  %-12s\n", "integrator", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 42))

	rows := experiment.Compare(ctx, experiment.Config{Sim: cfg, Dt: dt, Duration: duration, SampleEvery: 1 << 30}, args)
	for _, row := range rows {
		if row.Err != nil && !errors.Is(row.Err, context.Canceled) {
			fmt.Printf("%-12s  error: %v\n", row.Integrator, row.Err)
			continue
		}
		fmt.Printf("%-12s  %14.3e  %12.2f\n", row.Integrator, row.EnergyDrift, float64(row.Elapsed.Microseconds())/1000)
	}
	return nil
}

func tuneParams(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.PreviewSteps = 0

	g, err := optim.NewGridSearch([]string{"dt", "softening"}, [][]float64{dtGrid, softGrid})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		c := cfg.Clone()
		c.Softening = params["softening"]
		return experiment.New(experiment.Config{
			Sim:         c,
			Dt:          params["dt"],
			Duration:    trialTime,
			SampleEvery: 1 << 30,
		})
	}

	logger.Info("tuning", "source", name, "combinations", len(dtGrid)*len(softGrid))
	best, trials, err := g.Search(ctx, build, "energy_drift")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSOFTENING\tENERGY_DRIFT")
	for _, t := range trials {
		if t.Err != nil {
			fmt.Fprintf(w, "%.5f\t%g\terror: %v\n", t.Params["dt"], t.Params["softening"], t.Err)
			continue
		}
		fmt.Fprintf(w, "%.5f\t%g\t%.3e\n", t.Params["dt"], t.Params["softening"], t.Value)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nbest: dt=%.5f softening=%g (drift %.3e)\n", best.Params["dt"], best.Params["softening"], best.Value)
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "gravsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	cfg := config.GetPreset(basePreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", basePreset, config.ListPresets())
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func bodyIDs(rec *storage.Recording) []int {
	seen := map[int]bool{}
	var ids []int
	for _, row := range rec.Positions {
		if !seen[row.ID] {
			seen[row.ID] = true
			ids = append(ids, row.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

// sampleInterval is the time between consecutive recorded frames.
func sampleInterval(rec *storage.Recording) float64 {
	if len(rec.Energy) >= 2 {
		return (rec.Energy[len(rec.Energy)-1].Time - rec.Energy[0].Time) / float64(len(rec.Energy)-1)
	}
	if len(rec.Positions) >= 2 {
		first := rec.Positions[0]
		for _, row := range rec.Positions[1:] {
			if row.ID == first.ID {
				return row.Time - first.Time
			}
		}
	}
	return 0
}
