package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	verbose     bool
	logFile     string
	preset      string
	basePreset  string
	configFile  string
	integrator  string
	seed        int64
	frameRate   int
	theme       string
	noPreview   bool
	gifPath     string
	dt          float64
	duration    float64
	sampleEvery int
	stability   float64
	jsonOut     bool
	outFile     string
	plotWidth   int
	plotHeight  int
	svgPath     string
	trials      int
	minDist     float64
	maxDist     float64
	kick        float64
	escape      float64
	trialTime   float64
	dtGrid      []float64
	softGrid    []float64
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// main registers the gravsim commands and exits non-zero if the selected
// command fails. With no subcommand it opens the interactive preset picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "interactive orbits around a single attractor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			return nil
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file (needed while the TUI owns the terminal)")
	addLiveFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal with mouse input",
		RunE:  runLive,
	}
	addLiveFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless for a fixed duration and store the result",
		RunE:  runHeadless,
	}
	addSimFlags(runCmd)
	runCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "frame time")
	runCmd.Flags().Float64Var(&duration, "time", 60, "simulated duration in seconds")
	runCmd.Flags().IntVar(&sampleEvery, "sample", 6, "record every Nth frame")
	runCmd.Flags().Float64Var(&stability, "stability", 0, "also report the fraction of frames with every body inside this radius")
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the run as JSON instead of storing it")
	runCmd.Flags().StringVar(&gifPath, "gif", "", "also render the run to this GIF")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "also draw the final frame to this SVG (- for stdout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and orbits of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 24, "orbit plot height")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "draw the orbits to this SVG instead (- for stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital periods of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare energy drift of integrators on the same system",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().StringVar(&preset, "preset", "", "preset configuration (default solar)")
	compareCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	compareCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "frame time")
	compareCmd.Flags().Float64Var(&duration, "time", 60, "simulated duration in seconds")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario of timed spawns, pauses and removals",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&jsonOut, "json", false, "print the run as JSON instead of storing it")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "sample kicked orbits and count how many stay bound",
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringVar(&preset, "preset", "", "preset configuration (default solar)")
	monteCarloCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&minDist, "min", 100, "smallest starting distance from the attractor")
	monteCarloCmd.Flags().Float64Var(&maxDist, "max", 300, "largest starting distance from the attractor")
	monteCarloCmd.Flags().Float64Var(&kick, "kick", 0.5, "largest velocity kick per axis, as a fraction of circular speed")
	monteCarloCmd.Flags().Float64Var(&escape, "escape", 800, "distance that counts as escaped")
	monteCarloCmd.Flags().Float64Var(&dt, "dt", 1.0/60, "frame time")
	monteCarloCmd.Flags().Float64Var(&trialTime, "time", 30, "simulated duration per trial")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search dt and softening for the lowest energy drift",
		RunE:  tuneParams,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&dtGrid, "dt", []float64{1.0 / 30, 1.0 / 60, 1.0 / 120}, "frame times to try")
	tuneCmd.Flags().Float64SliceVar(&softGrid, "softening", []float64{0, 1, 5}, "softening lengths to try")
	tuneCmd.Flags().Float64Var(&trialTime, "time", 30, "simulated duration per combination")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s %d bodies, max %d\n", name, len(p.Bodies), p.MaxBodies)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file for a preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().StringVar(&basePreset, "preset", "solar", "preset to start from")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, compareCmd, scenarioCmd, monteCarloCmd, tuneCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration (default solar)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed for spawned bodies")
}

func addLiveFlags(cmd *cobra.Command) {
	addSimFlags(cmd)
	cmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (default from config)")
	cmd.Flags().StringVar(&theme, "theme", "space", "colour theme")
	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "hide trajectory previews")
	cmd.Flags().StringVar(&gifPath, "gif", "gravsim.gif", "where the g key saves its recording")
}

// setupLogging sends debug output to --log when given; the live view owns
// stderr otherwise.
func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	out := os.Stderr
	if logFile != "" {
		f, err := tea.LogToFile(logFile, "gravsim")
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file:", err)
		} else {
			out = f
		}
	}
	logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadConfig resolves --preset and --config; a config file wins over a
// preset, and flags the user set win over both.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	name := preset
	if name == "" {
		name = "solar"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, name = loaded, configFile
	}

	flags := cmd.Flags()
	if flags.Lookup("integrator") != nil && (flags.Changed("integrator") || configFile == "") {
		cfg.Integrator = integrator
	}
	if flags.Lookup("seed") != nil && (flags.Changed("seed") || cfg.Seed == 0) {
		cfg.Seed = seed
	}
	if flags.Lookup("fps") != nil && frameRate > 0 {
		cfg.FPS = frameRate
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	logger.Debug("config resolved", "source", name, "integrator", cfg.Integrator, "bodies", len(cfg.Bodies), "seed", cfg.Seed)
	return cfg, name, nil
}
