package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/audio"
	"github.com/san-kum/chime/internal/automation"
	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/gui"
	"github.com/san-kum/chime/internal/logx"
	"github.com/san-kum/chime/internal/metrics"
	"github.com/san-kum/chime/internal/optim"
	"github.com/san-kum/chime/internal/sim"
	"github.com/san-kum/chime/internal/storage"
	"github.com/san-kum/chime/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	dt         float64
	duration   float64
	damping    float64
	gravity    float64
	integrator string
	sectors    int
	vx         float64
	vy         float64

	fps            int
	backend        string
	sectorsOverlay bool
	force          bool
	watch          bool

	sweepParams []string
	sweepMetric string
	workers     int

	trials  int
	perturb float64
	seed    int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "chime",
		Short:         "ball-in-circle simulator that plays a note per wall sector",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logx.Setup(os.Stderr, logLevel)
			return err
		},
		RunE: runWindow,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chime", "data directory for recorded runs")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "preset name (see 'presets')")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	addFrontEndFlags(rootCmd)
	rootCmd.Flags().BoolVar(&sectorsOverlay, "sectors-overlay", false, "draw sector boundaries")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "apply physics and sound changes from --config while running")

	windowCmd := &cobra.Command{
		Use:   "window",
		Short: "open the desktop window",
		Args:  cobra.NoArgs,
		RunE:  runWindow,
	}
	addFrontEndFlags(windowCmd)
	windowCmd.Flags().BoolVar(&sectorsOverlay, "sectors-overlay", false, "draw sector boundaries")
	windowCmd.Flags().BoolVar(&watch, "watch", false, "apply physics and sound changes from --config while running")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the terminal",
		Long:  "run the simulation in the terminal. Without --preset or --config a menu lets you pick and tune a preset first.",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addFrontEndFlags(liveCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultRunDt, "time step")
	runCmd.Flags().Float64VarP(&duration, "time", "t", config.DefaultRunDuration, "simulated seconds")
	runCmd.Flags().Float64Var(&damping, "damping", config.DefaultDamping, "restitution factor in (0, 1]")
	runCmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "downward acceleration")
	runCmd.Flags().StringVarP(&integrator, "integrator", "i", "euler", "integrator (euler, verlet)")
	runCmd.Flags().IntVar(&sectors, "sectors", config.DefaultSectors, "number of sound sectors")
	runCmd.Flags().Float64Var(&vx, "vx", config.DefaultVelocity, "initial x velocity")
	runCmd.Flags().Float64Var(&vy, "vy", config.DefaultVelocity, "initial y velocity")

	sweepCmd := &cobra.Command{
		Use:     "sweep",
		Short:   "run a parameter grid in parallel and rank the results",
		Example: "  chime sweep --param damping=0.5:1:0.1 --param gravity=0,510 --metric energy_drift",
		Args:    cobra.NoArgs,
		RunE:    runSweep,
	}
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=from:to:step or name=a,b,c (repeatable)")
	sweepCmd.Flags().StringVarP(&sweepMetric, "metric", "m", "energy_drift", "metric to minimise")
	sweepCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel runs (0 = one per cpu)")
	sweepCmd.Flags().Float64Var(&dt, "dt", config.DefaultRunDt, "time step")
	sweepCmd.Flags().Float64VarP(&duration, "time", "t", config.DefaultRunDuration, "simulated seconds per run")
	sweepCmd.Flags().StringVarP(&integrator, "integrator", "i", "euler", "integrator (euler, verlet)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "record every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the launch velocity and compare the opening notes",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().IntVarP(&trials, "trials", "n", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 1, "max change per velocity component")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	monteCarloCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel runs (0 = one per cpu)")
	monteCarloCmd.Flags().Float64Var(&dt, "dt", config.DefaultRunDt, "time step")
	monteCarloCmd.Flags().Float64VarP(&duration, "time", "t", 10, "simulated seconds per trial")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot height and speed of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "contact statistics, spectrum and phase portrait of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the trajectory CSV to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write metadata, samples and contacts as JSON to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [file]",
		Short: "draw a run as SVG",
		Args:  cobra.MaximumNArgs(2),
		RunE:  exportSVG,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSECTORS\tBACKEND\tGRAVITY\tDAMPING\tINTEG")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%s\t%.0f\t%.2f\t%s\n",
					name, p.Sound.Sectors, p.Sound.Backend, p.Physics.Gravity, p.Physics.Damping, p.Physics.Integrator)
			}
			return w.Flush()
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [file]",
		Short: "write the effective config to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initConfigCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	rootCmd.AddCommand(windowCmd, liveCmd, runCmd, sweepCmd, scenarioCmd, monteCarloCmd, listCmd, plotCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addFrontEndFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "frame rate cap")
	cmd.Flags().StringVar(&backend, "audio", "wav", "audio backend (wav, synth, none)")
}

// loadConfig layers defaults, preset, config file and the flags the user
// actually set, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("damping") {
		cfg.Physics.Damping = damping
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("integrator") {
		cfg.Physics.Integrator = integrator
	}
	if flags.Changed("sectors") {
		cfg.Sound.Sectors = sectors
	}
	if flags.Changed("vx") {
		cfg.Ball.VX = vx
	}
	if flags.Changed("vy") {
		cfg.Ball.VY = vy
	}
	if flags.Changed("fps") {
		cfg.Frame.FPS = fps
	}
	if flags.Changed("audio") {
		cfg.Sound.Backend = backend
	}
	if flags.Changed("sectors-overlay") {
		cfg.Frame.ShowSectors = sectorsOverlay
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func audioOptions(cfg *config.Config) audio.Options {
	return audio.Options{
		Backend:   cfg.Sound.Backend,
		Sectors:   cfg.Sound.Sectors,
		Paths:     cfg.SoundPaths(),
		Notes:     cfg.Sound.Notes,
		Volume:    cfg.Sound.Volume,
		MinImpact: cfg.Sound.MinImpact,
	}
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	world, err := cfg.Simulation()
	if err != nil {
		return err
	}

	bank, closeAudio, err := audio.Open(audioOptions(cfg), slog.Default())
	if err != nil {
		return err
	}
	defer closeAudio()
	world.AddListener(bank)

	win, err := gui.Open(gui.Options{
		Title:         "chime",
		Size:          cfg.Frame.Window,
		ArenaSegments: cfg.Frame.ArenaSegments,
		BallSegments:  cfg.Frame.BallSegments,
		ShowSectors:   cfg.Frame.ShowSectors,
		VSync:         true,
	}, slog.Default())
	if err != nil {
		return err
	}
	defer win.Close()

	driver, err := sim.New(world, sim.NewWallClock(), win, win, sim.Config{
		FPS:   cfg.Frame.FPS,
		MaxDt: cfg.Physics.MaxDt,
	})
	if err != nil {
		return err
	}
	win.OnReset(driver.Reset)

	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch needs --config")
		}
		w, err := config.Watch(configFile, func() (*config.Config, error) { return loadConfig(cmd) }, slog.Default())
		if err != nil {
			return err
		}
		defer w.Close()
		driver.AddObserver(&reloader{updates: w.Updates(), world: world, bank: bank})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("window open", "sectors", world.Sectors(), "integrator", world.Integrator().Name(), "audio", cfg.Sound.Backend)
	err = driver.Run(ctx)
	slog.Info("window closed", "frames", driver.Frames(), "contacts", world.Contacts(), "sim_time", world.Time())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	// The terminal is owned by the TUI; logs go to a file in the data dir.
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "live.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	if _, err := logx.Setup(logFile, logLevel); err != nil {
		return err
	}

	var closers []func()
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	attach := func(cfg *config.Config) arena.ContactListener {
		bank, closeAudio, err := audio.Open(audioOptions(cfg), slog.Default())
		if err != nil {
			slog.Warn("audio disabled", "err", err)
			return nil
		}
		closers = append(closers, closeAudio)
		return bank
	}

	if preset == "" && configFile == "" {
		return viz.RunInteractive(func(cfg *config.Config) arena.ContactListener {
			if cmd.Flags().Changed("audio") {
				cfg.Sound.Backend = backend
			}
			if cmd.Flags().Changed("fps") {
				cfg.Frame.FPS = fps
			}
			return attach(cfg)
		})
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = filepath.Base(configFile)
	}
	var listeners []arena.ContactListener
	if l := attach(cfg); l != nil {
		listeners = append(listeners, l)
	}
	m, err := viz.NewModel(name, cfg, sim.NewWallClock(), listeners...)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	world, err := cfg.Simulation()
	if err != nil {
		return err
	}
	frames := int(math.Round(cfg.Run.Duration / cfg.Run.Dt))
	maxDt := math.Max(cfg.Physics.MaxDt, cfg.Run.Dt)
	driver, err := sim.New(world, sim.NewStepClock(cfg.Run.Dt), nil, nil, sim.Config{
		MaxDt:     maxDt,
		MaxFrames: frames,
	})
	if err != nil {
		return err
	}

	rec := sim.NewRecorder(1)
	driver.AddObserver(rec)
	ms := metrics.Standard(cfg.Physics.Gravity)
	for _, m := range ms {
		driver.AddObserver(m)
	}

	name := preset
	if name == "" {
		name = "run"
	}
	fmt.Printf("running %s simulation...\n", name)
	start := time.Now()

	if err := driver.Run(context.Background()); err != nil {
		return err
	}
	elapsed := time.Since(start)

	values := metrics.Collect(ms)
	runID, err := st.Save(storage.RunMetadata{
		Preset:     preset,
		Dt:         cfg.Run.Dt,
		Duration:   world.Time(),
		Integrator: world.Integrator().Name(),
		Gravity:    cfg.Physics.Gravity,
		Damping:    cfg.Physics.Damping,
		Sectors:    world.Sectors(),
		Radius:     cfg.Arena.OuterRadius,
		BallRadius: cfg.Arena.BallRadius,
		Metrics:    values,
	}, rec)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", driver.Frames())
	fmt.Printf("contacts: %d\n", len(rec.Contacts))
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, m := range ms {
		fmt.Fprintf(w, "  %s\t%.6f\n", m.Name(), values[m.Name()])
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "chime.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required (sweepable: %v)", optim.ParamNames())
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, p := range sweepParams {
		name, vals, err := optim.ParseRange(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("sweeping %d runs of %.1fs...\n", len(grid.Grid()), cfg.Run.Duration)
	start := time.Now()
	points, best, err := grid.Search(ctx, cfg, sweepMetric, workers)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Metrics[sweepMetric] < points[j].Metrics[sweepMetric]
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := append(append([]string{}, names...), "ENERGY", "DRIFT", "CONTACTS/S", "CONTAINED")
	fmt.Fprintln(w, strings.ToUpper(strings.Join(header, "\t")))
	for _, p := range points {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", p.Params[n])
		}
		fmt.Fprintf(w, "%.1f\t%.6f\t%.3f\t%.4f\n",
			p.Metrics["energy"], p.Metrics["energy_drift"], p.Metrics["contact_rate"], p.Metrics["containment"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6f at %v\n", sweepMetric, best.Metrics[sweepMetric], best.Params)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("scenario: %s (%d steps)\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	ids, err := automation.RunScenario(ctx, sc, storage.New(dataDir), slog.Default())
	for _, id := range ids {
		fmt.Printf("  run id: %s\n", id)
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("time") && configFile == "" {
		cfg.Run.Duration = duration
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The unperturbed launch is the reference note sequence.
	ref, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{Base: cfg, NumTrials: 1, Seed: 1})
	if err != nil {
		return err
	}
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Seed:         seed,
		Workers:      workers,
	})
	if err != nil {
		return err
	}

	fmt.Printf("reference: %d contacts\n", ref[0].Contacts)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NOTES\tMATCHING\tSHARE")
	for _, n := range []int{1, 2, 4, 8, 16, 32} {
		if n > len(ref[0].Sectors) {
			break
		}
		_, matching := automation.MonteCarloStats(results, ref[0].Sectors[:n])
		fmt.Fprintf(w, "%d\t%d/%d\t%.1f%%\n", n, matching, len(results), 100*float64(matching)/float64(len(results)))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	contained, _ := automation.MonteCarloStats(results, nil)
	fmt.Printf("\ncontained: %d/%d\n", contained, len(results))
	return nil
}
