package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/san-kum/convdiff/internal/config"
	"github.com/san-kum/convdiff/internal/domain"
	"github.com/san-kum/convdiff/internal/export"
	"github.com/san-kum/convdiff/internal/grid"
	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/logging"
	"github.com/san-kum/convdiff/internal/metrics"
	"github.com/san-kum/convdiff/internal/physics"
	"github.com/san-kum/convdiff/internal/sim"
	"github.com/san-kum/convdiff/internal/storage"
	"github.com/san-kum/convdiff/internal/viz"
)

var (
	dataDir  string
	logLevel string
	devLog   bool

	configFile    string
	preset        string
	timeExtent    float64
	width         float64
	accuracy      float64
	solverName    string
	maxIterations int
	tolerance     float64
	params        map[string]string
	metricsFile   string

	level      int
	point      int
	plotHeight int
	plotWidth  int

	accuracies []float64

	svgKind   string
	svgCell   float64
	svgOutput string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "convdiff",
		Short:        "1-D convection-diffusion solver",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logLevel, devLog)
			if err != nil {
				return err
			}
			cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".convdiff", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&devLog, "log-dev", false, "human-readable development logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "solve a model and store the grid",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	addSolveFlags(runCmd)
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "solve a model and browse it without storing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSolveFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&level, "level", -1, "time level to plot (negative counts from the end)")
	plotCmd.Flags().IntVar(&point, "point", -1, "also plot the history of this grid point")
	plotCmd.Flags().IntVar(&plotHeight, "height", viz.DefaultPlotOptions().Height, "plot height")
	plotCmd.Flags().IntVar(&plotWidth, "width", viz.DefaultPlotOptions().Width, "plot width")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse a stored run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run grid to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run as an SVG heatmap or profile",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "heatmap", "heatmap or profile")
	exportSVGCmd.Flags().IntVar(&level, "level", -1, "time level for profile (negative counts from the end)")
	exportSVGCmd.Flags().Float64Var(&svgCell, "cell", 4, "heatmap cell size in pixels")
	exportSVGCmd.Flags().StringVarP(&svgOutput, "output", "o", "", "output file (default stdout)")

	refineCmd := &cobra.Command{
		Use:   "refine [model]",
		Short: "solve one model at several accuracies concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  refineModel,
	}
	addSolveFlags(refineCmd)
	refineCmd.Flags().Float64SliceVar(&accuracies, "accuracies", []float64{0.1, 0.05, 0.025, 0.0125}, "grid accuracies to compare")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "compare linear solvers",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchModel,
	}
	addSolveFlags(benchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and solvers",
		RunE:  listModels,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, viewCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, refineCmd, benchCmd, presetsCmd, modelsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addSolveFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&timeExtent, "time", def.Time, "simulated time")
	cmd.Flags().Float64Var(&width, "width", def.Width, "domain width")
	cmd.Flags().Float64Var(&accuracy, "accuracy", def.Accuracy, "target spacing in space and time")
	cmd.Flags().StringVar(&solverName, "solver", def.Solver, fmt.Sprintf("linear solver %v", linalg.SolverNames()))
	cmd.Flags().IntVar(&maxIterations, "max-iterations", def.MaxIterations, "relaxation sweeps per level")
	cmd.Flags().Float64Var(&tolerance, "tolerance", def.Tolerance, "residual for early exit (0 disables)")
	cmd.Flags().StringToStringVar(&params, "param", nil, fmt.Sprintf("model parameter override, name=value %v", physics.ParamNames()))
}

// resolveConfig layers defaults, environment, preset, config file and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		if configFile == "" {
			p.Log = cfg.Log
			cfg = p
		}
	}

	if cmd.Flags().Changed("time") {
		cfg.Time = timeExtent
	}
	if cmd.Flags().Changed("width") {
		cfg.Width = width
	}
	if cmd.Flags().Changed("accuracy") {
		cfg.Accuracy = accuracy
	}
	if cmd.Flags().Changed("solver") {
		cfg.Solver = solverName
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = maxIterations
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	for name, raw := range params {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", name, err)
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[name] = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Flags().Changed("log-level") && cfg.Log.Level != logLevel {
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Development || devLog)
		if err != nil {
			return nil, err
		}
		cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
	}
	return cfg, nil
}

func buildDomain(cfg *config.Config, opts ...domain.Option) (*domain.Domain, error) {
	m, err := cfg.BuildModel()
	if err != nil {
		return nil, err
	}
	solver, err := cfg.BuildSolver()
	if err != nil {
		return nil, err
	}
	opts = append([]domain.Option{domain.WithModel(m), domain.WithSolver(solver)}, opts...)
	d, err := domain.New(cfg.Time, cfg.Width, cfg.Accuracy, opts...)
	if err != nil {
		return nil, err
	}
	d.AddMetric(metrics.NewStability(10))
	d.AddMetric(metrics.NewMaxAbs())
	d.AddMetric(metrics.NewEnergy(d.Dx()))
	d.AddMetric(metrics.NewEnergyDrift(d.Dx()))
	d.AddMetric(metrics.NewDirichletError(m, d.Dx()))
	return d, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	collector := metrics.NewCollector(cfg.Model)
	d, err := buildDomain(cfg, domain.WithObserver(collector))
	if err != nil {
		return err
	}

	fmt.Printf("solving %s on %d×%d grid...\n", cfg.Model, d.TimeSteps(), d.Width())
	start := time.Now()
	if err := d.Solve(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Model:         cfg.Model,
		Solver:        cfg.Solver,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
		Params:        d.Model().GetParams(),
	}, d)
	if err != nil {
		return err
	}
	logger.Info("run stored", "id", runID, "elapsed", elapsed)

	if metricsFile != "" {
		if err := collector.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	res := d.Result()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("levels: %d, points: %d, dx=%.4g, dt=%.4g\n", d.TimeSteps(), d.Width(), d.Dx(), d.Dt())
	fmt.Printf("max residual: %.3e\n", res.MaxResidual)
	printMetrics(res.Metrics)
	return nil
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	d, err := buildDomain(cfg)
	if err != nil {
		return err
	}
	if err := d.Solve(cmd.Context()); err != nil {
		return err
	}
	return viz.Run(d, cfg.Model, d.Dt(), d.Dx())
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tEXTENT\tGRID\tSOLVER\tMAX RES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%gx%g\t%dx%d\t%s\t%.2e\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Time,
			run.Width,
			run.TimeSteps,
			run.Points,
			run.Solver,
			run.MaxResidual,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, viz.Rows, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	rows, times, err := st.LoadGrid(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s: no data", runID)
	}
	return meta, viz.Rows(rows), times, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, rows, times, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("grid: %d levels × %d points\n\n", rows.TimeSteps(), rows.Width())

	opts := viz.PlotOptions{Height: plotHeight, Width: plotWidth}
	i := level
	if i < 0 {
		i += rows.TimeSteps()
	}
	graph, err := viz.PlotProfile(rows, i, opts)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	fmt.Printf("t = %.4g\n", times[i])

	if point >= 0 {
		graph, err := viz.PlotSeries(rows, point, opts)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(graph)
		fmt.Printf("x = %.4g\n", float64(point)*meta.Dx)
	}
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	meta, rows, _, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return viz.Run(rows, meta.Model, meta.Dt, meta.Dx)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, rows, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, rows, times)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, rows, times, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, rows, times)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, rows, _, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch svgKind {
	case "heatmap":
		svg, err = export.HeatmapSVG(rows, svgCell)
	case "profile":
		i := level
		if i < 0 {
			i += rows.TimeSteps()
		}
		u, lerr := viz.Level(rows, i)
		if lerr != nil {
			return lerr
		}
		x := make([]float64, len(u))
		for j := range x {
			x[j] = float64(j) * meta.Dx
		}
		svg, err = export.ProfileSVG(x, u, 800, 400, "#00ff00")
	default:
		return fmt.Errorf("unknown svg kind: %s (available: [heatmap profile])", svgKind)
	}
	if err != nil {
		return err
	}

	if svgOutput == "" {
		_, err = fmt.Fprintln(os.Stdout, svg)
		return err
	}
	return os.WriteFile(svgOutput, []byte(svg), 0644)
}

func refineModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := cfg.BuildModel()
	if err != nil {
		return err
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(accuracies)))
	jobs := make([]sim.Job, 0, len(accuracies))
	for _, acc := range accuracies {
		if !(acc > 0) {
			return fmt.Errorf("accuracy %g: %w", acc, linalg.ErrInvalidGridGeometry)
		}
		levels, points := domain.Levels(cfg.Time, acc), domain.Levels(cfg.Width, acc)
		g, err := grid.New(levels, points)
		if err != nil {
			return err
		}
		solver, err := cfg.BuildSolver()
		if err != nil {
			return err
		}
		jobs = append(jobs, sim.Job{
			Name:   strconv.FormatFloat(acc, 'g', -1, 64),
			Model:  m,
			Solver: solver,
			Grid:   g,
			Dx:     cfg.Width / float64(points),
			Dt:     cfg.Time / float64(levels),
		})
	}

	ensemble := sim.NewEnsemble(func() []sim.Metric {
		return []sim.Metric{metrics.NewMaxAbs(), metrics.NewStability(10)}
	})
	fmt.Printf("refining %s over %d grids...\n\n", cfg.Model, len(jobs))
	start := time.Now()
	results, err := ensemble.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}
	logging.FromContext(cmd.Context()).Info("refinement finished", "jobs", len(jobs), "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCURACY\tLEVELS\tPOINTS\tMAX RES\tMAX |U|\tENERGY(T)\tU(MID,T)")
	for k, job := range jobs {
		last, err := job.Grid.Row(job.Grid.TimeSteps() - 1)
		if err != nil {
			return err
		}
		mid := int(0.5 * cfg.Width / job.Dx)
		mid = min(mid, len(last)-1)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2e\t%.6f\t%.6f\t%.6f\n",
			job.Name,
			job.Grid.TimeSteps(),
			job.Grid.Width(),
			results[k].MaxResidual,
			results[k].Metrics["max_abs"],
			metrics.L2Energy(last, job.Dx),
			last[mid],
		)
	}
	return w.Flush()
}

func benchModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s\n\n", cfg.Model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tLEVELS\tPOINTS\tSWEEPS\tMAX RES\tTIME\tLEVELS/SEC")

	quiet := logr.Discard()
	for _, name := range linalg.SolverNames() {
		run := *cfg
		run.Solver = name
		d, err := buildDomain(&run)
		if err != nil {
			return err
		}

		start := time.Now()
		if err := d.Solve(logging.IntoContext(cmd.Context(), quiet)); err != nil {
			return err
		}
		elapsed := time.Since(start)

		res := d.Result()
		sweeps := 0
		for _, s := range res.Solves {
			sweeps += s.Iterations
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2e\t%v\t%.0f\n",
			name,
			d.TimeSteps(),
			d.Width(),
			sweeps,
			res.MaxResidual,
			elapsed.Round(time.Microsecond),
			float64(res.Steps)/elapsed.Seconds(),
		)
	}
	return w.Flush()
}

func listModels(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tEPSILON\tPRESETS")
	for _, name := range physics.ListPresets() {
		m, err := physics.Preset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%g\t%s\n", name, m.Epsilon, strings.Join(config.ListPresets(name), ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nsolvers: %s\n", strings.Join(linalg.SolverNames(), ", "))
	fmt.Printf("params:  %s\n", strings.Join(physics.ParamNames(), ", "))
	return nil
}
