package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/edaniels/golog"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fixpid/internal/analysis"
	"github.com/san-kum/fixpid/internal/config"
	"github.com/san-kum/fixpid/internal/drive"
	"github.com/san-kum/fixpid/internal/experiment"
	"github.com/san-kum/fixpid/internal/sim"
	"github.com/san-kum/fixpid/internal/storage"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	arithmetic string
	qPoint     uint
	duration   float64
	kp         float64
	ki         float64
	kd         float64
	weightB    float64
	weightC    float64
	filterN    float64
	sampleFreq float64
	setpoint   float64
	outputFile string
	plotField  string

	logger golog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fixpid",
		Short:         "fixed-point PID controller lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger = golog.NewDebugLogger("fixpid")
			} else {
				logger = golog.NewDevelopmentLogger("fixpid")
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fixpid", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

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
	plotCmd.Flags().StringVar(&plotField, "field", "feedback", "feedback, output or duty")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and output spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, presetsCmd)
	rootCmd.AddCommand(coeffsCommand(), wireCommand(), fixCommand(), tuneCommand(), liveCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&arithmetic, "arithmetic", config.ArithmeticFloat, "float or fixed")
	cmd.Flags().UintVar(&qPoint, "q", config.DefaultQ, "fractional bits for fixed arithmetic")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&kp, "kp", 0, "proportional gain")
	cmd.Flags().Float64Var(&ki, "ki", 0, "integral gain")
	cmd.Flags().Float64Var(&kd, "kd", 0, "derivative gain")
	cmd.Flags().Float64Var(&weightB, "b", 1, "proportional setpoint weight")
	cmd.Flags().Float64Var(&weightC, "c", 1, "derivative setpoint weight")
	cmd.Flags().Float64Var(&filterN, "n", 100, "derivative filter coefficient")
	cmd.Flags().Float64Var(&sampleFreq, "fs", config.DefaultSampleFreq, "sample frequency in Hz")
	cmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "constant setpoint")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("arithmetic") {
		cfg.Arithmetic = arithmetic
	}
	if flags.Changed("q") {
		cfg.QPoint = qPoint
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("kp") {
		cfg.Gains.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Gains.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Gains.Kd = kd
	}
	if flags.Changed("b") {
		cfg.Gains.B = weightB
	}
	if flags.Changed("c") {
		cfg.Gains.C = weightC
	}
	if flags.Changed("n") {
		cfg.Gains.N = filterN
	}
	if flags.Changed("fs") {
		cfg.Gains.SampleFreq = sampleFreq
	}
	if flags.Changed("setpoint") {
		cfg.Setpoint = config.SetpointConfig{Kind: config.ProfileConstant, Value: setpoint}
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, nil, logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s (%s arithmetic)...\n", cfg.Name, cfg.Arithmetic)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.Failures > 0 {
		fmt.Printf("failed steps: %d\n", result.Failures)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tARITH\tKP\tKI\tKD\tFAILED")
	for _, run := range runs {
		arith := run.Arithmetic
		if run.Arithmetic == config.ArithmeticFixed {
			arith = fmt.Sprintf("Q%d", run.QPoint)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%s\t%g\t%g\t%g\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			arith,
			run.Gains.Kp, run.Gains.Ki, run.Gains.Kd,
			run.Failures,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("run %s has no samples", meta.ID)
	}

	result := &sim.Result{Samples: samples}
	var graph string
	switch plotField {
	case "feedback":
		graph = asciigraph.PlotMany(
			[][]float64{
				result.Series(func(s sim.Sample) float64 { return s.Setpoint }),
				result.Series(func(s sim.Sample) float64 { return s.Feedback }),
			},
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green),
			asciigraph.Caption(fmt.Sprintf("%s: setpoint (blue) / feedback (green)", meta.ID)),
		)
	case "output":
		graph = asciigraph.Plot(result.Series(func(s sim.Sample) float64 { return s.Output }),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: controller output", meta.ID)),
		)
	case "duty":
		graph = asciigraph.Plot(result.Series(func(s sim.Sample) float64 { return s.Duty }),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: duty %%", meta.ID)),
		)
	default:
		return fmt.Errorf("unknown field: %s", plotField)
	}

	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	r, err := analysis.Step(samples, 0.02)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "initial\t%.4f\n", r.Initial)
	fmt.Fprintf(w, "target\t%.4f rpm (%.3f rad/s)\n", r.Target, drive.RPMToRadPerSec(r.Target))
	fmt.Fprintf(w, "peak\t%.4f rpm (%.3f rad/s) at %.3fs\n", r.Peak, drive.RPMToRadPerSec(r.Peak), r.PeakTime)
	fmt.Fprintf(w, "overshoot\t%.2f%%\n", r.Overshoot)
	fmt.Fprintf(w, "rise time\t%.3fs\n", r.RiseTime)
	if r.Settled {
		fmt.Fprintf(w, "settling time (2%%)\t%.3fs\n", r.SettlingTime)
	} else {
		fmt.Fprintln(w, "settling time (2%)\tnot settled")
	}
	fmt.Fprintf(w, "steady-state error\t%.6f\n", r.SteadyStateError)

	if meta.Gains.SampleFreq > 0 {
		output := (&sim.Result{Samples: samples}).Series(func(s sim.Sample) float64 { return s.Output })
		fmt.Fprintf(w, "dominant output frequency\t%.3f Hz\n", analysis.DominantFrequency(output, meta.Gains.SampleFreq))
	}
	return w.Flush()
}

func openOutput() (*os.File, func() error, error) {
	if outputFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(out, *meta, samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	out, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(out, samples); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tARITH\tKP\tKI\tKD\tN\tFS\tACTUATOR\tSETPOINT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		arith := p.Arithmetic
		if arith == config.ArithmeticFixed {
			arith = fmt.Sprintf("Q%d", p.QPoint)
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\t%g\t%s\t%s\n",
			name, arith, p.Gains.Kp, p.Gains.Ki, p.Gains.Kd, p.Gains.N, p.Gains.SampleFreq,
			p.Actuator, p.Setpoint.Kind)
	}
	return w.Flush()
}
