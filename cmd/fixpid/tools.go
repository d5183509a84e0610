package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/fixpid/internal/config"
	"github.com/san-kum/fixpid/internal/control"
	"github.com/san-kum/fixpid/internal/experiment"
	"github.com/san-kum/fixpid/internal/fixed"
	"github.com/san-kum/fixpid/internal/optim"
	"github.com/san-kum/fixpid/internal/tui"
)

var (
	clockFreq   float64
	ticksPerRev float64
	fixOp       string
	grid        []string
	tuneMetric  string
	tuneWorkers int
	nudge       float64
)

func coeffsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coeffs",
		Short: "show derived and incremental-form coefficients",
		Args:  cobra.NoArgs,
		RunE:  showCoefficients,
	}
	addConfigFlags(cmd)
	return cmd
}

func showCoefficients(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	g := cfg.ControlGains()
	k, err := control.Derive(g)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "sample time\t%g\n", k.SampleTime)
	fmt.Fprintf(w, "int coeff\t%g\n", k.IntCoeff)
	fmt.Fprintf(w, "der coeff 1\t%g\n", k.DerCoeff1)
	fmt.Fprintf(w, "der coeff 2\t%g\n", k.DerCoeff2)

	inc, err := control.ToIncremental(k.SampleTime, g.Kp, g.Ki, g.Kd)
	if err != nil {
		fmt.Fprintf(w, "incremental\t%v\n", err)
		return w.Flush()
	}
	fmt.Fprintf(w, "Ti\t%g\n", inc.Ti)
	fmt.Fprintf(w, "Td\t%g\n", inc.Td)
	fmt.Fprintf(w, "q0\t%g\n", inc.Q0)
	fmt.Fprintf(w, "q1\t%g\n", inc.Q1)
	fmt.Fprintf(w, "q2\t%g\n", inc.Q2)
	return w.Flush()
}

func wireCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wire",
		Short: "print fixed-point constants as verilog wires",
		Args:  cobra.NoArgs,
		RunE:  printWires,
	}
	addConfigFlags(cmd)
	cmd.Flags().Float64Var(&clockFreq, "clock", 50e6, "system clock in Hz")
	cmd.Flags().Float64Var(&ticksPerRev, "ticks", 5462.22, "encoder ticks per revolution")
	return cmd
}

func printWires(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	consts, err := control.HardwareConstants(cfg.ControlGains(), control.Datapath{
		ClockFreq:   clockFreq,
		TicksPerRev: ticksPerRev,
		SatVoltage:  cfg.Gains.OutputMax,
	})
	if err != nil {
		return err
	}
	for _, c := range consts {
		fmt.Println(c.Line())
	}
	return nil
}

func fixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [value...]",
		Short: "convert reals to fixed-point words, or apply one operation",
		Example: "  fixpid fix 0.0165 1.6452\n" +
			"  fixpid fix --q 16 --op mul -- -24 21.3",
		Args: cobra.MinimumNArgs(1),
		RunE: convertFixed,
	}
	cmd.Flags().UintVar(&qPoint, "q", config.DefaultQ, "fractional bits")
	cmd.Flags().StringVar(&fixOp, "op", "", "add, sub or mul of exactly two values")
	return cmd
}

func convertFixed(cmd *cobra.Command, args []string) error {
	f, err := fixed.NewFormat(qPoint)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	words := make([]fixed.Fixed, len(args))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "VALUE\t%s\tREAL\tERROR\n", strings.ToUpper(f.String()))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return err
		}
		x, ok := f.FromFloat(v)
		if !ok {
			return fmt.Errorf("%g: %w in %v", v, fixed.ErrOverflow, f)
		}
		words[i] = x
		back := f.ToFloat(x)
		fmt.Fprintf(w, "%g\t%s\t%g\t%.3g\n", v, fixed.Hex(x), back, back-v)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if fixOp == "" {
		return nil
	}
	if len(words) != 2 {
		return fmt.Errorf("--op needs exactly two values, got %d", len(words))
	}

	var (
		r  fixed.Fixed
		ok bool
	)
	switch fixOp {
	case "add":
		r, ok = fixed.Add(words[0], words[1])
	case "sub":
		r, ok = fixed.Sub(words[0], words[1])
	case "mul":
		r, ok = f.Mul(words[0], words[1])
	default:
		return fmt.Errorf("unknown op: %s", fixOp)
	}
	if !ok {
		fmt.Fprintf(out, "\n%s: overflow\n", fixOp)
		return nil
	}
	fmt.Fprintf(out, "\n%s = %s (%g)\n", fixOp, fixed.Hex(r), f.ToFloat(r))
	return nil
}

func tuneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tune",
		Short:   "grid search over gains",
		Example: "  fixpid tune --preset motor --grid kp=0.01:0.05:5 --grid ki=0.5:2:4",
		Args:    cobra.NoArgs,
		RunE:    tuneGains,
	}
	addConfigFlags(cmd)
	cmd.Flags().StringArrayVar(&grid, "grid", nil, "name=lo:hi:n, repeatable; names: "+strings.Join(optim.Params, ", "))
	cmd.Flags().StringVar(&tuneMetric, "metric", "iae", "metric to minimise")
	cmd.Flags().IntVar(&tuneWorkers, "workers", 0, "candidates run at once, 0 for GOMAXPROCS")
	return cmd
}

func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, rng, found := strings.Cut(spec, "=")
		parts := strings.Split(rng, ":")
		if !found || len(parts) != 3 {
			return nil, nil, fmt.Errorf("bad grid %q, want name=lo:hi:n", spec)
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, err
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, err
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		ranges = append(ranges, optim.Linspace(lo, hi, n))
	}
	return names, ranges, nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}

	gs, err := optim.NewGridSearch(names, ranges, logger)
	if err != nil {
		return err
	}
	gs.SetWorkers(tuneWorkers)
	best, err := gs.Search(context.Background(), cfg, tuneMetric)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d candidates, rejected %d\n", best.Evaluated, best.Rejected)
	fmt.Printf("best %s: %.6f\n", tuneMetric, best.Value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best.Params[name])
	}
	return nil
}

func liveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run the loop live in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(cmd)
	cmd.Flags().Float64Var(&nudge, "nudge", 10, "setpoint change per key press")
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, nil, logger)
	if err := exp.Setup(); err != nil {
		return err
	}
	return tui.Run(tui.NewLive(exp.Simulator().Loop(), exp.Setpoint(), nudge))
}
