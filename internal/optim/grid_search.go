package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/edaniels/golog"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fixpid/internal/config"
	"github.com/san-kum/fixpid/internal/experiment"
	"github.com/san-kum/fixpid/internal/sim"
)

var (
	ErrNoCandidates = errors.New("optim: no valid candidate")
	ErrUnknownParam = errors.New("optim: unknown parameter")
)

// Params names the gains a search may vary.
var Params = []string{"kp", "ki", "kd", "b", "c", "n"}

// Best is the winning candidate of a search.
type Best struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
	Rejected  int
}

// GridSearch evaluates every combination of parameter values on a copy of a
// base run file. Candidates that fail validation or whose runs report
// controller failures are rejected.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
	logger     golog.Logger
}

func NewGridSearch(params []string, ranges [][]float64, logger golog.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for _, p := range params {
		if err := setParam(&config.Config{}, p, 0); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = golog.Global()
	}
	return &GridSearch{paramNames: params, ranges: ranges, logger: logger}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Search minimises metricName over the grid. Candidates are built and run
// by a bounded pool of workers; see SetWorkers. Ties go to the candidate
// that comes first in grid order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (*Best, error) {
	var (
		mu        sync.Mutex
		best      = &Best{Value: math.Inf(1)}
		bestIndex = -1
		missing   bool
	)

	build := func(i int) (*sim.Simulator, error) {
		cfg, err := Apply(base, g.candidate(i))
		if err != nil {
			return nil, err
		}
		exp := experiment.New(cfg, nil, g.logger)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	}

	done := func(i int, r *sim.Result, err error) {
		mu.Lock()
		defer mu.Unlock()

		if r == nil {
			g.logger.Debugw("candidate rejected", "params", g.candidate(i), "error", err)
			best.Rejected++
			return
		}
		best.Evaluated++
		if err != nil || r.Failures > 0 {
			best.Rejected++
			return
		}
		val, ok := r.Metrics[metricName]
		if !ok {
			missing = true
			return
		}
		if val < best.Value || (val == best.Value && i < bestIndex) {
			best.Value = val
			bestIndex = i
		}
	}

	err := sim.RunAll(ctx, g.Size(), g.workers, sim.Config{Duration: base.Duration}, build, done)
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, fmt.Errorf("optim: no metric %q", metricName)
	}
	if bestIndex < 0 {
		return nil, ErrNoCandidates
	}
	best.Params = g.candidate(bestIndex)
	return best, nil
}

// SetWorkers bounds how many candidates are alive at once. Zero or less
// means GOMAXPROCS.
func (g *GridSearch) SetWorkers(n int) { g.workers = n }

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// candidate decodes grid point i, with the last parameter varying fastest.
func (g *GridSearch) candidate(i int) map[string]float64 {
	p := make(map[string]float64, len(g.paramNames))
	for d := len(g.paramNames) - 1; d >= 0; d-- {
		r := g.ranges[d]
		p[g.paramNames[d]] = r[i%len(r)]
		i /= len(r)
	}
	return p
}

// Apply writes params onto a copy of base.
func Apply(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := *base
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := setParam(&cfg, name, params[name]); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func setParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "kp":
		cfg.Gains.Kp = v
	case "ki":
		cfg.Gains.Ki = v
	case "kd":
		cfg.Gains.Kd = v
	case "b":
		cfg.Gains.B = v
	case "c":
		cfg.Gains.C = v
	case "n":
		cfg.Gains.N = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}
