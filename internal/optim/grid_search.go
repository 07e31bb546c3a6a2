package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/metrics"
	"github.com/san-kum/chime/internal/sim"
)

var (
	ErrUnknownParam  = errors.New("optim: unknown parameter")
	ErrUnknownMetric = errors.New("optim: unknown metric")
)

// setters maps sweepable parameter names onto config fields.
var setters = map[string]func(*config.Config, float64){
	"gravity":     func(c *config.Config, v float64) { c.Physics.Gravity = v },
	"damping":     func(c *config.Config, v float64) { c.Physics.Damping = v },
	"vx":          func(c *config.Config, v float64) { c.Ball.VX = v },
	"vy":          func(c *config.Config, v float64) { c.Ball.VY = v },
	"x":           func(c *config.Config, v float64) { c.Ball.X = v },
	"y":           func(c *config.Config, v float64) { c.Ball.Y = v },
	"sectors":     func(c *config.Config, v float64) { c.Sound.Sectors = int(math.Round(v)) },
	"ball_radius": func(c *config.Config, v float64) { c.Arena.BallRadius = v },
}

// Apply sets the named parameter on cfg.
func Apply(cfg *config.Config, name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	set(cfg, v)
	return nil
}

// Point is one grid cell and the metrics its run produced.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := setters[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Grid enumerates every combination, last parameter varying fastest.
func (g *GridSearch) Grid() []map[string]float64 {
	var out []map[string]float64
	g.collect(0, map[string]float64{}, &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.collect(depth+1, current, out)
	}
	delete(current, name)
}

// Search runs base with every grid combination applied for base.Run.Duration
// of simulated time and returns all points plus the one minimising metricName.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string, workers int) ([]Point, Point, error) {
	if !knownMetric(metricName) {
		return nil, Point{}, fmt.Errorf("%w %q", ErrUnknownMetric, metricName)
	}

	grid := g.Grid()
	points := make([]Point, len(grid))
	sets := make([][]metrics.Metric, len(grid))
	jobs := make([]sim.Job, len(grid))

	for i, params := range grid {
		cfg := *base
		for name, v := range params {
			setters[name](&cfg, v)
		}
		world, err := cfg.Simulation()
		if err != nil {
			return nil, Point{}, fmt.Errorf("optim: %v: %w", params, err)
		}
		sets[i] = metrics.Standard(cfg.Physics.Gravity)
		obs := make([]sim.Observer, len(sets[i]))
		for k, m := range sets[i] {
			obs[k] = m
		}
		jobs[i] = sim.Job{
			World:     world,
			Dt:        cfg.Run.Dt,
			Frames:    int(math.Round(cfg.Run.Duration / cfg.Run.Dt)),
			Observers: obs,
		}
		points[i].Params = params
	}

	if err := sim.NewEnsemble(workers).Run(ctx, jobs); err != nil {
		return nil, Point{}, err
	}

	best := -1
	bestVal := math.Inf(1)
	for i := range points {
		points[i].Metrics = metrics.Collect(sets[i])
		if val := points[i].Metrics[metricName]; val < bestVal {
			best, bestVal = i, val
		}
	}
	if best < 0 {
		return points, Point{}, nil
	}
	return points, points[best], nil
}

func knownMetric(name string) bool {
	for _, m := range metrics.Standard(0) {
		if m.Name() == name {
			return true
		}
	}
	return false
}

// ParseRange reads "name=from:to:step" or "name=v1,v2,...".
func ParseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("optim: range %q: want name=from:to:step or name=a,b,c", s)
	}
	if _, known := setters[name]; !known {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}

	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		var f [3]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return "", nil, fmt.Errorf("optim: range %q: %w", s, err)
			}
			f[i] = v
		}
		from, to, step := f[0], f[1], f[2]
		if step <= 0 || to < from {
			return "", nil, fmt.Errorf("optim: range %q: need from <= to and step > 0", s)
		}
		var vals []float64
		n := int(math.Floor((to-from)/step+1e-9)) + 1
		for i := 0; i < n; i++ {
			vals = append(vals, from+float64(i)*step)
		}
		return name, vals, nil
	}

	var vals []float64
	for _, p := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("optim: range %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

// ParamNames lists the parameters a grid may sweep.
func ParamNames() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
