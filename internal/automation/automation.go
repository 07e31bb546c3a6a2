package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/chime/internal/arena"
	"github.com/san-kum/chime/internal/config"
	"github.com/san-kum/chime/internal/metrics"
	"github.com/san-kum/chime/internal/optim"
	"github.com/san-kum/chime/internal/sim"
	"github.com/san-kum/chime/internal/storage"
)

// Scenario defines a scripted sequence of recorded runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run in a scenario. Zero Duration and Dt keep
// the preset's run settings.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Config builds the validated config of a step.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Integrator != "" {
		cfg.Physics.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Run.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Run.Dt = s.Dt
	}
	for k, v := range s.Params {
		if err := optim.Apply(cfg, k, v); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Record runs cfg headless for cfg.Run.Duration and saves it to st under
// name. It returns the new run id.
func Record(ctx context.Context, cfg *config.Config, name string, st *storage.Store) (string, error) {
	world, err := cfg.Simulation()
	if err != nil {
		return "", err
	}
	rec := sim.NewRecorder(1)
	ms := metrics.Standard(cfg.Physics.Gravity)
	obs := []sim.Observer{rec}
	for _, m := range ms {
		obs = append(obs, m)
	}

	job := sim.Job{
		World:     world,
		Dt:        cfg.Run.Dt,
		Frames:    int(math.Round(cfg.Run.Duration / cfg.Run.Dt)),
		Observers: obs,
	}
	if err := sim.NewEnsemble(1).Run(ctx, []sim.Job{job}); err != nil {
		return "", err
	}

	return st.Save(storage.RunMetadata{
		Preset:     name,
		Dt:         cfg.Run.Dt,
		Duration:   world.Time(),
		Integrator: world.Integrator().Name(),
		Gravity:    cfg.Physics.Gravity,
		Damping:    cfg.Physics.Damping,
		Sectors:    world.Sectors(),
		Radius:     cfg.Arena.OuterRadius,
		BallRadius: cfg.Arena.BallRadius,
		Metrics:    metrics.Collect(ms),
	}, rec)
}

// RunScenario records every step in order and returns the run ids.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, log *slog.Logger) ([]string, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := st.Init(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return ids, fmt.Errorf("step %d: %w", i+1, err)
		}
		name := step.SaveAs
		if name == "" {
			name = step.Preset
		}
		log.Info("scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", name)

		id, err := Record(ctx, cfg, name, st)
		if err != nil {
			return ids, fmt.Errorf("step %d run: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// MonteCarloConfig perturbs the launch velocity of Base.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64 // max absolute change per velocity component
	NumTrials    int
	Seed         int64
	Workers      int
}

// MonteCarloResult holds the outcome of one perturbed launch
type MonteCarloResult struct {
	TrialID     int
	Vel         arena.Vec2
	Contacts    int
	FirstSector int // -1 without any contact
	Sectors     []int
	Contained   bool
}

// RunMonteCarlo launches NumTrials perturbed copies of Base in parallel.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs a base config and at least one trial")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, cfg.NumTrials)
	recs := make([]*sim.Recorder, cfg.NumTrials)
	contained := make([]*metrics.Containment, cfg.NumTrials)
	jobs := make([]sim.Job, cfg.NumTrials)

	for trial := range jobs {
		c := *cfg.Base
		c.Ball.VX += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		c.Ball.VY += (rng.Float64() - 0.5) * 2 * cfg.Perturbation

		world, err := c.Simulation()
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		// Samples are not needed, only contacts.
		recs[trial] = sim.NewRecorder(math.MaxInt32)
		contained[trial] = metrics.NewContainment(1e-9)
		jobs[trial] = sim.Job{
			World:     world,
			Dt:        c.Run.Dt,
			Frames:    int(math.Round(c.Run.Duration / c.Run.Dt)),
			Observers: []sim.Observer{recs[trial], contained[trial]},
		}
		results[trial] = MonteCarloResult{TrialID: trial, Vel: arena.Vec2{X: c.Ball.VX, Y: c.Ball.VY}}
	}

	if err := sim.NewEnsemble(cfg.Workers).Run(ctx, jobs); err != nil {
		return nil, err
	}

	for i := range results {
		r := &results[i]
		r.Contacts = len(recs[i].Contacts)
		r.FirstSector = -1
		r.Sectors = make([]int, 0, len(recs[i].Contacts))
		for _, c := range recs[i].Contacts {
			r.Sectors = append(r.Sectors, c.Sector)
		}
		if len(r.Sectors) > 0 {
			r.FirstSector = r.Sectors[0]
		}
		r.Contained = contained[i].Value() == 1
	}

	return results, nil
}

// MonteCarloStats counts contained trials and how many trials play the
// same opening notes as want, compared over its first len(want) sectors.
func MonteCarloStats(results []MonteCarloResult, want []int) (containedCount, matching int) {
	for _, r := range results {
		if r.Contained {
			containedCount++
		}
		if len(r.Sectors) < len(want) {
			continue
		}
		same := true
		for i, s := range want {
			if r.Sectors[i] != s {
				same = false
				break
			}
		}
		if same {
			matching++
		}
	}
	return
}
