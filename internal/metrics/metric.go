package metrics

import "github.com/san-kum/chime/internal/sim"

// Metric is a frame observer that reduces a run to one number.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Standard returns the metrics recorded for every run.
func Standard(gravity float64) []Metric {
	return []Metric{
		NewEnergy(gravity),
		NewEnergyDrift(gravity),
		NewContactRate(),
		NewContainment(1e-9),
	}
}

func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
