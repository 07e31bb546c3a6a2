package optim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/chime/internal/config"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		want    []float64
		wantErr bool
	}{
		{"damping=0.5:1:0.25", "damping", []float64{0.5, 0.75, 1}, false},
		{"gravity=0,255,510", "gravity", []float64{0, 255, 510}, false},
		{"sectors=8", "sectors", []float64{8}, false},
		{"damping=1:0:0.1", "", nil, true},
		{"damping=0:1:0", "", nil, true},
		{"spin=1,2", "", nil, true},
		{"gravity", "", nil, true},
		{"gravity=a,b", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, vals, err := ParseRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			require.Len(t, vals, len(tt.want))
			assert.InDeltaSlice(t, tt.want, vals, 1e-9)
		})
	}
}

func TestParseRangeUnknownParam(t *testing.T) {
	_, _, err := ParseRange("spin=1")
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestApply(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, Apply(cfg, "sectors", 11.6))
	assert.Equal(t, 12, cfg.Sound.Sectors)
	require.NoError(t, Apply(cfg, "ball_radius", 5))
	assert.Equal(t, 5.0, cfg.Arena.BallRadius)
	assert.ErrorIs(t, Apply(cfg, "spin", 1), ErrUnknownParam)
}

func TestParamNames(t *testing.T) {
	names := ParamNames()
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "damping")
	assert.Contains(t, names, "gravity")
}

func TestGrid(t *testing.T) {
	g, err := NewGridSearch([]string{"damping", "gravity"}, [][]float64{{0.5, 1}, {0, 100, 200}})
	require.NoError(t, err)

	grid := g.Grid()
	require.Len(t, grid, 6)
	assert.Equal(t, map[string]float64{"damping": 0.5, "gravity": 0}, grid[0])
	assert.Equal(t, map[string]float64{"damping": 0.5, "gravity": 100}, grid[1])
	assert.Equal(t, map[string]float64{"damping": 1, "gravity": 200}, grid[5])
}

func TestNewGridSearchRejects(t *testing.T) {
	_, err := NewGridSearch([]string{"damping"}, nil)
	assert.Error(t, err)

	_, err = NewGridSearch([]string{"spin"}, [][]float64{{1}})
	assert.ErrorIs(t, err, ErrUnknownParam)

	_, err = NewGridSearch([]string{"damping"}, [][]float64{{}})
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	base := config.DefaultConfig()
	base.Run.Duration = 2
	base.Run.Dt = 1.0 / 60

	g, err := NewGridSearch([]string{"damping"}, [][]float64{{0.5, 0.8, 1}})
	require.NoError(t, err)

	points, best, err := g.Search(context.Background(), base, "energy", 2)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, 1.0, p.Metrics["containment"], "damping %g left the arena", p.Params["damping"])
	}
	// Lossier walls end with less energy on average.
	assert.Equal(t, 0.5, best.Params["damping"])
	assert.Equal(t, config.DefaultDamping, base.Physics.Damping, "search must not modify the base config")
}

func TestSearchInvalidPoint(t *testing.T) {
	g, err := NewGridSearch([]string{"damping"}, [][]float64{{1, 2}})
	require.NoError(t, err)
	_, _, err = g.Search(context.Background(), config.DefaultConfig(), "energy", 1)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestSearchUnknownMetric(t *testing.T) {
	base := config.DefaultConfig()
	base.Run.Duration = 0.1
	g, err := NewGridSearch([]string{"damping"}, [][]float64{{1}})
	require.NoError(t, err)
	_, _, err = g.Search(context.Background(), base, "nope", 1)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestSearchRejectsMetricBeforeRunning(t *testing.T) {
	base := config.DefaultConfig()
	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{math.NaN()}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	points, _, err := g.Search(ctx, base, "nope", 1)
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Nil(t, points)
}
