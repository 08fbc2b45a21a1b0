package nyquist_test

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-nyquist"
)

func TestRenderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     nyquist.RenderConfig
		wantErr bool
	}{
		{"default", nyquist.DefaultRenderConfig(), false},
		{"min resolution", nyquist.RenderConfig{PointsPerOctave: 1}, false},
		{"max resolution", nyquist.RenderConfig{PointsPerOctave: 96, CoherenceThreshold: 1}, false},
		{"zero resolution", nyquist.RenderConfig{}, true},
		{"too fine", nyquist.RenderConfig{PointsPerOctave: 97}, true},
		{"negative threshold", nyquist.RenderConfig{PointsPerOctave: 12, CoherenceThreshold: -0.1}, true},
		{"threshold above one", nyquist.RenderConfig{PointsPerOctave: 12, CoherenceThreshold: 1.5}, true},
		{"nan threshold", nyquist.RenderConfig{PointsPerOctave: 12, CoherenceThreshold: float32(math.NaN())}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, nyquist.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRenderConfig_Settings(t *testing.T) {
	cfg := nyquist.RenderConfig{PointsPerOctave: 48, CoherenceGate: true, CoherenceThreshold: 0.25}
	s := cfg.Settings()
	assert.Equal(t, uint(48), s.PointsPerOctave())
	assert.True(t, s.Coherence())
	assert.InDelta(t, 0.25, s.CoherenceThreshold(), 0)
}

func TestPlot_Defaults(t *testing.T) {
	p := nyquist.NewPlot()
	assert.Equal(t, uint(nyquist.DefaultPointsPerOctave), p.PointsPerOctave())
	assert.False(t, p.Coherence())
	assert.InDelta(t, nyquist.DefaultCoherenceThreshold, p.CoherenceThreshold(), 0)
}

func TestPlot_Setters(t *testing.T) {
	p := nyquist.NewPlot()

	require.NoError(t, p.SetPointsPerOctave(24))
	p.SetCoherence(true)
	require.NoError(t, p.SetCoherenceThreshold(0.9))

	assert.Equal(t, nyquist.RenderConfig{
		PointsPerOctave:    24,
		CoherenceGate:      true,
		CoherenceThreshold: 0.9,
	}, p.Snapshot())

	assert.ErrorIs(t, p.SetPointsPerOctave(0), nyquist.ErrInvalidConfig)
	assert.ErrorIs(t, p.SetCoherenceThreshold(2), nyquist.ErrInvalidConfig)
	assert.Equal(t, uint(24), p.PointsPerOctave(), "rejected values leave the plot unchanged")
}

func TestPlot_OnChange(t *testing.T) {
	p := nyquist.NewPlot()
	var got []nyquist.RenderConfig
	p.OnChange(func(c nyquist.RenderConfig) { got = append(got, c) })

	require.NoError(t, p.SetPointsPerOctave(6))
	require.NoError(t, p.SetPointsPerOctave(6))
	p.SetCoherence(false)
	p.SetCoherence(true)

	require.Len(t, got, 2, "only effective changes notify")
	assert.Equal(t, uint(6), got[0].PointsPerOctave)
	assert.True(t, got[1].CoherenceGate)
}

func TestNewPlotWithConfig(t *testing.T) {
	p, err := nyquist.NewPlotWithConfig(nyquist.RenderConfig{PointsPerOctave: 3, CoherenceThreshold: 0.5})
	require.NoError(t, err)
	assert.Equal(t, uint(3), p.PointsPerOctave())

	_, err = nyquist.NewPlotWithConfig(nyquist.RenderConfig{PointsPerOctave: 200})
	assert.ErrorIs(t, err, nyquist.ErrInvalidConfig)
}

func TestPlot_ConcurrentAccess(t *testing.T) {
	p := nyquist.NewPlot()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = p.SetPointsPerOctave(uint(i%nyquist.MaxPointsPerOctave) + 1)
			p.SetCoherence(i%2 == 0)
		}()
		go func() {
			defer wg.Done()
			cfg := p.Snapshot()
			assert.NoError(t, cfg.Validate())
		}()
	}
	wg.Wait()
}
