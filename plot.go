package nyquist

import (
	"sync"
)

// Plot is the control-side owner of the render configuration. Setters
// validate their input and notify subscribers after the change. Plot is safe
// for concurrent use.
type Plot struct {
	mu        sync.RWMutex
	cfg       RenderConfig
	listeners []func(RenderConfig)
}

var _ Settings = (*Plot)(nil)

// NewPlot returns a plot with DefaultRenderConfig.
func NewPlot() *Plot {
	return &Plot{cfg: DefaultRenderConfig()}
}

// NewPlotWithConfig returns a plot initialized from cfg.
func NewPlotWithConfig(cfg RenderConfig) (*Plot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Plot{cfg: cfg}, nil
}

// PointsPerOctave implements Settings.
func (p *Plot) PointsPerOctave() uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.PointsPerOctave
}

// Coherence implements Settings.
func (p *Plot) Coherence() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.CoherenceGate
}

// CoherenceThreshold implements Settings.
func (p *Plot) CoherenceThreshold() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg.CoherenceThreshold
}

// Snapshot returns a consistent copy of the whole configuration.
func (p *Plot) Snapshot() RenderConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// SetPointsPerOctave changes the band resolution.
func (p *Plot) SetPointsPerOctave(ppo uint) error {
	if err := validatePointsPerOctave(ppo); err != nil {
		return err
	}
	p.update(func(c *RenderConfig) bool {
		if c.PointsPerOctave == ppo {
			return false
		}
		c.PointsPerOctave = ppo
		return true
	})
	return nil
}

// SetCoherence enables or disables the coherence gate.
func (p *Plot) SetCoherence(enabled bool) {
	p.update(func(c *RenderConfig) bool {
		if c.CoherenceGate == enabled {
			return false
		}
		c.CoherenceGate = enabled
		return true
	})
}

// SetCoherenceThreshold changes the gate level.
func (p *Plot) SetCoherenceThreshold(threshold float32) error {
	if err := validateThreshold(threshold); err != nil {
		return err
	}
	p.update(func(c *RenderConfig) bool {
		if c.CoherenceThreshold == threshold {
			return false
		}
		c.CoherenceThreshold = threshold
		return true
	})
	return nil
}

// OnChange registers fn to be called with the new configuration after every
// effective change. fn runs on the goroutine of the setter, outside the lock.
func (p *Plot) OnChange(fn func(RenderConfig)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

func (p *Plot) update(apply func(*RenderConfig) bool) {
	p.mu.Lock()
	if !apply(&p.cfg) {
		p.mu.Unlock()
		return
	}
	cfg := p.cfg
	listeners := append([]func(RenderConfig)(nil), p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}
