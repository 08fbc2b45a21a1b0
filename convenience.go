package nyquist

import (
	"fmt"

	"github.com/tphakala/go-nyquist/internal/gpu"
)

// Tessellate renders one frame of src in host memory and returns a copy of
// the vertex records with the frame statistics. It is the headless
// counterpart of Renderer.Render.
func Tessellate(src Source, cfg RenderConfig, opts ...Option) ([]float32, FrameStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, FrameStats{}, err
	}

	dev := gpu.NewMemoryDevice()
	r := NewRenderer(dev, gpu.NopProgram{}, opts...)
	defer r.Release()

	r.Synchronize(cfg.Settings())
	stats := r.Render(src)
	if err := dev.Err(); err != nil {
		return nil, stats, fmt.Errorf("tessellate: %w", err)
	}

	return append([]float32(nil), dev.Frame()...), stats, nil
}
