package measure

import "fmt"

// Replay feeds a recorded reference/measurement pair into an Analyzer one
// block at a time, wrapping around at the end, to simulate a live capture.
type Replay struct {
	ref, meas []float64
	hop       int
	pos       int
	laps      int
}

// NewReplay creates a replay advancing hop samples per step.
func NewReplay(ref, meas []float64, hop int) (*Replay, error) {
	if hop < 1 {
		return nil, fmt.Errorf("%w: hop must be positive", ErrInvalidConfig)
	}
	n := min(len(ref), len(meas))
	if n == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrInvalidConfig)
	}
	return &Replay{ref: ref[:n], meas: meas[:n], hop: hop}, nil
}

// Laps returns how many times the replay wrapped around.
func (r *Replay) Laps() int {
	return r.laps
}

// Step adds the next block to a and advances by hop samples. Blocks that
// cross the end of the recording continue from its start.
func (r *Replay) Step(a *Analyzer) error {
	size := a.Config().Size
	refBlock := r.block(r.ref, size)
	measBlock := r.block(r.meas, size)

	r.pos += r.hop
	if r.pos >= len(r.ref) {
		r.pos %= len(r.ref)
		r.laps++
	}
	return a.Add(refBlock, measBlock)
}

func (r *Replay) block(x []float64, size int) []float64 {
	if r.pos+size <= len(x) {
		return x[r.pos : r.pos+size]
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = x[(r.pos+i)%len(x)]
	}
	return out
}
