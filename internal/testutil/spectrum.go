package testutil

import "math"

// Spectrum is an in-memory measurement frame. Its method set matches the
// nyquist Source interface.
type Spectrum struct {
	Freqs      []float64
	Phases     []complex128
	Magnitudes []float64
	Coherences []float64
	Inactive   bool
}

// LogSpectrum returns n bins spaced logarithmically over octaves octaves
// above start, one bin centred in each 1/n-octave step, with phase 0,
// magnitude 1 and coherence 1.
func LogSpectrum(n int, start, octaves float64) *Spectrum {
	s := &Spectrum{
		Freqs:      make([]float64, n),
		Phases:     make([]complex128, n),
		Magnitudes: make([]float64, n),
		Coherences: make([]float64, n),
	}
	for i := range n {
		s.Freqs[i] = start * math.Exp2(octaves*(float64(i)+0.5)/float64(n))
		s.Phases[i] = 1
		s.Magnitudes[i] = 1
		s.Coherences[i] = 1
	}
	return s
}

// Fill sets every bin to the same phase, magnitude and coherence.
func (s *Spectrum) Fill(phase complex128, magnitude, coherence float64) *Spectrum {
	for i := range s.Freqs {
		s.Phases[i] = phase
		s.Magnitudes[i] = magnitude
		s.Coherences[i] = coherence
	}
	return s
}

func (s *Spectrum) Active() bool               { return !s.Inactive }
func (s *Spectrum) Size() int                  { return len(s.Freqs) }
func (s *Spectrum) Frequency(i int) float64    { return s.Freqs[i] }
func (s *Spectrum) Phase(i int) complex128     { return s.Phases[i] }
func (s *Spectrum) MagnitudeRaw(i int) float64 { return s.Magnitudes[i] }
func (s *Spectrum) Coherence(i int) float64    { return s.Coherences[i] }
