// Package octave partitions frequency-ordered bins into fractional-octave
// bands. It is the shared band-boundary policy used by every series that
// draws data with a points-per-octave resolution.
package octave

import (
	"iter"
	"math"
)

const (
	// MaxOctaves is the number of octaves above StartFrequency a display can
	// hold. 12 octaves from 11.72 Hz reach 48 kHz.
	MaxOctaves = 12

	// DefaultStartFrequency is the lowest band edge: the bin width of a 2048
	// point transform at 24 kHz.
	DefaultStartFrequency = 24000.0 / 2048.0
)

// Bins is the frequency view of a measurement the grouping walks over.
type Bins interface {
	Size() int
	Frequency(i int) float64
}

// Band is one closed group of consecutive bins.
type Band struct {
	// Index is the fractional-octave band number counted from the start
	// frequency.
	Index int

	// First and Last delimit the bin range [First, Last).
	First, Last int
}

// Len returns the number of bins in the band.
func (b Band) Len() int {
	return b.Last - b.First
}

// Grouping maps frequencies to bands of 1/pointsPerOctave octave.
type Grouping struct {
	pointsPerOctave uint
	start           float64
}

// NewGrouping returns a grouping with the given resolution. A start frequency
// that is not positive and finite falls back to DefaultStartFrequency.
func NewGrouping(pointsPerOctave uint, start float64) Grouping {
	if !(start > 0) || math.IsInf(start, 0) {
		start = DefaultStartFrequency
	}
	return Grouping{pointsPerOctave: pointsPerOctave, start: start}
}

// PointsPerOctave returns the configured resolution.
func (g Grouping) PointsPerOctave() uint {
	return g.pointsPerOctave
}

// Start returns the lower edge of band 0.
func (g Grouping) Start() float64 {
	return g.start
}

// Limit returns the number of bands that fit in MaxOctaves.
func (g Grouping) Limit() int {
	return int(g.pointsPerOctave) * MaxOctaves
}

// Band returns the band index of frequency f. ok is false for frequencies
// below the start frequency, for non-finite values and when the grouping has
// no resolution.
func (g Grouping) Band(f float64) (int, bool) {
	if g.pointsPerOctave == 0 || math.IsNaN(f) || math.IsInf(f, 0) || f < g.start {
		return 0, false
	}
	return int(math.Floor(float64(g.pointsPerOctave) * math.Log2(f/g.start))), true
}

// Edges returns the lower and upper frequency of band.
func (g Grouping) Edges(band int) (lo, hi float64) {
	ppo := float64(g.pointsPerOctave)
	lo = g.start * math.Exp2(float64(band)/ppo)
	hi = g.start * math.Exp2(float64(band+1)/ppo)
	return lo, hi
}

// Center returns the geometric centre frequency of band.
func (g Grouping) Center(band int) float64 {
	return g.start * math.Exp2((float64(band)+0.5)/float64(g.pointsPerOctave))
}

// Bands yields the non-empty bands of bins in bin order. A band closes when
// the next grouped bin falls into a different band or the bins run out.
// Bins that belong to no band are skipped and close the open band, so a
// yielded range never spans an ungrouped bin.
func (g Grouping) Bands(bins Bins) iter.Seq[Band] {
	return func(yield func(Band) bool) {
		if bins == nil {
			return
		}
		open := false
		var cur Band
		for i := range bins.Size() {
			idx, ok := g.Band(bins.Frequency(i))
			if open && (!ok || idx != cur.Index) {
				if !yield(cur) {
					return
				}
				open = false
			}
			if !ok {
				continue
			}
			if !open {
				cur = Band{Index: idx, First: i}
				open = true
			}
			cur.Last = i + 1
		}
		if open {
			yield(cur)
		}
	}
}
