package octave

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freqs is a Bins backed by a slice.
type freqs []float64

func (f freqs) Size() int               { return len(f) }
func (f freqs) Frequency(i int) float64 { return f[i] }

// logSpaced returns n bins spread evenly in log frequency over octaves
// octaves above start, each sitting between band edges.
func logSpaced(n int, start, octaves float64) freqs {
	out := make(freqs, n)
	for i := range out {
		out[i] = start * math.Exp2(octaves*(float64(i)+0.5)/float64(n))
	}
	return out
}

func collect(g Grouping, bins Bins) []Band {
	var out []Band
	for b := range g.Bands(bins) {
		out = append(out, b)
	}
	return out
}

func TestGrouping_Band(t *testing.T) {
	g := NewGrouping(3, 100)

	tests := []struct {
		name   string
		f      float64
		want   int
		wantOK bool
	}{
		{"start edge", 100, 0, true},
		{"inside first band", 110, 0, true},
		{"one octave up", 200, 3, true},
		{"third octave", 126, 1, true},
		{"below start", 99.9, 0, false},
		{"NaN", math.NaN(), 0, false},
		{"Inf", math.Inf(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.Band(tt.f)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGrouping_ZeroResolution(t *testing.T) {
	g := NewGrouping(0, 0)
	_, ok := g.Band(1000)
	assert.False(t, ok)
	assert.Empty(t, collect(g, logSpaced(10, DefaultStartFrequency, 1)))
	assert.Equal(t, 0, g.Limit())
}

func TestGrouping_DefaultStart(t *testing.T) {
	for _, start := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		assert.InDelta(t, DefaultStartFrequency, NewGrouping(12, start).Start(), 1e-12)
	}
}

func TestGrouping_OneOctaveTwelveBands(t *testing.T) {
	g := NewGrouping(12, DefaultStartFrequency)
	bands := collect(g, logSpaced(144, DefaultStartFrequency, 1))

	require.Len(t, bands, 12)
	for k, b := range bands {
		assert.Equal(t, k, b.Index)
		assert.Equal(t, 12, b.Len(), "band %d", k)
		assert.Equal(t, k*12, b.First)
	}
}

func TestGrouping_LinearBins(t *testing.T) {
	// Linear FFT bins: low bands are sparse, high bands get crowded.
	const (
		rate = 48000.0
		n    = 4096
	)
	bins := make(freqs, n/2+1)
	for i := range bins {
		bins[i] = float64(i) * rate / n
	}

	g := NewGrouping(6, DefaultStartFrequency)
	bands := collect(g, bins)
	require.NotEmpty(t, bands)

	total := 0
	prev := -1
	for _, b := range bands {
		assert.Greater(t, b.Index, prev, "band indices must increase")
		assert.Positive(t, b.Len(), "empty bands must never be yielded")
		for i := b.First; i < b.Last; i++ {
			idx, ok := g.Band(bins[i])
			require.True(t, ok)
			assert.Equal(t, b.Index, idx)
		}
		prev = b.Index
		total += b.Len()
	}
	// Bin 0 (DC) is below the start frequency and belongs to no band.
	assert.Equal(t, len(bins)-1, total)
	assert.Less(t, bands[len(bands)-1].Index, g.Limit())
}

func TestGrouping_UngroupedBinClosesBand(t *testing.T) {
	g := NewGrouping(1, 100)
	bins := freqs{120, 130, math.NaN(), 140, 400}

	bands := collect(g, bins)
	require.Len(t, bands, 3)
	assert.Equal(t, Band{Index: 0, First: 0, Last: 2}, bands[0])
	assert.Equal(t, Band{Index: 0, First: 3, Last: 4}, bands[1])
	assert.Equal(t, Band{Index: 2, First: 4, Last: 5}, bands[2])
}

func TestGrouping_EarlyStop(t *testing.T) {
	g := NewGrouping(12, DefaultStartFrequency)
	n := 0
	for range g.Bands(logSpaced(144, DefaultStartFrequency, 1)) {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestGrouping_EdgesAndCenter(t *testing.T) {
	g := NewGrouping(3, 100)
	lo, hi := g.Edges(3)
	assert.InDelta(t, 200, lo, 1e-9)
	assert.InDelta(t, 200*math.Cbrt(2), hi, 1e-9)
	assert.InDelta(t, math.Sqrt(lo*hi), g.Center(3), 1e-9)

	idx, ok := g.Band(g.Center(7))
	require.True(t, ok)
	assert.Equal(t, 7, idx)
}
