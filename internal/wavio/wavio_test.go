package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(n int, freq, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return out
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestLoad_InvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestSaveLoad_Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	in := &Signal{
		Rate:     48000,
		BitDepth: 16,
		Channels: [][]float64{sine(4800, 1000, 48000), sine(4800, 250, 48000)},
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, out.Rate)
	assert.Equal(t, 16, out.BitDepth)
	require.Len(t, out.Channels, 2)
	require.Equal(t, 4800, out.Len())

	for ch := range in.Channels {
		for i, want := range in.Channels[ch] {
			if !assert.InDelta(t, want, out.Channels[ch][i], 1.0/maxInt16, "ch %d sample %d", ch, i) {
				return
			}
		}
	}
}

func TestLoadPair_RateMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	require.NoError(t, Save(a, &Signal{Rate: 48000, Channels: [][]float64{sine(100, 100, 48000)}}))
	require.NoError(t, Save(b, &Signal{Rate: 44100, Channels: [][]float64{sine(100, 100, 44100)}}))

	_, _, err := LoadPair(a, b)
	assert.ErrorIs(t, err, ErrRateMismatch)

	ref, meas, err := LoadPair(a, a)
	require.NoError(t, err)
	assert.Equal(t, ref.Len(), meas.Len())
}

func TestSignal_Channel(t *testing.T) {
	s := &Signal{Channels: [][]float64{{1}, {2}}}
	assert.Equal(t, []float64{2}, s.Channel(5))
	assert.Equal(t, []float64{1}, s.Channel(-1))
	assert.Nil(t, (&Signal{}).Channel(0))
	assert.Zero(t, (&Signal{}).Len())
}

func TestInterleave_Clamps(t *testing.T) {
	got := interleave([][]float64{{2, -2, 0.5}}, 16)
	assert.Equal(t, []int{32767, -32767, 16383}, got)
}
