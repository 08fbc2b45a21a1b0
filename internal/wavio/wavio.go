// Package wavio reads and writes the PCM WAV files the commands analyze.
package wavio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt8  = 127.0
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	pcmFormat = 1
)

// ErrRateMismatch is returned by LoadPair when the files differ in sample rate.
var ErrRateMismatch = errors.New("sample rate mismatch")

// Signal is a decoded file with samples normalized to [-1, 1].
type Signal struct {
	Rate     int
	BitDepth int
	Channels [][]float64
}

// Len returns the number of samples per channel.
func (s *Signal) Len() int {
	if len(s.Channels) == 0 {
		return 0
	}
	return len(s.Channels[0])
}

// Channel returns channel ch, clamped to the last available channel.
func (s *Signal) Channel(ch int) []float64 {
	if len(s.Channels) == 0 {
		return nil
	}
	return s.Channels[min(max(ch, 0), len(s.Channels)-1)]
}

// Load decodes a PCM WAV file.
func Load(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	channels := format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("invalid WAV file: %s has no channels", path)
	}

	return &Signal{
		Rate:     format.SampleRate,
		BitDepth: bitDepth,
		Channels: deinterleave(buf.Data, channels, bitDepth),
	}, nil
}

// LoadPair loads a reference and a measurement file recorded at the same
// sample rate.
func LoadPair(refPath, measPath string) (ref, meas *Signal, err error) {
	ref, err = Load(refPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reference: %w", err)
	}
	meas, err = Load(measPath)
	if err != nil {
		return nil, nil, fmt.Errorf("measurement: %w", err)
	}
	if ref.Rate != meas.Rate {
		return nil, nil, fmt.Errorf("%w: reference %d Hz, measurement %d Hz", ErrRateMismatch, ref.Rate, meas.Rate)
	}
	return ref, meas, nil
}

// Save writes s as integer PCM at s.BitDepth (16 when unset).
func Save(path string, s *Signal) error {
	bitDepth := s.BitDepth
	if bitDepth == 0 {
		bitDepth = bitsPerSample16
	}
	channels := len(s.Channels)
	if channels == 0 {
		return errors.New("no channels to write")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(f, s.Rate, bitDepth, channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: s.Rate},
		Data:           interleave(s.Channels, bitDepth),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return f.Close()
}

func maxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample8:
		return maxInt8
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

func deinterleave(data []int, channels, bitDepth int) [][]float64 {
	samplesPerChannel := len(data) / channels
	out := make([][]float64, channels)
	for ch := range channels {
		out[ch] = make([]float64, samplesPerChannel)
	}

	invMax := 1 / maxValue(bitDepth)
	for i := range samplesPerChannel {
		base := i * channels
		for ch := range channels {
			out[ch][i] = float64(data[base+ch]) * invMax
		}
	}
	return out
}

func interleave(channels [][]float64, bitDepth int) []int {
	n := len(channels[0])
	for _, c := range channels[1:] {
		n = min(n, len(c))
	}
	maxVal := maxValue(bitDepth)
	out := make([]int, n*len(channels))
	for i := range n {
		for ch, c := range channels {
			out[i*len(channels)+ch] = int(min(max(c[i], -1), 1) * maxVal)
		}
	}
	return out
}
