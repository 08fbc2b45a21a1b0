package gpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-nyquist/internal/gpu"
	"github.com/tphakala/go-nyquist/internal/vertex"
)

func TestMemoryDevice_SnapshotsDrawnRecords(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := gpu.NewBufferManager(dev)
	capacity := vertex.Capacity(2)

	data := make([]float32, capacity)
	copy(data, records(4))
	_, err := m.Draw(data, capacity, 4)
	require.NoError(t, err)
	require.NoError(t, dev.Err())

	assert.Equal(t, 1, dev.Draws())
	assert.Equal(t, records(4), dev.Frame())

	// A shorter frame only exposes its own records.
	_, err = m.Draw(data, capacity, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.Draws())
	assert.Equal(t, records(1), dev.Frame())
}

func TestMemoryDevice_KeepsStorageAcrossFrames(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	m := gpu.NewBufferManager(dev)
	capacity := vertex.Capacity(1)

	first := make([]float32, capacity)
	copy(first, records(3))
	_, err := m.Draw(first, capacity, 3)
	require.NoError(t, err)

	second := make([]float32, capacity)
	second[0] = -1
	_, err = m.Draw(second, capacity, 1)
	require.NoError(t, err)

	frame := dev.Frame()
	require.Len(t, frame, vertex.Stride)
	assert.InDelta(t, -1, frame[0], 0)
}

func TestMemoryDevice_DetectsMisuse(t *testing.T) {
	dev := gpu.NewMemoryDevice()
	dev.BufferSubData([]float32{1})
	assert.Error(t, dev.Err())

	dev = gpu.NewMemoryDevice()
	id := dev.GenBuffer()
	dev.BindBuffer(id)
	dev.BufferData(4 * vertex.BytesPerFloat)
	dev.BufferSubData(make([]float32, 8))
	assert.Error(t, dev.Err(), "upload larger than storage")

	dev = gpu.NewMemoryDevice()
	id = dev.GenBuffer()
	dev.BindBuffer(id)
	dev.BufferData(vertex.Stride * vertex.BytesPerFloat)
	dev.DrawPoints(2)
	assert.Error(t, dev.Err(), "draw beyond storage")
	assert.Zero(t, dev.Draws())
}
