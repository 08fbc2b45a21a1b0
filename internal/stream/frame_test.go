package stream

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendFrame_Layout(t *testing.T) {
	records := make([]float32, 24)
	for i := range records {
		records[i] = float32(i) - 0.5
	}
	records[5] = float32(math.NaN())

	frame, err := AppendFrame(nil, records)
	require.NoError(t, err)
	require.Len(t, frame, 4+24*4)
	assert.Equal(t, []byte{2, 0, 0, 0}, frame[:4])

	got, err := DecodeFrame(frame)
	require.NoError(t, err)
	require.Len(t, got, 24)
	assert.True(t, math.IsNaN(float64(got[5])))
	got[5], records[5] = 0, 0
	assert.Equal(t, records, got)
}

func TestAppendFrame_Empty(t *testing.T) {
	frame, err := AppendFrame([]byte{0xff}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0, 0, 0, 0}, frame)

	got, err := DecodeFrame(frame[1:])
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFrame_Malformed(t *testing.T) {
	_, err := AppendFrame(nil, make([]float32, 13))
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = DecodeFrame([]byte{1, 0})
	assert.ErrorIs(t, err, ErrMalformedFrame)

	_, err = DecodeFrame([]byte{1, 0, 0, 0, 1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrMalformedFrame)
}
