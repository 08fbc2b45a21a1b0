// Package stream publishes rendered vertex frames to remote viewers over
// websockets.
//
// A frame is one binary message: a little-endian uint32 record count
// followed by count*12 little-endian float32 values in the vertex record
// layout.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-nyquist/internal/vertex"
)

const headerSize = 4

// ErrMalformedFrame is returned by DecodeFrame for truncated or inconsistent
// messages.
var ErrMalformedFrame = errors.New("malformed frame")

// AppendFrame appends the encoding of records to dst. records must hold
// whole vertex records.
func AppendFrame(dst []byte, records []float32) ([]byte, error) {
	if len(records)%vertex.Stride != 0 {
		return dst, fmt.Errorf("%w: %d floats is not a whole number of records", ErrMalformedFrame, len(records))
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(records)/vertex.Stride))
	for _, v := range records {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst, nil
}

// DecodeFrame parses one frame into vertex records.
func DecodeFrame(data []byte) ([]float32, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedFrame, len(data))
	}
	count := int(binary.LittleEndian.Uint32(data))
	body := data[headerSize:]
	want := count * vertex.Stride * vertex.BytesPerFloat
	if len(body) != want {
		return nil, fmt.Errorf("%w: %d records need %d bytes, have %d", ErrMalformedFrame, count, want, len(body))
	}

	out := make([]float32, count*vertex.Stride)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*vertex.BytesPerFloat:]))
	}
	return out, nil
}
