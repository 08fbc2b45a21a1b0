// Package gputest provides a recording gpu.Device and gpu.Program for tests.
package gputest

import (
	"fmt"

	"github.com/tphakala/go-nyquist/internal/gpu"
)

// Call is one recorded device call.
type Call struct {
	Op   string
	Args []int
}

// String formats the call as op(arg, ...).
func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// Recorder records every call made through gpu.Device and gpu.Program.
type Recorder struct {
	Calls    []Call
	Uploads  [][]float32
	Uniforms []gpu.Uniforms

	nextID uint32
}

var (
	_ gpu.Device  = (*Recorder)(nil)
	_ gpu.Program = (*Recorder)(nil)
)

func (r *Recorder) record(op string, args ...int) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Find returns the calls to op in order.
func (r *Recorder) Find(op string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Clear forgets recorded calls but keeps id allocation going.
func (r *Recorder) Clear() {
	r.Calls = nil
	r.Uploads = nil
	r.Uniforms = nil
}

// GenVertexArray implements gpu.Device.
func (r *Recorder) GenVertexArray() uint32 {
	r.nextID++
	r.record("GenVertexArray", int(r.nextID))
	return r.nextID
}

// GenBuffer implements gpu.Device.
func (r *Recorder) GenBuffer() uint32 {
	r.nextID++
	r.record("GenBuffer", int(r.nextID))
	return r.nextID
}

// DeleteVertexArray implements gpu.Device.
func (r *Recorder) DeleteVertexArray(id uint32) { r.record("DeleteVertexArray", int(id)) }

// DeleteBuffer implements gpu.Device.
func (r *Recorder) DeleteBuffer(id uint32) { r.record("DeleteBuffer", int(id)) }

// BindVertexArray implements gpu.Device.
func (r *Recorder) BindVertexArray(id uint32) { r.record("BindVertexArray", int(id)) }

// BindBuffer implements gpu.Device.
func (r *Recorder) BindBuffer(id uint32) { r.record("BindBuffer", int(id)) }

// BufferData implements gpu.Device.
func (r *Recorder) BufferData(size int) { r.record("BufferData", size) }

// BufferSubData implements gpu.Device. The data is copied.
func (r *Recorder) BufferSubData(data []float32) {
	r.record("BufferSubData", len(data))
	r.Uploads = append(r.Uploads, append([]float32(nil), data...))
}

// VertexAttribPointer implements gpu.Device.
func (r *Recorder) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	r.record("VertexAttribPointer", int(index), int(size), int(stride), offset)
}

// EnableVertexAttribArray implements gpu.Device.
func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record("EnableVertexAttribArray", int(index))
}

// DisableVertexAttribArray implements gpu.Device.
func (r *Recorder) DisableVertexAttribArray(index uint32) {
	r.record("DisableVertexAttribArray", int(index))
}

// DrawPoints implements gpu.Device.
func (r *Recorder) DrawPoints(count int32) { r.record("DrawPoints", int(count)) }

// Use implements gpu.Program.
func (r *Recorder) Use() { r.record("Use") }

// Apply implements gpu.Program.
func (r *Recorder) Apply(u gpu.Uniforms) {
	r.record("Apply")
	r.Uniforms = append(r.Uniforms, u)
}

// LastUpload returns the most recent BufferSubData payload.
func (r *Recorder) LastUpload() []float32 {
	if len(r.Uploads) == 0 {
		return nil
	}
	return r.Uploads[len(r.Uploads)-1]
}
