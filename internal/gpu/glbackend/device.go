// Package glbackend implements the gpu interfaces on OpenGL 4.1 core. All
// calls must be made on the thread that owns the current context.
package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/tphakala/go-nyquist/internal/gpu"
	"github.com/tphakala/go-nyquist/internal/vertex"
)

// Init loads the OpenGL function pointers for the current context.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return nil
}

// Version returns the driver version string.
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// BeginFrame sets the viewport to the framebuffer size, clears it to the
// background color and enables alpha blending for dimmed spans.
func BeginFrame(width, height int32, background [4]float32) {
	gl.Viewport(0, 0, width, height)
	gl.ClearColor(background[0], background[1], background[2], background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

// Device issues the buffer manager's calls to OpenGL. Buffers are bound to
// GL_ARRAY_BUFFER.
type Device struct{}

var _ gpu.Device = Device{}

// GenVertexArray implements gpu.Device.
func (Device) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

// GenBuffer implements gpu.Device.
func (Device) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

// DeleteVertexArray implements gpu.Device.
func (Device) DeleteVertexArray(id uint32) { gl.DeleteVertexArrays(1, &id) }

// DeleteBuffer implements gpu.Device.
func (Device) DeleteBuffer(id uint32) { gl.DeleteBuffers(1, &id) }

// BindVertexArray implements gpu.Device.
func (Device) BindVertexArray(id uint32) { gl.BindVertexArray(id) }

// BindBuffer implements gpu.Device.
func (Device) BindBuffer(id uint32) { gl.BindBuffer(gl.ARRAY_BUFFER, id) }

// BufferData implements gpu.Device.
func (Device) BufferData(size int) {
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
}

// BufferSubData implements gpu.Device.
func (Device) BufferSubData(data []float32) {
	// gl.Ptr needs an element to point at.
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(data)*vertex.BytesPerFloat, gl.Ptr(data))
}

// VertexAttribPointer implements gpu.Device.
func (Device) VertexAttribPointer(index uint32, size, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

// EnableVertexAttribArray implements gpu.Device.
func (Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

// DisableVertexAttribArray implements gpu.Device.
func (Device) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

// DrawPoints implements gpu.Device.
func (Device) DrawPoints(count int32) {
	if count == 0 {
		return
	}
	gl.DrawArrays(gl.POINTS, 0, count)
}
