package gpu

import (
	"fmt"

	"github.com/tphakala/go-nyquist/internal/vertex"
)

// MemoryDevice is a software Device that keeps buffer storage in host
// memory. Drawing snapshots the drawn records, which makes it usable for
// headless export and for streaming frames to remote viewers.
type MemoryDevice struct {
	nextID  uint32
	buffers map[uint32][]float32
	arrays  map[uint32]bool
	bound   uint32
	array   uint32
	enabled map[uint32]bool

	frame []float32
	draws int
	err   error
}

// NewMemoryDevice creates an empty software device.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{
		buffers: make(map[uint32][]float32),
		arrays:  make(map[uint32]bool),
		enabled: make(map[uint32]bool),
	}
}

func (d *MemoryDevice) genID() uint32 {
	d.nextID++
	return d.nextID
}

// GenVertexArray implements Device.
func (d *MemoryDevice) GenVertexArray() uint32 {
	id := d.genID()
	d.arrays[id] = true
	return id
}

// GenBuffer implements Device.
func (d *MemoryDevice) GenBuffer() uint32 {
	id := d.genID()
	d.buffers[id] = nil
	return id
}

// DeleteVertexArray implements Device.
func (d *MemoryDevice) DeleteVertexArray(id uint32) {
	delete(d.arrays, id)
	if d.array == id {
		d.array = 0
	}
}

// DeleteBuffer implements Device.
func (d *MemoryDevice) DeleteBuffer(id uint32) {
	delete(d.buffers, id)
	if d.bound == id {
		d.bound = 0
	}
}

// BindVertexArray implements Device.
func (d *MemoryDevice) BindVertexArray(id uint32) { d.array = id }

// BindBuffer implements Device.
func (d *MemoryDevice) BindBuffer(id uint32) { d.bound = id }

// BufferData implements Device.
func (d *MemoryDevice) BufferData(size int) {
	if _, ok := d.buffers[d.bound]; !ok {
		d.fail(fmt.Errorf("buffer data: no buffer bound"))
		return
	}
	d.buffers[d.bound] = make([]float32, size/vertex.BytesPerFloat)
}

// BufferSubData implements Device.
func (d *MemoryDevice) BufferSubData(data []float32) {
	storage, ok := d.buffers[d.bound]
	if !ok {
		d.fail(fmt.Errorf("buffer sub data: no buffer bound"))
		return
	}
	if len(data) > len(storage) {
		d.fail(fmt.Errorf("buffer sub data: %d floats exceed storage of %d", len(data), len(storage)))
		return
	}
	copy(storage, data)
}

// VertexAttribPointer implements Device.
func (d *MemoryDevice) VertexAttribPointer(uint32, int32, int32, int) {}

// EnableVertexAttribArray implements Device.
func (d *MemoryDevice) EnableVertexAttribArray(index uint32) { d.enabled[index] = true }

// DisableVertexAttribArray implements Device.
func (d *MemoryDevice) DisableVertexAttribArray(index uint32) { delete(d.enabled, index) }

// DrawPoints implements Device. It snapshots the drawn records.
func (d *MemoryDevice) DrawPoints(count int32) {
	storage := d.buffers[d.bound]
	n := int(count) * vertex.Stride
	if n > len(storage) {
		d.fail(fmt.Errorf("draw %d points: storage holds %d floats", count, len(storage)))
		return
	}
	d.frame = append(d.frame[:0], storage[:n]...)
	d.draws++
}

// Frame returns the records of the last draw.
func (d *MemoryDevice) Frame() []float32 {
	return d.frame
}

// Draws returns the number of draw calls.
func (d *MemoryDevice) Draws() int {
	return d.draws
}

// Err returns the first misuse detected, if any.
func (d *MemoryDevice) Err() error {
	return d.err
}

func (d *MemoryDevice) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// NopProgram is a Program that ignores every call. It stands in for a
// program that failed to link and for headless devices.
type NopProgram struct{}

// Use implements Program.
func (NopProgram) Use() {}

// Apply implements Program.
func (NopProgram) Apply(Uniforms) {}
