package gpu

import (
	"fmt"

	"github.com/tphakala/go-nyquist/internal/vertex"
)

// Attribute locations of the record layout.
const (
	AttribReal    uint32 = 0
	AttribImag    uint32 = 1
	AttribControl uint32 = 2
)

// attributes lists the declared attributes in enable order.
var attributes = [...]struct {
	index  uint32
	offset int
}{
	{AttribReal, vertex.RealOffset * vertex.BytesPerFloat},
	{AttribImag, vertex.ImagOffset * vertex.BytesPerFloat},
	{AttribControl, vertex.ControlOffset * vertex.BytesPerFloat},
}

// State is the buffer manager lifecycle state.
type State int

const (
	// Uninitialized means no GPU identities exist.
	Uninitialized State = iota

	// Ready means identities exist and storage is sized for Capacity.
	Ready
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// BufferManager owns one vertex array and one vertex buffer.
type BufferManager struct {
	device   Device
	state    State
	vao, vbo uint32
	capacity int
	allocs   int
}

// NewBufferManager creates an uninitialized manager.
func NewBufferManager(device Device) *BufferManager {
	return &BufferManager{device: device}
}

// State returns the lifecycle state.
func (m *BufferManager) State() State {
	return m.state
}

// Capacity returns the allocated storage in floats.
func (m *BufferManager) Capacity() int {
	return m.capacity
}

// Allocations returns how many times storage was (re)allocated.
func (m *BufferManager) Allocations() int {
	return m.allocs
}

// Draw uploads the first count records of vertices and draws them as points.
// Storage is allocated for capacity floats on the first call and whenever
// capacity changes; otherwise only the written records are uploaded.
// It reports whether storage was reallocated.
func (m *BufferManager) Draw(vertices []float32, capacity, count int) (bool, error) {
	n := count * vertex.Stride
	if count < 0 || n > len(vertices) || n > capacity {
		return false, fmt.Errorf("draw %d records: have %d floats, capacity %d", count, len(vertices), capacity)
	}

	alloc := m.capacity != capacity
	if m.state == Uninitialized {
		m.vbo = m.device.GenBuffer()
		m.vao = m.device.GenVertexArray()
		m.state = Ready
		alloc = true
	}

	m.device.BindVertexArray(m.vao)
	m.device.BindBuffer(m.vbo)

	if alloc {
		m.device.BufferData(capacity * vertex.BytesPerFloat)
		for _, a := range attributes {
			m.device.VertexAttribPointer(a.index, vertex.AttributeSize,
				vertex.Stride*vertex.BytesPerFloat, a.offset)
		}
		m.capacity = capacity
		m.allocs++
	}

	m.device.BufferSubData(vertices[:n])

	for _, a := range attributes {
		m.device.EnableVertexAttribArray(a.index)
	}
	m.device.DrawPoints(int32(count))
	for i := len(attributes) - 1; i >= 0; i-- {
		m.device.DisableVertexAttribArray(attributes[i].index)
	}

	return alloc, nil
}

// Release deletes the GPU identities and returns to Uninitialized.
func (m *BufferManager) Release() {
	if m.state != Ready {
		return
	}
	m.device.DeleteBuffer(m.vbo)
	m.device.DeleteVertexArray(m.vao)
	m.vao, m.vbo = 0, 0
	m.capacity = 0
	m.state = Uninitialized
}
