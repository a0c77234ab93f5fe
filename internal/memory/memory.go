// Package memory implements the flat byte-addressable storage that backs
// the CPU's bus abstraction.
package memory

import (
	"fmt"

	"gones/internal/coreerr"
)

// Memory is a contiguous byte buffer of declared size, exclusively owned by
// whichever bus variant wraps it. It performs no address translation of its
// own; RAMBus and NESBus are responsible for deciding which address lands
// here and after what masking.
type Memory struct {
	data []uint8
}

// New allocates a Memory of the given size, zero-initialized.
func New(size int) *Memory {
	return &Memory{data: make([]uint8, size)}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() int {
	return len(m.data)
}

// Read returns the byte at addr. addr is trusted to be in range; the bus
// variants are responsible for masking it into bounds before calling.
func (m *Memory) Read(addr uint16) uint8 {
	return m.data[addr]
}

// Write stores v at addr.
func (m *Memory) Write(addr uint16, v uint8) {
	m.data[addr] = v
}

// Clear zeroes every byte.
func (m *Memory) Clear() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// Initialize copies data into the buffer starting at offset 0, truncating to
// whichever of data or the buffer is shorter.
func (m *Memory) Initialize(data []uint8) {
	copy(m.data, data)
}

// InitializeFrom copies data into the buffer starting at offset. It fails if
// offset+len(data) would exceed the buffer's size, mirroring the bounds
// check a flat ROM/RAM image load must perform before it touches memory it
// does not own.
func (m *Memory) InitializeFrom(offset int, data []uint8) error {
	if offset < 0 || offset+len(data) > len(m.data) {
		return fmt.Errorf("%w: offset %d and length %d exceed memory size %d",
			coreerr.ErrMemoryBoundsViolation, offset, len(data), len(m.data))
	}
	copy(m.data[offset:], data)
	return nil
}
