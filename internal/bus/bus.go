// Package bus implements the address-bus abstraction the CPU core drives:
// a 16-bit effective address plus the scratch latches (ADL/ADH/op_latch)
// the instruction microcode stages an operand through. Two concrete
// variants are provided: RAMBus, a flat 64 KiB passthrough used for
// standalone-CPU testing (including the Klaus Dormann functional test ROM),
// and NESBus, which applies the NES memory map's mirroring and PPU register
// routing.
package bus

import (
	"fmt"

	"gones/internal/coreerr"
	"gones/internal/memory"
)

// Scratch holds the three 8-bit staging bytes the addressing-mode microcode
// shares across instruction cycles. They conceptually belong to the CPU, but
// live on the bus to model the physical address-latch registers that sit
// between the CPU and memory.
type Scratch struct {
	ADL      uint8
	ADH      uint8
	OpLatch  uint8
}

// Bus is the capability the CPU core is built against. It never knows which
// concrete variant it is driving.
type Bus interface {
	// SetAddress latches a 16-bit effective address.
	SetAddress(addr uint16)
	// SetAddressHL latches an effective address given as separate high/low
	// bytes, the form most instruction microcode naturally produces.
	SetAddressHL(high, low uint8)
	// Read performs a bus read at the latched address.
	Read() (uint8, error)
	// Write performs a bus write at the latched address.
	Write(v uint8) error
	// Scratch exposes the ADL/ADH/op_latch staging bytes to CPU microcode.
	Scratch() *Scratch
}

// RAMBus is a trivial passthrough bus: the effective address maps directly
// into a flat Memory. It is used mostly for testing purposes and requires
// its backing Memory to be at least 64 KiB, since nothing narrows the
// address before it reaches Memory.Read/Write.
type RAMBus struct {
	scratch Scratch
	addr    uint16
	mem     *memory.Memory
}

const ramBusMinSize = 64 * 1024

// NewRAMBus constructs a RAMBus over mem, which must be at least 64 KiB.
func NewRAMBus(mem *memory.Memory) (*RAMBus, error) {
	if mem.Size() < ramBusMinSize {
		return nil, fmt.Errorf("%w: RAMBus requires a memory of at least %d bytes, got %d",
			coreerr.ErrInvalidBusAddress, ramBusMinSize, mem.Size())
	}
	return &RAMBus{mem: mem}, nil
}

func (b *RAMBus) SetAddress(addr uint16)     { b.addr = addr }
func (b *RAMBus) SetAddressHL(high, low uint8) { b.addr = uint16(high)<<8 | uint16(low) }
func (b *RAMBus) Scratch() *Scratch          { return &b.scratch }

func (b *RAMBus) Read() (uint8, error) {
	return b.mem.Read(b.addr), nil
}

func (b *RAMBus) Write(v uint8) error {
	b.mem.Write(b.addr, v)
	return nil
}

// PPURegisterFile is the contract NESBus needs from a PPU: eight
// memory-mapped registers addressed by index 0..7, with the read/write
// legality and side effects documented in the PPU register interface.
type PPURegisterFile interface {
	BusRead(index uint8) (uint8, error)
	BusWrite(index uint8, value uint8) error
}

// NESBus routes CPU-visible addresses across the NES memory map covered by
// this core: internal RAM mirrored every 0x800 bytes below 0x2000, and the
// eight PPU registers mirrored every 8 bytes between 0x2000 and 0x3FFF.
// Everything from 0x4000 upward (APU, controller ports, mapper/cartridge
// space, OAM DMA at 0x4014) is outside the specified core and is a contract
// failure here; a host wiring up a full system places a richer bus in front
// of those addresses instead of this one.
type NESBus struct {
	scratch Scratch
	addr    uint16
	ram     *memory.Memory
	ppu     PPURegisterFile
}

// NewNESBus constructs a NESBus over a 2 KiB-or-larger internal-RAM Memory
// and a PPU register file.
func NewNESBus(ram *memory.Memory, ppu PPURegisterFile) *NESBus {
	return &NESBus{ram: ram, ppu: ppu}
}

func (b *NESBus) SetAddress(addr uint16)       { b.addr = addr }
func (b *NESBus) SetAddressHL(high, low uint8) { b.addr = uint16(high)<<8 | uint16(low) }
func (b *NESBus) Scratch() *Scratch            { return &b.scratch }

func (b *NESBus) Read() (uint8, error) {
	switch {
	case b.addr < 0x2000:
		return b.ram.Read(b.addr & 0x07FF), nil
	case b.addr < 0x4000:
		return b.ppu.BusRead(uint8(b.addr & 0x0007))
	default:
		return 0, fmt.Errorf("%w: read at $%04X", coreerr.ErrInvalidBusAddress, b.addr)
	}
}

func (b *NESBus) Write(v uint8) error {
	switch {
	case b.addr < 0x2000:
		b.ram.Write(b.addr&0x07FF, v)
		return nil
	case b.addr < 0x4000:
		return b.ppu.BusWrite(uint8(b.addr&0x0007), v)
	default:
		return fmt.Errorf("%w: write at $%04X", coreerr.ErrInvalidBusAddress, b.addr)
	}
}
