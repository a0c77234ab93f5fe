// Package system wires the CPU, PPU, APU, cartridge, and controller ports
// into a complete NES, the way internal/bus used to before the CPU core
// was split out into its own narrowly-scoped package. It owns the full
// $0000-$FFFF CPU memory map (RAM mirroring, PPU/APU/input register
// windows, OAM DMA, and cartridge PRG space) rather than the core's
// deliberately narrow RAM+PPU-only bus.
package system

import (
	"fmt"

	"gones/internal/apu"
	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

const internalRAMSize = 0x0800

// Bus is the full NES CPU memory map: internal RAM, PPU/APU/controller
// registers, OAM DMA, and cartridge PRG space. It implements bus.Bus so the
// CPU core can drive it exactly as it drives the core's own NESBus.
type Bus struct {
	scratch bus.Scratch
	addr    uint16

	ram   *memory.Memory
	ppu   *ppu.PPU
	apu   *apu.APU
	input *input.InputState
	cart  *cartridge.Cartridge

	dmaPending bool
	dmaPage    uint8
}

func newBus(ram *memory.Memory, p *ppu.PPU, a *apu.APU, in *input.InputState, cart *cartridge.Cartridge) *Bus {
	return &Bus{ram: ram, ppu: p, apu: a, input: in, cart: cart}
}

func (b *Bus) SetAddress(addr uint16)       { b.addr = addr }
func (b *Bus) SetAddressHL(high, low uint8) { b.addr = uint16(high)<<8 | uint16(low) }
func (b *Bus) Scratch() *bus.Scratch        { return &b.scratch }

func (b *Bus) Read() (uint8, error) {
	switch {
	case b.addr < 0x2000:
		return b.ram.Read(b.addr & 0x07FF), nil
	case b.addr < 0x4000:
		return b.ppu.BusRead(uint8(b.addr & 0x0007))
	case b.addr == 0x4015:
		return b.apu.ReadStatus(), nil
	case b.addr == 0x4016:
		return b.input.Read(0x4016), nil
	case b.addr == 0x4017:
		return b.input.Read(0x4017), nil
	case b.addr < 0x4020:
		return 0, nil // APU/IO space with no readable register at this address
	default:
		return b.cart.ReadPRG(b.addr), nil
	}
}

func (b *Bus) Write(v uint8) error {
	switch {
	case b.addr < 0x2000:
		b.ram.Write(b.addr&0x07FF, v)
		return nil
	case b.addr < 0x4000:
		return b.ppu.BusWrite(uint8(b.addr&0x0007), v)
	case b.addr == 0x4014:
		b.dmaPending = true
		b.dmaPage = v
		return nil
	case b.addr == 0x4016:
		b.input.Write(0x4016, v)
		return nil
	case b.addr < 0x4018:
		b.apu.WriteRegister(b.addr, v)
		return nil
	case b.addr < 0x4020:
		return nil // unused/test-mode APU/IO space
	default:
		b.cart.WritePRG(b.addr, v)
		return nil
	}
}

// takeDMA reports and clears a pending OAM DMA request, if any.
func (b *Bus) takeDMA() (page uint8, pending bool) {
	if !b.dmaPending {
		return 0, false
	}
	b.dmaPending = false
	return b.dmaPage, true
}

// System owns one complete NES: CPU, PPU, APU, cartridge, and both
// controller ports, wired together the way a real console's address
// decoder and NMI line connect them.
type System struct {
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Input *input.InputState

	bus *Bus
	ram *memory.Memory
}

// New constructs a System around cart, ready for Reset.
func New(cart *cartridge.Cartridge) *System {
	ram := memory.New(internalRAMSize)
	p := ppu.New()
	p.SetMemory(ppu.NewVRAM(cart, ppu.MirrorMode(cart.GetMirrorMode())))

	a := apu.New()
	in := input.NewInputState()

	b := newBus(ram, p, a, in, cart)
	c := cpu.New(b)

	p.SetNMICallback(c.SignalNMI)

	return &System{CPU: c, PPU: p, APU: a, Input: in, bus: b, ram: ram}
}

// Reset powers on every component and runs the CPU's 5-cycle RESET sequence
// to completion, leaving it ready to fetch its first opcode.
func (s *System) Reset() error {
	s.ram.Clear()
	s.PPU.Reset()
	s.APU.Reset()
	s.Input.Reset()
	s.CPU.Reset()
	for i := 0; i < 5; i++ {
		if err := s.CPU.Step(); err != nil {
			return fmt.Errorf("reset sequence: %w", err)
		}
	}
	return nil
}

// Step runs exactly one CPU bus transaction and the corresponding three PPU
// dots (the PPU free-runs at 3x the CPU clock), servicing any pending OAM
// DMA request first.
func (s *System) Step() error {
	if page, pending := s.bus.takeDMA(); pending {
		s.runOAMDMA(page)
	}
	if err := s.CPU.Step(); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		s.PPU.Step()
	}
	return nil
}

// runOAMDMA copies the 256-byte page at page<<8 into OAM. Real hardware
// stalls the CPU for 513 or 514 cycles while this happens; the core CPU
// this system drives has no stall primitive, so the copy is modeled as
// instantaneous and the stall cycles are not separately accounted for.
func (s *System) runOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		var v uint8
		if base < 0x2000 {
			v = s.ram.Read((base + uint16(i)) & 0x07FF)
		} else {
			v, _ = s.readDMASource(base + uint16(i))
		}
		s.PPU.WriteOAM(uint8(i), v)
	}
}

func (s *System) readDMASource(addr uint16) (uint8, error) {
	s.bus.SetAddress(addr)
	return s.bus.Read()
}

// StepFrame runs the System until the PPU completes one full frame.
func (s *System) StepFrame() error {
	startFrame := s.PPU.GetFrameCount()
	for s.PPU.GetFrameCount() == startFrame {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}
