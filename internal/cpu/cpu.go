// Package cpu implements a cycle-accurate MOS 6502 (2A03) execution engine.
//
// Unlike an instruction-at-a-time interpreter, Step advances the machine by
// exactly one bus cycle: a single call either services one microcycle of a
// pending interrupt sequence, fetches the next opcode, or runs the next
// microcycle of the instruction currently in flight. This lets a host
// interleave CPU, PPU and APU clocking at bus-cycle granularity, which is
// what cycle-accurate NES emulation requires.
package cpu

import (
	"fmt"

	"gones/internal/bus"
	"gones/internal/coreerr"
)

// Mode is the CPU's top-level control state.
type Mode uint8

const (
	ModeReset Mode = iota
	ModeRun
	ModeNMI
	ModeIRQ
)

func (m Mode) String() string {
	switch m {
	case ModeReset:
		return "RESET"
	case ModeRun:
		return "RUN"
	case ModeNMI:
		return "NMI"
	case ModeIRQ:
		return "IRQ"
	default:
		return "UNKNOWN"
	}
}

// Status flag bit positions within the packed P register, named bottom to
// top exactly as the architecture defines them.
const (
	flagC uint8 = 1 << iota // Carry
	flagZ                   // Zero
	flagI                   // Interrupt disable
	flagD                   // Decimal (stored, never acted on)
	flagB                   // Break (only meaningful in the pushed snapshot)
	flagU                   // Unused, always read back as 1
	flagV                   // Overflow
	flagN                   // Negative
)

// Status is the 8-bit processor status register. Individual flags are
// accessed through named boolean accessors rather than exposed bit fields,
// so callers never depend on this type's internal layout.
type Status struct {
	bits uint8
}

func (s Status) Carry() bool    { return s.bits&flagC != 0 }
func (s Status) Zero() bool     { return s.bits&flagZ != 0 }
func (s Status) IRQDisable() bool { return s.bits&flagI != 0 }
func (s Status) Decimal() bool  { return s.bits&flagD != 0 }
func (s Status) Break() bool    { return s.bits&flagB != 0 }
func (s Status) Unused() bool   { return s.bits&flagU != 0 }
func (s Status) Overflow() bool { return s.bits&flagV != 0 }
func (s Status) Negative() bool { return s.bits&flagN != 0 }

func (s *Status) set(flag uint8, v bool) {
	if v {
		s.bits |= flag
	} else {
		s.bits &^= flag
	}
}

func (s *Status) SetCarry(v bool)    { s.set(flagC, v) }
func (s *Status) SetZero(v bool)     { s.set(flagZ, v) }
func (s *Status) SetIRQDisable(v bool) { s.set(flagI, v) }
func (s *Status) SetDecimal(v bool)  { s.set(flagD, v) }
func (s *Status) SetBreak(v bool)    { s.set(flagB, v) }
func (s *Status) SetUnused(v bool)   { s.set(flagU, v) }
func (s *Status) SetOverflow(v bool) { s.set(flagV, v) }
func (s *Status) SetNegative(v bool) { s.set(flagN, v) }

// Byte returns the packed representation, as pushed to the stack by
// PHP/BRK/NMI/IRQ.
func (s Status) Byte() uint8 { return s.bits }

// SetByte replaces the packed representation wholesale, as loaded by PLP.
func (s *Status) SetByte(v uint8) { s.bits = v }

// setZN applies the universal Z/N update rule to result.
func (s *Status) setZN(result uint8) {
	s.SetZero(result == 0)
	s.SetNegative(result&0x80 != 0)
}

// State is the architecturally visible register file: everything a
// debugger or a save-state would need, and nothing more.
type State struct {
	PC     uint16
	SP     uint8
	A      uint8
	X      uint8
	Y      uint8
	Status Status
}

// CPU is a 6502/2A03 core bound to a Bus. It holds no state beyond what the
// architecture and the cycle-slicing scheme require; a fresh CPU is cheap
// and holds no references to any global.
type CPU struct {
	mode  Mode
	state State

	ir               uint8
	instructionCycle uint8
	pageCrossed      bool

	interruptCycle uint8
	nmiPending     bool
	irqPending     bool

	bus bus.Bus
}

// New constructs a CPU bound to bus. The CPU starts in RESET mode; the
// first five Step calls complete power-up initialization.
func New(b bus.Bus) *CPU {
	return &CPU{bus: b, mode: ModeReset}
}

// State returns a snapshot of the architectural registers, intended for
// tests and debuggers; it is not consulted by Step.
func (c *CPU) State() State {
	return c.state
}

// Reset switches the CPU back to RESET mode. The next five Step calls
// complete the sequence; A, X and Y survive unchanged.
func (c *CPU) Reset() {
	c.mode = ModeReset
	c.interruptCycle = 0
}

// SignalNMI raises the (level-triggered) NMI pending bit. It is sampled the
// next time Step finds instruction_cycle==0 in RUN mode, and cannot be
// masked by the I flag.
func (c *CPU) SignalNMI() { c.nmiPending = true }

// SignalIRQ raises the IRQ pending bit. It is sampled under the same
// conditions as NMI, but only acted on if the I flag is clear.
func (c *CPU) SignalIRQ() { c.irqPending = true }

// Step advances the machine by exactly one bus cycle.
func (c *CPU) Step() error {
	switch c.mode {
	case ModeReset:
		return c.handleReset()
	case ModeNMI:
		return c.handleInterrupt(0xFFFA, 0xFFFB)
	case ModeIRQ:
		return c.handleInterrupt(0xFFFE, 0xFFFF)
	case ModeRun:
		return c.stepRun()
	default:
		return fmt.Errorf("%w: unknown CPU mode %v", coreerr.ErrInvalidMicroCycle, c.mode)
	}
}

func (c *CPU) stepRun() error {
	if c.instructionCycle == 0 {
		if c.nmiPending {
			c.nmiPending = false
			c.mode = ModeNMI
			c.interruptCycle = 0
			return c.handleInterrupt(0xFFFA, 0xFFFB)
		}
		if c.irqPending && !c.state.Status.IRQDisable() {
			c.irqPending = false
			c.mode = ModeIRQ
			c.interruptCycle = 0
			return c.handleInterrupt(0xFFFE, 0xFFFF)
		}

		c.bus.SetAddress(c.state.PC)
		opcode, err := c.bus.Read()
		if err != nil {
			return err
		}
		c.ir = opcode
		if dispatchTable[opcode] == nil {
			return fmt.Errorf("%w: $%02X at PC=$%04X", coreerr.ErrInvalidOpcode, opcode, c.state.PC)
		}
		c.state.PC++
		c.instructionCycle = 1
		return nil
	}

	fn := dispatchTable[c.ir]
	if fn == nil {
		return fmt.Errorf("%w: $%02X at PC=$%04X", coreerr.ErrInvalidOpcode, c.ir, c.state.PC-1)
	}
	return fn(c)
}

// handleReset runs one microcycle of the 5-cycle RESET sequence.
func (c *CPU) handleReset() error {
	switch c.interruptCycle {
	case 0:
		c.state.Status.SetByte(0)
		c.state.PC = 0
		c.instructionCycle = 0
		c.ir = 0
		c.pageCrossed = false
		c.nmiPending = false
		c.irqPending = false
		c.interruptCycle++
		return nil
	case 1:
		c.state.SP = 0xFD
		c.state.Status.SetIRQDisable(true)
		c.state.Status.SetUnused(true)
		c.interruptCycle++
		return nil
	case 2:
		c.bus.SetAddressHL(0xFF, 0xFC)
		low, err := c.bus.Read()
		if err != nil {
			return err
		}
		c.bus.Scratch().ADL = low
		c.interruptCycle++
		return nil
	case 3:
		c.bus.SetAddressHL(0xFF, 0xFD)
		high, err := c.bus.Read()
		if err != nil {
			return err
		}
		c.bus.Scratch().ADH = high
		c.interruptCycle++
		return nil
	case 4:
		sc := c.bus.Scratch()
		c.state.PC = uint16(sc.ADH)<<8 | uint16(sc.ADL)
		c.mode = ModeRun
		c.interruptCycle = 0
		return nil
	default:
		return fmt.Errorf("%w: reset cycle %d", coreerr.ErrInvalidMicroCycle, c.interruptCycle)
	}
}

// handleInterrupt runs one microcycle of the 7-cycle NMI/IRQ sequence;
// vectorLow/vectorHigh select which vector pair to fetch from.
func (c *CPU) handleInterrupt(vectorLow, vectorHigh uint16) error {
	switch c.interruptCycle {
	case 0:
		c.bus.SetAddress(c.state.PC)
		if _, err := c.bus.Read(); err != nil {
			return err
		}
		c.interruptCycle++
		return nil
	case 1:
		if err := c.pushStack(uint8(c.state.PC >> 8)); err != nil {
			return err
		}
		c.interruptCycle++
		return nil
	case 2:
		if err := c.pushStack(uint8(c.state.PC)); err != nil {
			return err
		}
		c.interruptCycle++
		return nil
	case 3:
		snapshot := c.state.Status
		snapshot.SetBreak(false)
		snapshot.SetUnused(true)
		if err := c.pushStack(snapshot.Byte()); err != nil {
			return err
		}
		c.interruptCycle++
		return nil
	case 4:
		c.state.Status.SetIRQDisable(true)
		c.interruptCycle++
		return nil
	case 5:
		c.bus.SetAddress(vectorLow)
		low, err := c.bus.Read()
		if err != nil {
			return err
		}
		c.state.PC = uint16(uint8(c.state.PC>>8))<<8 | uint16(low)
		c.interruptCycle++
		return nil
	case 6:
		c.bus.SetAddress(vectorHigh)
		high, err := c.bus.Read()
		if err != nil {
			return err
		}
		c.state.PC = uint16(high)<<8 | uint16(uint8(c.state.PC))
		c.mode = ModeRun
		c.interruptCycle = 0
		return nil
	default:
		return fmt.Errorf("%w: interrupt cycle %d", coreerr.ErrInvalidMicroCycle, c.interruptCycle)
	}
}

// pushStack writes value to the stack page and decrements SP.
func (c *CPU) pushStack(value uint8) error {
	c.bus.SetAddressHL(0x01, c.state.SP)
	if err := c.bus.Write(value); err != nil {
		return err
	}
	c.state.SP--
	return nil
}

// pullStack increments SP and reads the stack page.
func (c *CPU) pullStack() (uint8, error) {
	c.state.SP++
	c.bus.SetAddressHL(0x01, c.state.SP)
	return c.bus.Read()
}

// endInstruction resets the cycle index to 0, the universal signal that the
// current instruction has completed its last bus transaction.
func (c *CPU) endInstruction() {
	c.instructionCycle = 0
}

func (c *CPU) advance() {
	c.instructionCycle++
}
