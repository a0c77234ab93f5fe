package cpu

import "fmt"

import "gones/internal/coreerr"

// regSelector reaches into the CPU for the register a transfer, compare or
// indexing operation needs, so the addressing-mode generics below stay
// independent of which register they are wired to.
type regSelector func(cpu *CPU) *uint8

func regA(cpu *CPU) *uint8 { return &cpu.state.A }
func regX(cpu *CPU) *uint8 { return &cpu.state.X }
func regY(cpu *CPU) *uint8 { return &cpu.state.Y }

// readExec applies an operation that only reads its operand (loads, ALU
// ops, BIT, CMP-family) and never writes back to memory.
type readExec func(cpu *CPU, operand uint8)

// rmwExec computes a memory-modify-write result and applies any flag
// side-effects in the same call.
type rmwExec func(cpu *CPU, operand uint8) uint8

func invalidCycle(cpu *CPU) error {
	return fmt.Errorf("%w: opcode $%02X cycle %d", coreerr.ErrInvalidMicroCycle, cpu.ir, cpu.instructionCycle)
}

// immediate is the 2-cycle #nn addressing mode: the operand is the very
// next byte, consumed and acted on in the same cycle.
func immediate(exec readExec) stepFunc {
	return func(cpu *CPU) error {
		cpu.bus.SetAddress(cpu.state.PC)
		v, err := cpu.bus.Read()
		if err != nil {
			return err
		}
		cpu.state.PC++
		exec(cpu, v)
		cpu.endInstruction()
		return nil
	}
}

// zeroPage is the 3-cycle zero-page addressing mode.
func zeroPage(exec readExec) stepFunc {
	return func(cpu *CPU) error {
		switch cpu.instructionCycle {
		case 1:
			adl, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			cpu.bus.Scratch().ADL = adl
			cpu.advance()
			return nil
		case 2:
			cpu.bus.SetAddressHL(0x00, cpu.bus.Scratch().ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// zeroPageIndexed is the 4-cycle zero-page,X / zero-page,Y addressing mode.
// The index is added modulo 256 with a wasted dummy read at the
// unindexed address, matching real hardware.
func zeroPageIndexed(index regSelector, exec readExec) stepFunc {
	return func(cpu *CPU) error {
		switch cpu.instructionCycle {
		case 1:
			adl, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			cpu.bus.Scratch().ADL = adl
			cpu.advance()
			return nil
		case 2:
			cpu.bus.SetAddressHL(0x00, cpu.bus.Scratch().ADL)
			if _, err := cpu.bus.Read(); err != nil {
				return err
			}
			cpu.bus.Scratch().ADL += *index(cpu)
			cpu.advance()
			return nil
		case 3:
			cpu.bus.SetAddressHL(0x00, cpu.bus.Scratch().ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// absolute is the 4-cycle absolute addressing mode.
func absolute(exec readExec) stepFunc {
	return func(cpu *CPU) error {
		switch cpu.instructionCycle {
		case 1:
			adl, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			cpu.bus.Scratch().ADL = adl
			cpu.advance()
			return nil
		case 2:
			adh, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			cpu.bus.Scratch().ADH = adh
			cpu.advance()
			return nil
		case 3:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// absoluteIndexed is the absolute,X / absolute,Y addressing mode: 4 cycles
// when the indexed address stays within the fetched page, 5 when the low
// byte add carries into the high byte.
func absoluteIndexed(index regSelector, exec readExec) stepFunc {
	return func(cpu *CPU) error {
		switch cpu.instructionCycle {
		case 1:
			adl, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			cpu.bus.Scratch().ADL = adl
			cpu.advance()
			return nil
		case 2:
			adh, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			sc := cpu.bus.Scratch()
			sc.ADH = adh
			sum := uint16(sc.ADL) + uint16(*index(cpu))
			cpu.pageCrossed = sum > 0xFF
			sc.ADL = uint8(sum)
			cpu.advance()
			return nil
		case 3:
			sc := cpu.bus.Scratch()
			if cpu.pageCrossed {
				// Dummy read at the not-yet-fixed high byte.
				cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
				if _, err := cpu.bus.Read(); err != nil {
					return err
				}
				cpu.advance()
				return nil
			}
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		case 4:
			sc := cpu.bus.Scratch()
			sc.ADH++
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// xIndirect is the 6-cycle (zero-page,X) addressing mode.
func xIndirect(exec readExec) stepFunc {
	return func(cpu *CPU) error {
		switch cpu.instructionCycle {
		case 1:
			ptr, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			cpu.bus.Scratch().OpLatch = ptr
			cpu.advance()
			return nil
		case 2:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(0x00, sc.OpLatch)
			if _, err := cpu.bus.Read(); err != nil {
				return err
			}
			sc.OpLatch += cpu.state.X
			cpu.advance()
			return nil
		case 3:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(0x00, sc.OpLatch)
			adl, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			sc.ADL = adl
			cpu.advance()
			return nil
		case 4:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(0x00, sc.OpLatch+1)
			adh, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			sc.ADH = adh
			cpu.advance()
			return nil
		case 5:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// indirectY is the (zero-page),Y addressing mode: 5 cycles, 6 across a
// page boundary.
func indirectY(exec readExec) stepFunc {
	return func(cpu *CPU) error {
		switch cpu.instructionCycle {
		case 1:
			ptr, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			cpu.bus.Scratch().OpLatch = ptr
			cpu.advance()
			return nil
		case 2:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(0x00, sc.OpLatch)
			adl, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			sc.ADL = adl
			cpu.advance()
			return nil
		case 3:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(0x00, sc.OpLatch+1)
			adh, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			sc.ADH = adh
			sum := uint16(sc.ADL) + uint16(cpu.state.Y)
			cpu.pageCrossed = sum > 0xFF
			sc.ADL = uint8(sum)
			cpu.advance()
			return nil
		case 4:
			sc := cpu.bus.Scratch()
			if cpu.pageCrossed {
				cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
				if _, err := cpu.bus.Read(); err != nil {
					return err
				}
				cpu.advance()
				return nil
			}
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		case 5:
			sc := cpu.bus.Scratch()
			sc.ADH++
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			exec(cpu, v)
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// fetchPC reads the byte at PC and advances it, the universal "next
// instruction byte" step every multi-byte addressing mode starts with.
func (c *CPU) fetchPC() (uint8, error) {
	c.bus.SetAddress(c.state.PC)
	v, err := c.bus.Read()
	if err != nil {
		return 0, err
	}
	c.state.PC++
	return v, nil
}
