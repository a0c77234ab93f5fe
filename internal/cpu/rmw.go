package cpu

// rmwAccumulator wires ASL/LSR/ROL/ROR's accumulator-addressed form: 2
// cycles in all (one microcycle after the opcode fetch, with no bus
// access), operating directly on A.
func rmwAccumulator(exec rmwExec) stepFunc {
	return func(cpu *CPU) error {
		cpu.state.A = exec(cpu, cpu.state.A)
		cpu.endInstruction()
		return nil
	}
}

// rmwZeroPage is the 5-cycle zero-page read-modify-write form shared by
// ASL/LSR/ROL/ROR/INC/DEC: fetch address, read, dummy-write the unmodified
// value while the ALU computes, then write the real result.
func rmwZeroPage(exec rmwExec) stepFunc {
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
			cpu.bus.Scratch().OpLatch = v
			cpu.advance()
			return nil
		case 3:
			cpu.bus.SetAddressHL(0x00, cpu.bus.Scratch().ADL)
			if err := cpu.bus.Write(cpu.bus.Scratch().OpLatch); err != nil {
				return err
			}
			cpu.bus.Scratch().OpLatch = exec(cpu, cpu.bus.Scratch().OpLatch)
			cpu.advance()
			return nil
		case 4:
			cpu.bus.SetAddressHL(0x00, cpu.bus.Scratch().ADL)
			if err := cpu.bus.Write(cpu.bus.Scratch().OpLatch); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

func rmwZeroPageIndexed(index regSelector, exec rmwExec) stepFunc {
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
			cpu.bus.Scratch().OpLatch = v
			cpu.advance()
			return nil
		case 4:
			cpu.bus.SetAddressHL(0x00, cpu.bus.Scratch().ADL)
			if err := cpu.bus.Write(cpu.bus.Scratch().OpLatch); err != nil {
				return err
			}
			cpu.bus.Scratch().OpLatch = exec(cpu, cpu.bus.Scratch().OpLatch)
			cpu.advance()
			return nil
		case 5:
			cpu.bus.SetAddressHL(0x00, cpu.bus.Scratch().ADL)
			if err := cpu.bus.Write(cpu.bus.Scratch().OpLatch); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

func rmwAbsolute(exec rmwExec) stepFunc {
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
			sc.OpLatch = v
			cpu.advance()
			return nil
		case 4:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			if err := cpu.bus.Write(sc.OpLatch); err != nil {
				return err
			}
			sc.OpLatch = exec(cpu, sc.OpLatch)
			cpu.advance()
			return nil
		case 5:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			if err := cpu.bus.Write(sc.OpLatch); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// rmwAbsoluteIndexed always takes the 7-cycle form: the dummy read happens
// at the unfixed address, then a real re-read at the carried address,
// mirroring hardware rather than skipping the second read on no-page-cross.
func rmwAbsoluteIndexed(index regSelector, exec rmwExec) stepFunc {
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
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			if _, err := cpu.bus.Read(); err != nil {
				return err
			}
			if cpu.pageCrossed {
				sc.ADH++
			}
			cpu.advance()
			return nil
		case 4:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			v, err := cpu.bus.Read()
			if err != nil {
				return err
			}
			sc.OpLatch = v
			cpu.advance()
			return nil
		case 5:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			if err := cpu.bus.Write(sc.OpLatch); err != nil {
				return err
			}
			sc.OpLatch = exec(cpu, sc.OpLatch)
			cpu.advance()
			return nil
		case 6:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			if err := cpu.bus.Write(sc.OpLatch); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}
