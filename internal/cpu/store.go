package cpu

// storeExec supplies the byte a store instruction writes; for STA/STX/STY
// it is simply the selected register.
type storeExec func(cpu *CPU) uint8

func storeZeroPage(exec storeExec) stepFunc {
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
			if err := cpu.bus.Write(exec(cpu)); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

func storeZeroPageIndexed(index regSelector, exec storeExec) stepFunc {
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
			if err := cpu.bus.Write(exec(cpu)); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

func storeAbsolute(exec storeExec) stepFunc {
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
			if err := cpu.bus.Write(exec(cpu)); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// storeAbsoluteIndexed always takes the 5-cycle form: a store cannot skip
// the dummy read the way a load can, because the effective address must be
// settled before the write regardless of whether the page changed.
func storeAbsoluteIndexed(index regSelector, exec storeExec) stepFunc {
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
			// Dummy read at the unfixed high byte before the carry settles.
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
			if err := cpu.bus.Write(exec(cpu)); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

func storeXIndirect(exec storeExec) stepFunc {
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
			if err := cpu.bus.Write(exec(cpu)); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}

// storeIndirectY always takes the 6-cycle form, for the same reason
// storeAbsoluteIndexed does.
func storeIndirectY(exec storeExec) stepFunc {
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
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			if _, err := cpu.bus.Read(); err != nil {
				return err
			}
			if cpu.pageCrossed {
				sc.ADH++
			}
			cpu.advance()
			return nil
		case 5:
			sc := cpu.bus.Scratch()
			cpu.bus.SetAddressHL(sc.ADH, sc.ADL)
			if err := cpu.bus.Write(exec(cpu)); err != nil {
				return err
			}
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}
