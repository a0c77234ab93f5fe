package cpu

// branchCond reports whether a conditional branch should be taken, given
// the current status flags.
type branchCond func(s Status) bool

// branch implements the relative-addressing branch instructions: 2 cycles
// when not taken, 3 when taken within the same page, 4 when taken across a
// page boundary. The target PC is computed in full up front and staged in
// ADH/ADL; hardware only commits the low byte on cycle 2, fixing the high
// byte on an extra cycle 3 when the page changed.
func branch(cond branchCond) stepFunc {
	return func(cpu *CPU) error {
		switch cpu.instructionCycle {
		case 1:
			offset, err := cpu.fetchPC()
			if err != nil {
				return err
			}
			if !cond(cpu.state.Status) {
				cpu.endInstruction()
				return nil
			}
			target := uint16(int32(cpu.state.PC) + int32(int8(offset)))
			sc := cpu.bus.Scratch()
			sc.ADL = uint8(target)
			sc.ADH = uint8(target >> 8)
			cpu.advance()
			return nil
		case 2:
			if _, err := cpu.fetchDummy(); err != nil {
				return err
			}
			sc := cpu.bus.Scratch()
			oldHigh := uint8(cpu.state.PC >> 8)
			cpu.state.PC = uint16(oldHigh)<<8 | uint16(sc.ADL)
			cpu.pageCrossed = oldHigh != sc.ADH
			if !cpu.pageCrossed {
				cpu.endInstruction()
				return nil
			}
			cpu.advance()
			return nil
		case 3:
			if _, err := cpu.fetchDummy(); err != nil {
				return err
			}
			sc := cpu.bus.Scratch()
			cpu.state.PC = uint16(sc.ADH)<<8 | uint16(sc.ADL)
			cpu.endInstruction()
			return nil
		default:
			return invalidCycle(cpu)
		}
	}
}
