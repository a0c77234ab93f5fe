package cpu

// jmpAbsolute is the 3-cycle JMP $nnnn.
func jmpAbsolute(cpu *CPU) error {
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
		cpu.state.PC = uint16(adh)<<8 | uint16(cpu.bus.Scratch().ADL)
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// jmpIndirect is the 5-cycle JMP ($nnnn), including the mandatory hardware
// bug where the high-byte fetch does not cross a page boundary: reading
// from $xxFF wraps to $xx00 rather than $(xx+1)00.
func jmpIndirect(cpu *CPU) error {
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
		low, err := cpu.bus.Read()
		if err != nil {
			return err
		}
		sc.OpLatch = low
		cpu.advance()
		return nil
	case 4:
		sc := cpu.bus.Scratch()
		cpu.bus.SetAddressHL(sc.ADH, sc.ADL+1) // wraps within the page, bug-for-bug
		high, err := cpu.bus.Read()
		if err != nil {
			return err
		}
		cpu.state.PC = uint16(high)<<8 | uint16(sc.OpLatch)
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// jsr is the 6-cycle JSR $nnnn: the pushed return address is PC+2 (the
// last byte of the JSR instruction itself), not the instruction after it.
func jsr(cpu *CPU) error {
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
		// Internal operation cycle; real hardware peeks the stack here.
		cpu.bus.SetAddressHL(0x01, cpu.state.SP)
		if _, err := cpu.bus.Read(); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 3:
		if err := cpu.pushStack(uint8(cpu.state.PC >> 8)); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 4:
		if err := cpu.pushStack(uint8(cpu.state.PC)); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 5:
		adh, err := cpu.fetchPC()
		if err != nil {
			return err
		}
		cpu.state.PC = uint16(adh)<<8 | uint16(cpu.bus.Scratch().ADL)
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// rts is the 6-cycle RTS: pull PC, then spend a cycle incrementing past the
// JSR operand byte the pushed address still points at.
func rts(cpu *CPU) error {
	switch cpu.instructionCycle {
	case 1:
		if _, err := cpu.fetchDummy(); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 2:
		cpu.bus.SetAddressHL(0x01, cpu.state.SP)
		if _, err := cpu.bus.Read(); err != nil {
			return err
		}
		cpu.state.SP++
		cpu.advance()
		return nil
	case 3:
		low, err := cpu.readStack()
		if err != nil {
			return err
		}
		cpu.bus.Scratch().ADL = low
		cpu.state.SP++
		cpu.advance()
		return nil
	case 4:
		high, err := cpu.readStack()
		if err != nil {
			return err
		}
		cpu.state.PC = uint16(high)<<8 | uint16(cpu.bus.Scratch().ADL)
		cpu.advance()
		return nil
	case 5:
		if _, err := cpu.fetchDummy(); err != nil {
			return err
		}
		cpu.state.PC++
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// rti is the 6-cycle RTI: pull status (B/U are not architectural after the
// pull, U always reads back 1), then pull PC with no return-address
// adjustment, unlike RTS.
func rti(cpu *CPU) error {
	switch cpu.instructionCycle {
	case 1:
		if _, err := cpu.fetchDummy(); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 2:
		cpu.bus.SetAddressHL(0x01, cpu.state.SP)
		if _, err := cpu.bus.Read(); err != nil {
			return err
		}
		cpu.state.SP++
		cpu.advance()
		return nil
	case 3:
		status, err := cpu.readStack()
		if err != nil {
			return err
		}
		cpu.state.Status.SetByte(status)
		cpu.state.Status.SetBreak(false)
		cpu.state.Status.SetUnused(true)
		cpu.state.SP++
		cpu.advance()
		return nil
	case 4:
		low, err := cpu.readStack()
		if err != nil {
			return err
		}
		cpu.bus.Scratch().ADL = low
		cpu.state.SP++
		cpu.advance()
		return nil
	case 5:
		high, err := cpu.readStack()
		if err != nil {
			return err
		}
		cpu.state.PC = uint16(high)<<8 | uint16(cpu.bus.Scratch().ADL)
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// brk is the 7-cycle software interrupt: identical in shape to the
// hardware IRQ sequence, except it pushes PC+2 (BRK's operand byte is
// skipped), sets the Break flag in the pushed snapshot, and always vectors
// through $FFFE/$FFFF regardless of the I flag.
func brk(cpu *CPU) error {
	switch cpu.instructionCycle {
	case 1:
		// The byte after the opcode is a padding byte BRK always skips.
		if _, err := cpu.fetchPC(); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 2:
		if err := cpu.pushStack(uint8(cpu.state.PC >> 8)); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 3:
		if err := cpu.pushStack(uint8(cpu.state.PC)); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 4:
		snapshot := cpu.state.Status
		snapshot.SetBreak(true)
		snapshot.SetUnused(true)
		if err := cpu.pushStack(snapshot.Byte()); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 5:
		cpu.state.Status.SetIRQDisable(true)
		cpu.bus.SetAddress(0xFFFE)
		low, err := cpu.bus.Read()
		if err != nil {
			return err
		}
		cpu.bus.Scratch().ADL = low
		cpu.advance()
		return nil
	case 6:
		cpu.bus.SetAddress(0xFFFF)
		high, err := cpu.bus.Read()
		if err != nil {
			return err
		}
		cpu.state.PC = uint16(high)<<8 | uint16(cpu.bus.Scratch().ADL)
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// flagSet is the 2-cycle family of implied flag-control instructions
// (CLC/SEC/CLI/SEI/CLD/SED/CLV).
func flagSet(flag uint8, value bool) stepFunc {
	return func(cpu *CPU) error {
		cpu.state.Status.set(flag, value)
		cpu.endInstruction()
		return nil
	}
}
