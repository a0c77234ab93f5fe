package cpu

// transfer is the 2-cycle implied-addressing register-to-register move
// shared by TAX/TAY/TXA/TYA/TSX. Z/N are updated from the destination.
func transfer(src, dst regSelector) stepFunc {
	return func(cpu *CPU) error {
		*dst(cpu) = *src(cpu)
		cpu.state.Status.setZN(*dst(cpu))
		cpu.endInstruction()
		return nil
	}
}

// txs moves X into SP without touching any flag.
func txs(cpu *CPU) error {
	cpu.state.SP = cpu.state.X
	cpu.endInstruction()
	return nil
}

func nop(cpu *CPU) error {
	cpu.endInstruction()
	return nil
}

// pha is the 3-cycle push-accumulator: a dummy read of the next opcode
// byte precedes the actual push, as on real hardware.
func pha(cpu *CPU) error {
	switch cpu.instructionCycle {
	case 1:
		if _, err := cpu.fetchDummy(); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 2:
		if err := cpu.pushStack(cpu.state.A); err != nil {
			return err
		}
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// php pushes status with B and U forced to 1, per the pushed-snapshot rule.
func php(cpu *CPU) error {
	switch cpu.instructionCycle {
	case 1:
		if _, err := cpu.fetchDummy(); err != nil {
			return err
		}
		cpu.advance()
		return nil
	case 2:
		snapshot := cpu.state.Status
		snapshot.SetBreak(true)
		snapshot.SetUnused(true)
		if err := cpu.pushStack(snapshot.Byte()); err != nil {
			return err
		}
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// pla is the 4-cycle pull-accumulator.
func pla(cpu *CPU) error {
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
		v, err := cpu.readStack()
		if err != nil {
			return err
		}
		cpu.state.A = v
		cpu.state.Status.setZN(v)
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// plp pulls status, forcing B back to 0; U always reads back as 1.
func plp(cpu *CPU) error {
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
		v, err := cpu.readStack()
		if err != nil {
			return err
		}
		cpu.state.Status.SetByte(v)
		cpu.state.Status.SetBreak(false)
		cpu.state.Status.SetUnused(true)
		cpu.endInstruction()
		return nil
	default:
		return invalidCycle(cpu)
	}
}

// fetchDummy reads at PC without advancing it, the wasted cycle the stack
// instructions (PHA/PHP/PLA/PLP, and RTS/RTI) spend re-reading the next
// opcode byte. Register-only implied instructions do not call it.
func (c *CPU) fetchDummy() (uint8, error) {
	c.bus.SetAddress(c.state.PC)
	return c.bus.Read()
}

// readStack re-reads the current stack-pointer address without moving SP,
// splitting PLA/PLP's increment-then-read into two distinct microcycles.
func (c *CPU) readStack() (uint8, error) {
	c.bus.SetAddressHL(0x01, c.state.SP)
	return c.bus.Read()
}
