package cpu

// stepFunc runs one microcycle of the instruction currently latched in
// cpu.ir, switching on cpu.instructionCycle internally.
type stepFunc func(cpu *CPU) error

// dispatchTable maps every documented 6502 opcode to its microcode.
// Undocumented/illegal opcodes are deliberately left nil, which Step
// surfaces as ErrInvalidOpcode rather than silently emulating them.
var dispatchTable [256]stepFunc

func ldExec(sel regSelector) readExec {
	return func(cpu *CPU, operand uint8) {
		*sel(cpu) = operand
		cpu.state.Status.setZN(operand)
	}
}

func cmpExec(sel regSelector) readExec {
	return func(cpu *CPU, operand uint8) {
		compare(cpu, *sel(cpu), operand)
	}
}

func storeReg(sel regSelector) storeExec {
	return func(cpu *CPU) uint8 { return *sel(cpu) }
}

func rmwWrap(fn func(s *Status, v uint8) uint8) rmwExec {
	return func(cpu *CPU, v uint8) uint8 { return fn(&cpu.state.Status, v) }
}

func incDecReg(sel regSelector, delta int8) stepFunc {
	return func(cpu *CPU) error {
		reg := sel(cpu)
		*reg = uint8(int16(*reg) + int16(delta))
		cpu.state.Status.setZN(*reg)
		cpu.endInstruction()
		return nil
	}
}

func init() {
	t := &dispatchTable

	// --- Loads ---
	t[0xA9] = immediate(ldExec(regA))
	t[0xA5] = zeroPage(ldExec(regA))
	t[0xB5] = zeroPageIndexed(regX, ldExec(regA))
	t[0xAD] = absolute(ldExec(regA))
	t[0xBD] = absoluteIndexed(regX, ldExec(regA))
	t[0xB9] = absoluteIndexed(regY, ldExec(regA))
	t[0xA1] = xIndirect(ldExec(regA))
	t[0xB1] = indirectY(ldExec(regA))

	t[0xA2] = immediate(ldExec(regX))
	t[0xA6] = zeroPage(ldExec(regX))
	t[0xB6] = zeroPageIndexed(regY, ldExec(regX))
	t[0xAE] = absolute(ldExec(regX))
	t[0xBE] = absoluteIndexed(regY, ldExec(regX))

	t[0xA0] = immediate(ldExec(regY))
	t[0xA4] = zeroPage(ldExec(regY))
	t[0xB4] = zeroPageIndexed(regX, ldExec(regY))
	t[0xAC] = absolute(ldExec(regY))
	t[0xBC] = absoluteIndexed(regX, ldExec(regY))

	// --- Stores ---
	t[0x85] = storeZeroPage(storeReg(regA))
	t[0x95] = storeZeroPageIndexed(regX, storeReg(regA))
	t[0x8D] = storeAbsolute(storeReg(regA))
	t[0x9D] = storeAbsoluteIndexed(regX, storeReg(regA))
	t[0x99] = storeAbsoluteIndexed(regY, storeReg(regA))
	t[0x81] = storeXIndirect(storeReg(regA))
	t[0x91] = storeIndirectY(storeReg(regA))

	t[0x86] = storeZeroPage(storeReg(regX))
	t[0x96] = storeZeroPageIndexed(regY, storeReg(regX))
	t[0x8E] = storeAbsolute(storeReg(regX))

	t[0x84] = storeZeroPage(storeReg(regY))
	t[0x94] = storeZeroPageIndexed(regX, storeReg(regY))
	t[0x8C] = storeAbsolute(storeReg(regY))

	// --- Register transfers ---
	t[0xAA] = transfer(regA, regX) // TAX
	t[0xA8] = transfer(regA, regY) // TAY
	t[0x8A] = transfer(regX, regA) // TXA
	t[0x98] = transfer(regY, regA) // TYA
	t[0xBA] = transfer(func(cpu *CPU) *uint8 { return &cpu.state.SP }, regX) // TSX
	t[0x9A] = txs

	// --- Stack ---
	t[0x48] = pha
	t[0x68] = pla
	t[0x08] = php
	t[0x28] = plp

	// --- Logical / ALU (Immediate, ZeroPage, ZeroPage,X, Absolute, Absolute,X/Y, (zp,X), (zp),Y) ---
	wireALU(t, 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31, and)
	wireALU(t, 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51, eor)
	wireALU(t, 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11, ora)
	wireALU(t, 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71, adc)
	wireALU(t, 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1, sbc)

	t[0x24] = zeroPage(bit)
	t[0x2C] = absolute(bit)

	t[0xC9] = immediate(cmpExec(regA))
	t[0xC5] = zeroPage(cmpExec(regA))
	t[0xD5] = zeroPageIndexed(regX, cmpExec(regA))
	t[0xCD] = absolute(cmpExec(regA))
	t[0xDD] = absoluteIndexed(regX, cmpExec(regA))
	t[0xD9] = absoluteIndexed(regY, cmpExec(regA))
	t[0xC1] = xIndirect(cmpExec(regA))
	t[0xD1] = indirectY(cmpExec(regA))

	t[0xE0] = immediate(cmpExec(regX))
	t[0xE4] = zeroPage(cmpExec(regX))
	t[0xEC] = absolute(cmpExec(regX))

	t[0xC0] = immediate(cmpExec(regY))
	t[0xC4] = zeroPage(cmpExec(regY))
	t[0xCC] = absolute(cmpExec(regY))

	// --- Increment/decrement memory ---
	wireRMW(t, 0xE6, 0xF6, 0xEE, 0xFE, rmwWrap(inc))
	wireRMW(t, 0xC6, 0xD6, 0xCE, 0xDE, rmwWrap(dec))
	t[0xE8] = incDecReg(regX, 1)  // INX
	t[0xC8] = incDecReg(regY, 1)  // INY
	t[0xCA] = incDecReg(regX, -1) // DEX
	t[0x88] = incDecReg(regY, -1) // DEY

	// --- Shifts/rotates (Accumulator, ZeroPage, ZeroPage,X, Absolute, Absolute,X) ---
	t[0x0A] = rmwAccumulator(rmwWrap(asl))
	t[0x06] = rmwZeroPage(rmwWrap(asl))
	t[0x16] = rmwZeroPageIndexed(regX, rmwWrap(asl))
	t[0x0E] = rmwAbsolute(rmwWrap(asl))
	t[0x1E] = rmwAbsoluteIndexed(regX, rmwWrap(asl))

	t[0x4A] = rmwAccumulator(rmwWrap(lsr))
	t[0x46] = rmwZeroPage(rmwWrap(lsr))
	t[0x56] = rmwZeroPageIndexed(regX, rmwWrap(lsr))
	t[0x4E] = rmwAbsolute(rmwWrap(lsr))
	t[0x5E] = rmwAbsoluteIndexed(regX, rmwWrap(lsr))

	t[0x2A] = rmwAccumulator(rmwWrap(rol))
	t[0x26] = rmwZeroPage(rmwWrap(rol))
	t[0x36] = rmwZeroPageIndexed(regX, rmwWrap(rol))
	t[0x2E] = rmwAbsolute(rmwWrap(rol))
	t[0x3E] = rmwAbsoluteIndexed(regX, rmwWrap(rol))

	t[0x6A] = rmwAccumulator(rmwWrap(ror))
	t[0x66] = rmwZeroPage(rmwWrap(ror))
	t[0x76] = rmwZeroPageIndexed(regX, rmwWrap(ror))
	t[0x6E] = rmwAbsolute(rmwWrap(ror))
	t[0x7E] = rmwAbsoluteIndexed(regX, rmwWrap(ror))

	// --- Jumps / subroutines / interrupts ---
	t[0x4C] = jmpAbsolute
	t[0x6C] = jmpIndirect
	t[0x20] = jsr
	t[0x60] = rts
	t[0x40] = rti
	t[0x00] = brk

	// --- Branches ---
	t[0x90] = branch(func(s Status) bool { return !s.Carry() })    // BCC
	t[0xB0] = branch(func(s Status) bool { return s.Carry() })     // BCS
	t[0xF0] = branch(func(s Status) bool { return s.Zero() })      // BEQ
	t[0xD0] = branch(func(s Status) bool { return !s.Zero() })     // BNE
	t[0x30] = branch(func(s Status) bool { return s.Negative() })  // BMI
	t[0x10] = branch(func(s Status) bool { return !s.Negative() }) // BPL
	t[0x50] = branch(func(s Status) bool { return !s.Overflow() }) // BVC
	t[0x70] = branch(func(s Status) bool { return s.Overflow() })  // BVS

	// --- Flag control ---
	t[0x18] = flagSet(flagC, false) // CLC
	t[0x38] = flagSet(flagC, true)  // SEC
	t[0x58] = flagSet(flagI, false) // CLI
	t[0x78] = flagSet(flagI, true)  // SEI
	t[0xD8] = flagSet(flagD, false) // CLD
	t[0xF8] = flagSet(flagD, true)  // SED
	t[0xB8] = flagSet(flagV, false) // CLV

	// --- No-op ---
	t[0xEA] = nop
}

// wireALU wires the eight standard-addressing-mode slots shared by
// AND/EOR/ORA/ADC/SBC to one operation.
func wireALU(t *[256]stepFunc, imm, zp, zpx, abs, absx, absy, xind, indy uint8, op readExec) {
	t[imm] = immediate(op)
	t[zp] = zeroPage(op)
	t[zpx] = zeroPageIndexed(regX, op)
	t[abs] = absolute(op)
	t[absx] = absoluteIndexed(regX, op)
	t[absy] = absoluteIndexed(regY, op)
	t[xind] = xIndirect(op)
	t[indy] = indirectY(op)
}

// wireRMW wires the four memory-addressing-mode slots shared by
// INC/DEC/ASL/LSR/ROL/ROR.
func wireRMW(t *[256]stepFunc, zp, zpx, abs, absx uint8, op rmwExec) {
	t[zp] = rmwZeroPage(op)
	t[zpx] = rmwZeroPageIndexed(regX, op)
	t[abs] = rmwAbsolute(op)
	t[absx] = rmwAbsoluteIndexed(regX, op)
}
