package cpu

// CPUTestHooks exposes state a test harness needs to poke directly —
// things the instruction stream would otherwise take many cycles to set up
// (forcing a register, priming the interrupt sequence mid-flight, reading
// the raw stack). It has no role outside tests.
type CPUTestHooks struct {
	cpu *CPU
}

// NewTestHooks wraps cpu for test access.
func NewTestHooks(cpu *CPU) CPUTestHooks {
	return CPUTestHooks{cpu: cpu}
}

func (h CPUTestHooks) GlobalMode() Mode     { return h.cpu.mode }
func (h CPUTestHooks) SetGlobalMode(m Mode) { h.cpu.mode = m }

// ExecuteReset runs Reset followed by the five Step calls that complete
// the RESET sequence, leaving the CPU ready to fetch its first opcode.
func (h CPUTestHooks) ExecuteReset() error {
	h.cpu.Reset()
	for i := 0; i < 5; i++ {
		if err := h.cpu.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (h CPUTestHooks) ZeroInterruptCycle() { h.cpu.interruptCycle = 0 }
func (h CPUTestHooks) SetPC(pc uint16)     { h.cpu.state.PC = pc }
func (h CPUTestHooks) SetA(v uint8)        { h.cpu.state.A = v }
func (h CPUTestHooks) SetX(v uint8)        { h.cpu.state.X = v }
func (h CPUTestHooks) SetY(v uint8)        { h.cpu.state.Y = v }
func (h CPUTestHooks) SetSP(v uint8)       { h.cpu.state.SP = v }
func (h CPUTestHooks) SetStatus(v uint8)   { h.cpu.state.Status.SetByte(v) }
func (h CPUTestHooks) SetCarry(v bool)     { h.cpu.state.Status.SetCarry(v) }
func (h CPUTestHooks) GetCarry() bool      { return h.cpu.state.Status.Carry() }

func (h CPUTestHooks) SetInstructionCycle(c uint8) { h.cpu.instructionCycle = c }
func (h CPUTestHooks) GetInstructionCycle() uint8  { return h.cpu.instructionCycle }

func (h CPUTestHooks) IncrementSP() { h.cpu.state.SP++ }
func (h CPUTestHooks) DecrementSP() { h.cpu.state.SP-- }

func (h CPUTestHooks) PushStack(v uint8) error { return h.cpu.pushStack(v) }

// ReadStackValue reads the byte at stack offset sp without disturbing SP.
func (h CPUTestHooks) ReadStackValue(sp uint8) (uint8, error) {
	h.cpu.bus.SetAddressHL(0x01, sp)
	return h.cpu.bus.Read()
}
