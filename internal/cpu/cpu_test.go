package cpu

import (
	"os"
	"testing"

	"gones/internal/bus"
	"gones/internal/memory"
)

// testSystem pairs a CPU with a flat 64KiB RAMBus, the standalone-CPU test
// harness internal/bus documents itself as existing for.
type testSystem struct {
	cpu   *CPU
	bus   *bus.RAMBus
	mem   *memory.Memory
	hooks CPUTestHooks
}

func newTestSystem(t *testing.T) *testSystem {
	t.Helper()
	mem := memory.New(64 * 1024)
	b, err := bus.NewRAMBus(mem)
	if err != nil {
		t.Fatalf("NewRAMBus: %v", err)
	}
	c := New(b)
	return &testSystem{cpu: c, bus: b, mem: mem, hooks: NewTestHooks(c)}
}

// load writes program into memory starting at address.
func (s *testSystem) load(address uint16, program ...uint8) {
	for i, v := range program {
		s.mem.Write(address+uint16(i), v)
	}
}

func (s *testSystem) setResetVector(address uint16) {
	s.mem.Write(0xFFFC, uint8(address))
	s.mem.Write(0xFFFD, uint8(address>>8))
}

func (s *testSystem) reset(t *testing.T) {
	t.Helper()
	if err := s.hooks.ExecuteReset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
}

// stepInstruction runs Step until the current instruction has retired: one
// call to fetch the opcode, then as many microcycle calls as the dispatched
// handler needs until it resets instruction_cycle back to 0.
func (s *testSystem) stepInstruction(t *testing.T) {
	t.Helper()
	if err := s.cpu.Step(); err != nil {
		t.Fatalf("Step (fetch): %v", err)
	}
	for s.hooks.GetInstructionCycle() != 0 {
		if err := s.cpu.Step(); err != nil {
			t.Fatalf("Step (microcycle): %v", err)
		}
	}
}

func TestResetSequence(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)

	st := s.cpu.State()
	if st.PC != 0x8000 {
		t.Errorf("PC = %#04x, want 0x8000", st.PC)
	}
	if st.SP != 0xFD {
		t.Errorf("SP = %#02x, want 0xFD", st.SP)
	}
	if !st.Status.IRQDisable() {
		t.Error("I flag must be set after reset")
	}
}

// --- Universal invariants ---

func TestSetZNUpdatesOnZeroResult(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.load(0x8000, 0xA9, 0x00) // LDA #$00
	s.stepInstruction(t)

	st := s.cpu.State()
	if !st.Status.Zero() {
		t.Error("Z must be set after loading 0")
	}
	if st.Status.Negative() {
		t.Error("N must be clear after loading 0")
	}
}

func TestSetZNUpdatesOnNegativeResult(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.load(0x8000, 0xA9, 0x80) // LDA #$80
	s.stepInstruction(t)

	st := s.cpu.State()
	if st.Status.Zero() {
		t.Error("Z must be clear after loading 0x80")
	}
	if !st.Status.Negative() {
		t.Error("N must be set after loading 0x80")
	}
}

func TestUnusedFlagAlwaysReadsOne(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	if !s.cpu.State().Status.Unused() {
		t.Error("unused flag must read back as 1 after reset")
	}
}

func TestBRKSetsBreakOnlyInPushedSnapshot(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.mem.Write(0xFFFE, 0x00)
	s.mem.Write(0xFFFF, 0x90)
	s.load(0x8000, 0x00) // BRK
	s.stepInstruction(t)

	if s.cpu.State().Status.Break() {
		t.Error("B must read as 0 in the live status register after BRK")
	}
	pushedStatus, err := s.hooks.ReadStackValue(s.cpu.State().SP + 1)
	if err != nil {
		t.Fatalf("ReadStackValue: %v", err)
	}
	if pushedStatus&flagB == 0 {
		t.Error("the pushed status snapshot must have B set")
	}
}

func TestInvalidOpcodeReturnsErrInvalidOpcode(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.load(0x8000, 0x02) // no documented opcode is ever wired to 0x02
	if err := s.cpu.Step(); err == nil {
		t.Fatal("expected an error fetching an unwired opcode")
	}
}

// --- Round-trip / idempotence laws ---

func TestPHAPLARoundTrip(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetA(0x42)
	s.load(0x8000, 0x48, 0xA9, 0x00, 0x68) // PHA; LDA #$00; PLA
	s.stepInstruction(t)
	s.stepInstruction(t)
	s.stepInstruction(t)

	if got := s.cpu.State().A; got != 0x42 {
		t.Errorf("A after PHA/PLA round trip = %#02x, want 0x42", got)
	}
}

func TestPHPPLPRoundTrip(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetStatus(0xE5)
	want := s.cpu.State().Status.Byte()
	s.load(0x8000, 0x08, 0x28) // PHP; PLP
	s.stepInstruction(t)
	s.stepInstruction(t)

	if got := s.cpu.State().Status.Byte(); got != want {
		t.Errorf("status after PHP/PLP round trip = %#02x, want %#02x", got, want)
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.load(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	s.load(0x9000, 0x60)            // RTS
	s.stepInstruction(t)
	if got := s.cpu.State().PC; got != 0x9000 {
		t.Fatalf("PC after JSR = %#04x, want 0x9000", got)
	}
	s.stepInstruction(t)
	if got := s.cpu.State().PC; got != 0x8003 {
		t.Errorf("PC after RTS = %#04x, want 0x8003 (the byte after JSR)", got)
	}
}

func TestADCThenSECSBCRoundTrip(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetA(0x10)
	s.hooks.SetCarry(false)
	s.load(0x8000, 0x69, 0x20, 0x38, 0xE9, 0x20) // ADC #$20; SEC; SBC #$20
	s.stepInstruction(t)
	s.stepInstruction(t)
	s.stepInstruction(t)

	// SBC only undoes ADC cleanly when the carry (the "no borrow" flag) is
	// set going in, the same convention a hand-written program follows by
	// issuing SEC before a subtraction.
	if got := s.cpu.State().A; got != 0x10 {
		t.Errorf("A after ADC/SEC/SBC round trip = %#02x, want 0x10", got)
	}
}

// --- Boundary behaviors ---

func TestADCCarryInAndCarryOut(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetA(0xFF)
	s.hooks.SetCarry(true)
	s.load(0x8000, 0x69, 0x00) // ADC #$00, with carry-in
	s.stepInstruction(t)

	st := s.cpu.State()
	if st.A != 0x00 {
		t.Errorf("A = %#02x, want 0x00", st.A)
	}
	if !st.Status.Carry() {
		t.Error("carry-out must be set: 0xFF + 0x00 + carry-in wraps")
	}
	if !st.Status.Zero() {
		t.Error("Z must be set on a zero result")
	}
}

func TestADCSignedOverflow(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetA(0x7F) // +127
	s.hooks.SetCarry(false)
	s.load(0x8000, 0x69, 0x01) // ADC #$01: +127 + 1 overflows into negative
	s.stepInstruction(t)

	st := s.cpu.State()
	if st.A != 0x80 {
		t.Errorf("A = %#02x, want 0x80", st.A)
	}
	if !st.Status.Overflow() {
		t.Error("V must be set: two positive operands produced a negative result")
	}
	if !st.Status.Negative() {
		t.Error("N must be set on 0x80")
	}
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	// The famous 6502 bug: JMP ($xxFF) fetches its high byte from $xx00,
	// not from the next page, because the pointer-fetch low byte increment
	// doesn't carry into the high byte.
	s.mem.Write(0x30FF, 0x00)
	s.mem.Write(0x3000, 0x80) // wrapped fetch: high byte comes from $3000, not $3100
	s.mem.Write(0x3100, 0x12) // must NOT be used
	s.load(0x8000, 0x6C, 0xFF, 0x30) // JMP ($30FF)
	s.stepInstruction(t)

	if got := s.cpu.State().PC; got != 0x8000 {
		t.Errorf("PC after JMP indirect page-wrap = %#04x, want 0x8000 (high byte from $3000)", got)
	}
}

func TestAbsoluteIndexedStoreAlwaysCostsTheExtraCycle(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetA(0x55)
	s.hooks.SetX(0x01)
	// $20FF + X(1) = $2100: a page crossing that STA must still pay for,
	// since a write can't be abandoned partway through like a dummy read.
	s.load(0x8000, 0x9D, 0xFF, 0x20) // STA $20FF,X
	if got := s.stepCounting(t); got != 5 {
		t.Errorf("STA $20FF,X took %d cycles, want 5", got)
	}

	if got := s.mem.Read(0x2100); got != 0x55 {
		t.Errorf("mem[$2100] = %#02x, want 0x55", got)
	}
}

func TestIRQIsMaskedByIDisableFlag(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetStatus(s.cpu.State().Status.Byte() | flagI)
	s.load(0x8000, 0xA9, 0x01) // LDA #$01, a harmless one-instruction filler
	s.cpu.SignalIRQ()
	s.stepInstruction(t)

	// The instruction must run to completion; IRQ dispatch only happens when
	// instruction_cycle observes 0 again, and must honor the I flag.
	if s.cpu.State().A != 0x01 {
		t.Fatalf("A = %#02x, want 0x01 (the masked IRQ must not have hijacked fetch)", s.cpu.State().A)
	}
	if s.hooks.GlobalMode() != ModeRun {
		t.Error("CPU must remain in RUN mode while IRQ is masked by the I flag")
	}
}

func TestNMICannotBeMaskedByIDisableFlag(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetStatus(s.cpu.State().Status.Byte() | flagI)
	s.mem.Write(0xFFFA, 0x00)
	s.mem.Write(0xFFFB, 0x90)
	s.load(0x8000, 0xA9, 0x01) // LDA #$01
	s.cpu.SignalNMI()
	s.stepInstruction(t) // the first Step samples NMI at cycle 0, before the LDA is fetched

	if s.hooks.GlobalMode() != ModeNMI {
		t.Fatalf("CPU mode = %v, want ModeNMI", s.hooks.GlobalMode())
	}
}

// --- Seven concrete end-to-end scenarios ---

func TestScenarioLDAAbsolute(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.mem.Write(0x1234, 0x99)
	s.load(0x8000, 0xAD, 0x34, 0x12) // LDA $1234
	s.stepInstruction(t)

	st := s.cpu.State()
	if st.A != 0x99 {
		t.Errorf("A = %#02x, want 0x99", st.A)
	}
	if !st.Status.Negative() {
		t.Error("N must be set: 0x99 has bit 7 set")
	}
}

func TestScenarioADCImmediateWithCarryIn(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetA(0x01)
	s.hooks.SetCarry(true)
	s.load(0x8000, 0x69, 0x01) // ADC #$01
	s.stepInstruction(t)

	if got := s.cpu.State().A; got != 0x03 {
		t.Errorf("A = %#02x, want 0x03 (1 + 1 + carry-in)", got)
	}
}

func TestScenarioADCSignedOverflow(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.hooks.SetA(0x50)
	s.hooks.SetCarry(false)
	s.load(0x8000, 0x69, 0x50) // ADC #$50: +80 + +80 = -96, overflow
	s.stepInstruction(t)

	st := s.cpu.State()
	if st.A != 0xA0 {
		t.Errorf("A = %#02x, want 0xA0", st.A)
	}
	if !st.Status.Overflow() {
		t.Error("V must be set")
	}
}

func TestScenarioBRKPushesReturnAddressAndSetsIFlag(t *testing.T) {
	s := newTestSystem(t)
	s.setResetVector(0x8000)
	s.reset(t)
	s.mem.Write(0xFFFE, 0x00)
	s.mem.Write(0xFFFF, 0x90)
	spBefore := s.cpu.State().SP
	s.load(0x8000, 0x00, 0xEA) // BRK; (padding byte skipped by the signature)
	s.stepInstruction(t)

	st := s.cpu.State()
	if st.PC != 0x9000 {
		t.Errorf("PC after BRK = %#04x, want 0x9000 (the IRQ/BRK vector)", st.PC)
	}
	if !st.Status.IRQDisable() {
		t.Error("I flag must be set after BRK")
	}
	if st.SP != spBefore-3 {
		t.Errorf("SP = %#02x, want %#02x (three bytes pushed: PCH, PCL, status)", st.SP, spBefore-3)
	}
	retHigh, _ := s.hooks.ReadStackValue(st.SP + 3)
	retLow, _ := s.hooks.ReadStackValue(st.SP + 2)
	returnAddr := uint16(retHigh)<<8 | uint16(retLow)
	if returnAddr != 0x8002 {
		t.Errorf("pushed return address = %#04x, want 0x8002 (PC+2, the signature byte)", returnAddr)
	}
}

// TestScenarioKlausDormannFunctionalTest runs the Klaus Dormann 6502
// functional test suite to its success trap. The binary isn't vendored into
// this repository; point KLAUS_FUNCTIONAL_TEST_BIN at a local copy to run
// it, otherwise the test is skipped.
func TestScenarioKlausDormannFunctionalTest(t *testing.T) {
	path := os.Getenv("KLAUS_FUNCTIONAL_TEST_BIN")
	if path == "" {
		t.Skip("KLAUS_FUNCTIONAL_TEST_BIN not set; skipping the Klaus Dormann functional test")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading functional test binary: %v", err)
	}

	s := newTestSystem(t)
	if err := s.mem.InitializeFrom(0, data); err != nil {
		t.Fatalf("loading functional test binary: %v", err)
	}
	s.setResetVector(0x0400)
	s.reset(t)

	const trapHistoryLength = 30
	var history []uint16
	const maxSteps = 100_000_000

	for i := 0; i < maxSteps; i++ {
		if s.hooks.GlobalMode() == ModeRun && s.hooks.GetInstructionCycle() == 0 {
			pc := s.cpu.State().PC
			history = append(history, pc)
			if len(history) > trapHistoryLength {
				history = history[len(history)-trapHistoryLength:]
			}
			if len(history) == trapHistoryLength && isRepeatingTrap(history) {
				trapPC := history[len(history)-1]
				if trapPC < 0x336D || trapPC > 0x336F {
					t.Fatalf("trapped at %#04x, want the success trap at $336D-$336F", trapPC)
				}
				return
			}
		}
		if err := s.cpu.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	t.Fatal("functional test never reached a stable trap within the step budget")
}

// isRepeatingTrap reports whether pcs (in order) consists of the same
// 2-to-3-address cycle repeated throughout, the signature of the test ROM's
// infinite trap loops.
func isRepeatingTrap(pcs []uint16) bool {
	for period := 2; period <= 3; period++ {
		if len(pcs)%period != 0 {
			continue
		}
		ok := true
		for i := period; i < len(pcs); i++ {
			if pcs[i] != pcs[i-period] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
