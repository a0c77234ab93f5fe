// Package coreerr defines the contract-error taxonomy shared by the CPU, bus,
// memory and PPU register file. Every error here represents a programmer
// mistake in how the core is driven, not a condition the simulated hardware
// itself could ever report; callers are expected to treat them as fatal to
// the current step.
package coreerr

import "errors"

var (
	// ErrInvalidOpcode is returned when the dispatch table has no entry for
	// the fetched opcode byte.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrInvalidMicroCycle is returned when an instruction's microcode is
	// invoked with a cycle index past its known cycle count.
	ErrInvalidMicroCycle = errors.New("invalid micro-cycle")

	// ErrInvalidBusAddress is returned when a bus read or write targets an
	// address outside the windows the bus variant understands.
	ErrInvalidBusAddress = errors.New("invalid bus address")

	// ErrInvalidPPURegisterAccess is returned on a write to a read-only PPU
	// register index or a read from a write-only one.
	ErrInvalidPPURegisterAccess = errors.New("invalid PPU register access")

	// ErrMemoryBoundsViolation is returned when InitializeFrom would write
	// past the end of a Memory's backing buffer.
	ErrMemoryBoundsViolation = errors.New("memory bounds violation")
)
