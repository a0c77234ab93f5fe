package memory

import (
	"errors"
	"testing"

	"gones/internal/coreerr"
)

func TestReadWriteRoundTrip(t *testing.T) {
	m := New(16)
	m.Write(4, 0x42)
	if got := m.Read(4); got != 0x42 {
		t.Errorf("Read(4) = %#02x, want 0x42", got)
	}
}

func TestSize(t *testing.T) {
	m := New(1024)
	if got := m.Size(); got != 1024 {
		t.Errorf("Size() = %d, want 1024", got)
	}
}

func TestClear(t *testing.T) {
	m := New(8)
	for i := 0; i < 8; i++ {
		m.Write(uint16(i), 0xFF)
	}
	m.Clear()
	for i := 0; i < 8; i++ {
		if got := m.Read(uint16(i)); got != 0 {
			t.Errorf("Read(%d) after Clear = %#02x, want 0", i, got)
		}
	}
}

func TestInitializeTruncatesToShorter(t *testing.T) {
	m := New(4)
	m.Initialize([]uint8{1, 2, 3, 4, 5, 6})
	want := []uint8{1, 2, 3, 4}
	for i, w := range want {
		if got := m.Read(uint16(i)); got != w {
			t.Errorf("Read(%d) = %#02x, want %#02x", i, got, w)
		}
	}
}

func TestInitializeFromOffset(t *testing.T) {
	m := New(8)
	if err := m.InitializeFrom(4, []uint8{0xAA, 0xBB}); err != nil {
		t.Fatalf("InitializeFrom: %v", err)
	}
	if got := m.Read(4); got != 0xAA {
		t.Errorf("Read(4) = %#02x, want 0xAA", got)
	}
	if got := m.Read(5); got != 0xBB {
		t.Errorf("Read(5) = %#02x, want 0xBB", got)
	}
}

func TestInitializeFromOutOfBoundsFails(t *testing.T) {
	m := New(4)
	err := m.InitializeFrom(2, []uint8{1, 2, 3})
	if !errors.Is(err, coreerr.ErrMemoryBoundsViolation) {
		t.Errorf("InitializeFrom out of bounds = %v, want ErrMemoryBoundsViolation", err)
	}
}

func TestInitializeFromNegativeOffsetFails(t *testing.T) {
	m := New(4)
	err := m.InitializeFrom(-1, []uint8{1})
	if !errors.Is(err, coreerr.ErrMemoryBoundsViolation) {
		t.Errorf("InitializeFrom negative offset = %v, want ErrMemoryBoundsViolation", err)
	}
}
